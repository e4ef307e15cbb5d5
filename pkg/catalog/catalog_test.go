package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Equal(t, 30, c.Len())

	// 各カテゴリ10商品
	for _, cat := range Categories() {
		assert.Len(t, c.ByCategory(cat), 10, cat.String())
	}
	assert.Same(t, c, Default())
}

func TestLookup(t *testing.T) {
	c := Default()

	p, err := c.Lookup("Urea")
	require.NoError(t, err)
	assert.Equal(t, Fertilizers, p.Category)
	assert.Equal(t, 85.0, p.BaseDemand)
	assert.Equal(t, 1.5, p.SeasonalFactor.Factor(Monsoon))

	p, err = c.Lookup("Wheat Seeds")
	require.NoError(t, err)
	assert.Equal(t, Seeds, p.Category)
	assert.Equal(t, 1.6, p.SeasonalFactor.Factor(Winter))
}

func TestLookupIsExactAndCaseSensitive(t *testing.T) {
	c := Default()
	for _, name := range []string{"urea", "UREA", " Urea", "Ure", "Urea Fertilizer", ""} {
		_, err := c.Lookup(name)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrProductNotFound))

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, name, nf.Product)
		assert.Len(t, nf.ValidProducts, 10)
		assert.Equal(t, "Urea", nf.ValidProducts[0])
		assert.Equal(t, []string{"Fertilizers", "Seeds", "Pesticides"}, nf.Categories)
	}
}

func TestWeatherFactor(t *testing.T) {
	c := Default()

	assert.Equal(t, 1.30, c.WeatherFactor("Fertilizers", "Rainy"))
	assert.Equal(t, 1.25, c.WeatherFactor("Seeds", "Rainy"))
	assert.Equal(t, 1.40, c.WeatherFactor("Pesticides", "Rainy"))
	assert.Equal(t, 1.35, c.WeatherFactor("pesticide", "Humid"))
	assert.Equal(t, 0.80, c.WeatherFactor("Seeds", "Cold"))

	// 未知の天気・カテゴリは1.0
	assert.Equal(t, 1.0, c.WeatherFactor("Seeds", "Snowy"))
	assert.Equal(t, 1.0, c.WeatherFactor("Tools", "Hot"))

	assert.Equal(t, 1.15, c.WeatherFactorFor(Fertilizers, Hot))
	assert.Equal(t, 0.95, c.WeatherFactorFor(Pesticides, Dry))
}

func TestParseEnums(t *testing.T) {
	s, err := ParseSeason("Monsoon")
	require.NoError(t, err)
	assert.Equal(t, Monsoon, s)

	_, err = ParseSeason("monsoon")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "invalid_season", ve.Reason())
	assert.Equal(t, "Invalid season. Must be one of: Summer, Monsoon, Winter, Spring, Autumn", ve.Error())
	assert.True(t, errors.Is(err, ErrInvalidValue))

	w, err := ParseWeather("Dry")
	require.NoError(t, err)
	assert.Equal(t, Dry, w)

	_, err = ParseWeather("Stormy")
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "invalid_weather", ve.Reason())

	cat, err := ParseCategory("Seeds")
	require.NoError(t, err)
	assert.Equal(t, ClassSeed, cat.Class())
}

func TestNewValidation(t *testing.T) {
	good := SeasonalFactors{1, 1, 1, 1, 1}

	tests := []struct {
		name     string
		products []Product
	}{
		{"empty", nil},
		{"unnamed", []Product{{Category: Seeds, BaseDemand: 10, SeasonalFactor: good}}},
		{"bad category", []Product{{Name: "X", Category: Category(7), BaseDemand: 10, SeasonalFactor: good}}},
		{"zero demand", []Product{{Name: "X", Category: Seeds, SeasonalFactor: good}}},
		{"missing season", []Product{{Name: "X", Category: Seeds, BaseDemand: 10, SeasonalFactor: SeasonalFactors{1, 1, 0, 1, 1}}}},
		{"duplicate", []Product{
			{Name: "X", Category: Seeds, BaseDemand: 10, SeasonalFactor: good},
			{Name: "X", Category: Pesticides, BaseDemand: 10, SeasonalFactor: good},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products, nil)
			assert.Error(t, err)
		})
	}

	c, err := New([]Product{{Name: "X", Category: Seeds, BaseDemand: 10, SeasonalFactor: good}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, c.WeatherFactorFor(Seeds, Rainy))
}

func TestProductsReturnsCopy(t *testing.T) {
	c := Default()
	ps := c.Products()
	ps[0].BaseDemand = 1
	p, err := c.Lookup(ps[0].Name)
	require.NoError(t, err)
	assert.Equal(t, 85.0, p.BaseDemand)
}
