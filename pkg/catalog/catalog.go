// Package catalog holds the static product and weather impact tables the
// demand scoring engine reads from. A Catalog is immutable once built.
package catalog

import (
	"errors"
	"fmt"
	"sync"
)

// suggestionLimit caps the valid product names attached to a NotFoundError.
const suggestionLimit = 10

// SeasonalFactors holds one multiplier per Season, indexed by the Season value.
type SeasonalFactors [seasonCount]float64

// Factor returns the multiplier for s, or 1.0 when s is outside the table.
func (f SeasonalFactors) Factor(s Season) float64 {
	if s < 0 || s >= seasonCount {
		return 1.0
	}
	if v := f[s]; v > 0 {
		return v
	}
	return 1.0
}

// Product is a single catalog entry.
type Product struct {
	Name           string
	Category       Category
	BaseDemand     float64
	SeasonalFactor SeasonalFactors
}

// WeatherImpact maps each weather condition to a multiplier per category class.
type WeatherImpact map[Weather]map[CategoryClass]float64

// Factor returns the multiplier for the pair, defaulting to 1.0 when either
// key is missing.
func (t WeatherImpact) Factor(class CategoryClass, w Weather) float64 {
	row, ok := t[w]
	if !ok {
		return 1.0
	}
	v, ok := row[class]
	if !ok {
		return 1.0
	}
	return v
}

// Catalog is the read-only product lookup.
type Catalog struct {
	products []Product
	byName   map[string]int
	weather  WeatherImpact
}

// New validates the entries and builds a Catalog. Every product must belong
// to one of the three fixed categories, have a positive base demand and a
// positive multiplier for every season. Names must be unique.
func New(products []Product, weather WeatherImpact) (*Catalog, error) {
	if len(products) == 0 {
		return nil, errors.New("catalog: no products")
	}
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byName:   make(map[string]int, len(products)),
		weather:  make(WeatherImpact, len(weather)),
	}
	for _, p := range products {
		if p.Name == "" {
			return nil, errors.New("catalog: product with empty name")
		}
		if p.Category < 0 || p.Category >= categoryCount {
			return nil, fmt.Errorf("catalog: product %q has unknown category %d", p.Name, p.Category)
		}
		if p.BaseDemand <= 0 {
			return nil, fmt.Errorf("catalog: product %q has non-positive base demand", p.Name)
		}
		for s, f := range p.SeasonalFactor {
			if f <= 0 {
				return nil, fmt.Errorf("catalog: product %q has no factor for %s", p.Name, Season(s))
			}
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate product %q", p.Name)
		}
		c.byName[p.Name] = len(c.products)
		c.products = append(c.products, p)
	}
	for w, row := range weather {
		copied := make(map[CategoryClass]float64, len(row))
		for class, f := range row {
			if f <= 0 {
				return nil, fmt.Errorf("catalog: non-positive weather factor for %s/%s", w, class)
			}
			copied[class] = f
		}
		c.weather[w] = copied
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog of 30 agricultural products.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultProducts(), defaultWeatherImpact())
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Lookup finds a product by its exact, case-sensitive name.
func (c *Catalog) Lookup(name string) (Product, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Product{}, &NotFoundError{
			Product:       name,
			ValidProducts: c.sampleNames(suggestionLimit),
			Categories:    CategoryNames(),
		}
	}
	return c.products[idx], nil
}

// WeatherFactor returns the multiplier for a category display name (plural or
// singular) and a weather name. Unknown weather or category yields 1.0.
func (c *Catalog) WeatherFactor(category, weather string) float64 {
	class, ok := ClassOf(category)
	if !ok {
		return 1.0
	}
	w, err := ParseWeather(weather)
	if err != nil {
		return 1.0
	}
	return c.weather.Factor(class, w)
}

// WeatherFactorFor is the typed form of WeatherFactor.
func (c *Catalog) WeatherFactorFor(category Category, w Weather) float64 {
	return c.weather.Factor(category.Class(), w)
}

// Products returns a copy of every product in catalog order.
func (c *Catalog) Products() []Product {
	return append([]Product(nil), c.products...)
}

// ByCategory returns the products of one category in catalog order.
func (c *Catalog) ByCategory(category Category) []Product {
	var out []Product
	for _, p := range c.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Len is the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) sampleNames(n int) []string {
	if n > len(c.products) {
		n = len(c.products)
	}
	names := make([]string, 0, n)
	for _, p := range c.products[:n] {
		names = append(names, p.Name)
	}
	return names
}
