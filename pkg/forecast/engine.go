// Package forecast implements the rule based demand scoring engine: seeded
// scoring of a (product, season, weather) triple, threshold recommendations,
// batch aggregation and whole-catalog sweeps.
package forecast

import (
	"errors"
	"sort"

	"agri-demand-api/pkg/catalog"

	"github.com/shopspring/decimal"
)

// ErrNoValidProducts is returned by Batch when no entry resolves to a product.
var ErrNoValidProducts = errors.New("no valid products found for prediction")

// Query is a validated scoring request.
type Query struct {
	Product string          `json:"product"`
	Season  catalog.Season  `json:"season"`
	Weather catalog.Weather `json:"weather"`
}

// NewQuery validates season and weather before any product lookup happens.
func NewQuery(product, season, weather string) (Query, error) {
	s, err := catalog.ParseSeason(season)
	if err != nil {
		return Query{}, err
	}
	w, err := catalog.ParseWeather(weather)
	if err != nil {
		return Query{}, err
	}
	return Query{Product: product, Season: s, Weather: w}, nil
}

// DemandResult is the scored outcome of a Query.
type DemandResult struct {
	Product        string           `json:"product"`
	Category       catalog.Category `json:"category"`
	BaseDemand     float64          `json:"base_demand"`
	SeasonalFactor float64          `json:"seasonal_factor"`
	WeatherFactor  float64          `json:"weather_factor"`
	FinalScore     float64          `json:"final_score"`
}

// SeasonalImpact is the seasonal factor expressed as a percentage change.
func (r DemandResult) SeasonalImpact() float64 {
	return round1((r.SeasonalFactor - 1) * 100)
}

// WeatherImpact is the weather factor expressed as a percentage change.
func (r DemandResult) WeatherImpact() float64 {
	return round1((r.WeatherFactor - 1) * 100)
}

// Engine scores products against a Catalog. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	catalog    *catalog.Catalog
	confidence func() float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfidence replaces the random confidence source.
func WithConfidence(fn func() float64) Option {
	return func(e *Engine) {
		e.confidence = fn
	}
}

func NewEngine(c *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: c, confidence: RandomConfidence}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Confidence draws a fresh confidence value. Repeated calls differ.
func (e *Engine) Confidence() float64 {
	return e.confidence()
}

// Score computes the demand score of q.
//
//	final = round2(base * seasonal[season] * weather[class] * jitter)
func (e *Engine) Score(q Query) (DemandResult, error) {
	p, err := e.catalog.Lookup(q.Product)
	if err != nil {
		return DemandResult{}, err
	}
	seasonal := p.SeasonalFactor.Factor(q.Season)
	weather := e.catalog.WeatherFactorFor(p.Category, q.Weather)

	demand := p.BaseDemand * seasonal * weather
	demand *= Jitter(p.Name, q.Season.String(), q.Weather.String())

	return DemandResult{
		Product:        p.Name,
		Category:       p.Category,
		BaseDemand:     p.BaseDemand,
		SeasonalFactor: seasonal,
		WeatherFactor:  weather,
		FinalScore:     round2(demand),
	}, nil
}

// BatchEntry is one row of a batch request.
type BatchEntry struct {
	ProductName  string  `json:"product_name"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	CurrentStock int     `json:"current_stock"`
}

// BatchItem is a scored batch entry.
type BatchItem struct {
	Entry          BatchEntry
	Result         DemandResult
	Recommendation Recommendation
	Confidence     float64
	EstimatedCost  decimal.Decimal
}

// BatchSummary aggregates the resolved entries of a batch.
type BatchSummary struct {
	TotalProducts      int
	HighDemandCount    int
	LowDemandCount     int
	TotalEstimatedCost decimal.Decimal
	AverageDemandScore float64
	SkippedProducts    []string
}

type BatchReport struct {
	Season  catalog.Season
	Weather catalog.Weather
	Items   []BatchItem
	Summary BatchSummary
}

// Batch scores every entry under the same season and weather. Entries whose
// product cannot be resolved are skipped and listed in the summary; the call
// fails only when nothing resolves. Items are ordered by score, highest
// first, keeping input order between equal scores.
func (e *Engine) Batch(entries []BatchEntry, season catalog.Season, weather catalog.Weather) (*BatchReport, error) {
	report := &BatchReport{Season: season, Weather: weather}
	skipped := []string{}

	for _, entry := range entries {
		res, err := e.Score(Query{Product: entry.ProductName, Season: season, Weather: weather})
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				skipped = append(skipped, entry.ProductName)
				continue
			}
			return nil, err
		}
		rec := Recommend(res.FinalScore)
		cost := decimal.NewFromFloat(entry.CostPerUnit).
			Mul(decimal.NewFromInt(int64(rec.RecommendedUnits))).
			Round(2)
		report.Items = append(report.Items, BatchItem{
			Entry:          entry,
			Result:         res,
			Recommendation: rec,
			Confidence:     e.confidence(),
			EstimatedCost:  cost,
		})
	}
	if len(report.Items) == 0 {
		return nil, ErrNoValidProducts
	}

	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].Result.FinalScore > report.Items[j].Result.FinalScore
	})

	total := decimal.Zero
	var scoreSum float64
	for _, item := range report.Items {
		total = total.Add(item.EstimatedCost)
		scoreSum += item.Result.FinalScore
		switch {
		case item.Result.FinalScore > HighDemandThreshold:
			report.Summary.HighDemandCount++
		case item.Result.FinalScore < LowDemandThreshold:
			report.Summary.LowDemandCount++
		}
	}
	report.Summary.TotalProducts = len(report.Items)
	report.Summary.TotalEstimatedCost = total.Round(2)
	report.Summary.AverageDemandScore = round2(scoreSum / float64(len(report.Items)))
	report.Summary.SkippedProducts = skipped
	return report, nil
}

// Ranked is one row of a sweep.
type Ranked struct {
	Result         DemandResult   `json:"result"`
	Recommendation Recommendation `json:"recommendation"`
}

// SweepReport ranks the whole catalog for one season and weather.
type SweepReport struct {
	Season     catalog.Season  `json:"season"`
	Weather    catalog.Weather `json:"weather"`
	Rankings   []Ranked        `json:"rankings"`
	Top        []Ranked        `json:"top"`
	HighDemand []Ranked        `json:"high_demand"`
	LowDemand  []Ranked        `json:"low_demand"`
}

// TopLimit is the size of the SweepReport.Top slice.
const TopLimit = 10

// Sweep scores every catalog product and ranks them by score.
func (e *Engine) Sweep(season catalog.Season, weather catalog.Weather) (*SweepReport, error) {
	products := e.catalog.Products()
	report := &SweepReport{
		Season:     season,
		Weather:    weather,
		Rankings:   make([]Ranked, 0, len(products)),
		HighDemand: []Ranked{},
		LowDemand:  []Ranked{},
	}
	for _, p := range products {
		res, err := e.Score(Query{Product: p.Name, Season: season, Weather: weather})
		if err != nil {
			return nil, err
		}
		report.Rankings = append(report.Rankings, Ranked{Result: res, Recommendation: Recommend(res.FinalScore)})
	}
	sort.SliceStable(report.Rankings, func(i, j int) bool {
		return report.Rankings[i].Result.FinalScore > report.Rankings[j].Result.FinalScore
	})

	n := min(TopLimit, len(report.Rankings))
	report.Top = report.Rankings[:n:n]
	for _, r := range report.Rankings {
		switch {
		case r.Result.FinalScore > HighDemandThreshold:
			report.HighDemand = append(report.HighDemand, r)
		case r.Result.FinalScore < LowDemandThreshold:
			report.LowDemand = append(report.LowDemand, r)
		}
	}
	return report, nil
}
