package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArchive struct {
	mu       sync.Mutex
	recorded []ArchiveEntry
	calls    int
	vector   []float32
	limit    uint64
	category string
	err      error
}

func (f *fakeArchive) Record(_ context.Context, entries ...ArchiveEntry) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, entries...)
	return make([]string, len(entries)), nil
}

func (f *fakeArchive) Similar(_ context.Context, vector []float32, limit uint64, category string) ([]models.ArchivedForecast, error) {
	f.vector, f.limit, f.category = vector, limit, category
	return []models.ArchivedForecast{{ID: "x", Product: "DAP"}}, nil
}

type countingCache struct {
	ForecastCache
	scoreHits, sweepHits int
	failWrites           bool
}

func (c *countingCache) GetScore(ctx context.Context, q forecast.Query) (*forecast.DemandResult, bool, error) {
	r, ok, err := c.ForecastCache.GetScore(ctx, q)
	if ok {
		c.scoreHits++
	}
	return r, ok, err
}

func (c *countingCache) SetScore(ctx context.Context, q forecast.Query, r forecast.DemandResult) error {
	if c.failWrites {
		return errors.New("cache down")
	}
	return c.ForecastCache.SetScore(ctx, q, r)
}

func (c *countingCache) GetSweep(ctx context.Context, season, weather string) (*forecast.SweepReport, bool, error) {
	r, ok, err := c.ForecastCache.GetSweep(ctx, season, weather)
	if ok {
		c.sweepHits++
	}
	return r, ok, err
}

func newTestForecastService(cache ForecastCache, archive ForecastArchive) *DemandForecastService {
	engine := forecast.NewEngine(catalog.Default(), forecast.WithConfidence(func() float64 { return 0.9 }))
	return NewDemandForecastService(engine, cache, archive)
}

func intPtr(v int) *int { return &v }

func TestPredict(t *testing.T) {
	archive := &fakeArchive{}
	svc := newTestForecastService(nil, archive)

	res, err := svc.Predict(context.Background(), models.PredictDemandRequest{
		Product: "Urea", Season: "Monsoon", Weather: "Rainy", Month: intPtr(7),
	})
	require.NoError(t, err)

	assert.Equal(t, "Urea", res.Product)
	assert.Equal(t, "Fertilizers", res.Category)
	assert.Equal(t, 0.9, res.ConfidenceScore)
	assert.Equal(t, 50.0, res.SeasonalImpact)
	assert.Equal(t, 30.0, res.WeatherImpact)
	assert.Equal(t, "Increase Stock", res.InventoryAction)
	assert.Equal(t, "High", res.Priority)
	assert.Equal(t, "40-50%", res.StockChange)
	assert.Equal(t, forecast.Recommend(res.PredictedDemandScore).RecommendedUnits, res.RecommendedStock)
	assert.Equal(t, "North", res.Region)
	assert.Equal(t, 7, *res.Month)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "High Demand Alert", res.Recommendations[0].Title)

	require.Len(t, archive.recorded, 1)
	assert.Equal(t, forecast.IncreaseStock, archive.recorded[0].Action)
}

func TestPredictValidationOrder(t *testing.T) {
	svc := newTestForecastService(nil, nil)
	ctx := context.Background()

	_, err := svc.Predict(ctx, models.PredictDemandRequest{Product: "nope", Season: "Rainy", Weather: "Rainy"})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_season", verr.Reason())

	_, err = svc.Predict(ctx, models.PredictDemandRequest{Product: "nope", Season: "Summer", Weather: "Windy"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_weather", verr.Reason())

	_, err = svc.Predict(ctx, models.PredictDemandRequest{Product: "nope", Season: "Summer", Weather: "Hot"})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	_, err = svc.Predict(ctx, models.PredictDemandRequest{Product: "Urea", Season: "Summer", Weather: "Hot", Month: intPtr(13)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_month", verr.Reason())
}

func TestPredictArchiveFailureIsIgnored(t *testing.T) {
	archive := &fakeArchive{err: errors.New("qdrant down")}
	svc := newTestForecastService(nil, archive)

	res, err := svc.Predict(context.Background(), models.PredictDemandRequest{Product: "DAP", Season: "Winter", Weather: "Cold"})
	require.NoError(t, err)
	assert.Equal(t, "DAP", res.Product)
	assert.Equal(t, 1, archive.calls)
}

func TestScoreUsesCache(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	counting := &countingCache{ForecastCache: cache}
	svc := newTestForecastService(counting, nil)
	ctx := context.Background()

	first, err := svc.ProductDetail(ctx, "Herbicide", "Spring", "Humid")
	require.NoError(t, err)
	second, err := svc.ProductDetail(ctx, "Herbicide", "Spring", "Humid")
	require.NoError(t, err)

	assert.Equal(t, 1, counting.scoreHits)
	assert.Equal(t, first.PredictedDemandScore, second.PredictedDemandScore)
}

func TestScoreCacheWriteFailureIsIgnored(t *testing.T) {
	counting := &countingCache{ForecastCache: NewNoopForecastCache(), failWrites: true}
	svc := newTestForecastService(counting, nil)

	_, err := svc.ProductDetail(context.Background(), "Boron", "Autumn", "Normal")
	assert.NoError(t, err)
}

func TestSweepUsesCache(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	counting := &countingCache{ForecastCache: cache}
	archive := &fakeArchive{}
	svc := newTestForecastService(counting, archive)
	ctx := context.Background()

	first, err := svc.Sweep(ctx, "Monsoon", "Rainy")
	require.NoError(t, err)
	second, err := svc.Sweep(ctx, "Monsoon", "Rainy")
	require.NoError(t, err)

	assert.Equal(t, 1, counting.sweepHits)
	assert.Equal(t, first, second)
	assert.Equal(t, 30, first.TotalProducts)
	assert.Len(t, first.Top10, 10)
	assert.Zero(t, archive.calls)

	for i := 1; i < len(first.Predictions); i++ {
		assert.GreaterOrEqual(t, first.Predictions[i-1].DemandScore, first.Predictions[i].DemandScore)
	}
	for _, row := range first.HighDemandProducts {
		assert.Greater(t, row.DemandScore, 120.0)
	}
}

func TestSweepInvalidInput(t *testing.T) {
	svc := newTestForecastService(nil, nil)
	_, err := svc.Sweep(context.Background(), "summer", "Hot")
	assert.ErrorIs(t, err, catalog.ErrInvalidValue)
}

func TestBatch(t *testing.T) {
	archive := &fakeArchive{}
	svc := newTestForecastService(nil, archive)

	res, err := svc.Batch(context.Background(), models.BatchPredictRequest{
		Season:  "Monsoon",
		Weather: "Rainy",
		Products: []models.ProductRecord{
			{ProductName: "Boron", CostPerUnit: 10, CurrentStock: 3},
			{ProductName: "Unknown", CostPerUnit: 99},
			{ProductName: "Fungicide", CostPerUnit: 2.5, CurrentStock: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Predictions, 2)
	assert.Equal(t, "Fungicide", res.Predictions[0].Product)
	assert.Equal(t, "Boron", res.Predictions[1].Product)
	assert.Equal(t, 1, res.Predictions[0].CurrentStock)
	assert.Equal(t, 2, res.Summary.TotalProducts)
	assert.Equal(t, []string{"Unknown"}, res.Summary.SkippedProducts)

	var total float64
	for _, p := range res.Predictions {
		assert.InDelta(t, p.CostPerUnit*float64(p.RecommendedStock), p.EstimatedCost, 0.005)
		total += p.EstimatedCost
	}
	assert.InDelta(t, total, res.Summary.TotalEstimatedCost, 0.005)

	assert.Equal(t, 1, archive.calls)
	assert.Len(t, archive.recorded, 2)
}

func TestBatchInventoryActionIsThreeWay(t *testing.T) {
	svc := newTestForecastService(nil, nil)

	res, err := svc.Batch(context.Background(), models.BatchPredictRequest{
		Season:  "Winter",
		Weather: "Rainy",
		Products: []models.ProductRecord{
			{ProductName: "Boron", CostPerUnit: 1},
			{ProductName: "Zinc Sulphate", CostPerUnit: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Predictions, 2)

	for _, p := range res.Predictions {
		// (60, 80] はティア上 Slight Reduction だが、一括予測の在庫アクションは維持
		require.Greater(t, p.PredictedDemandScore, forecast.LowDemandThreshold, p.Product)
		require.LessOrEqual(t, p.PredictedDemandScore, 80.0, p.Product)
		assert.Equal(t, string(forecast.SlightReduction), string(forecast.Recommend(p.PredictedDemandScore).Action))
		assert.Equal(t, string(forecast.MaintainStock), p.InventoryAction, p.Product)
		assert.Equal(t, string(forecast.PriorityLow), p.Priority, p.Product)
	}
}

func TestSweepConcurrentCallsMatchSerial(t *testing.T) {
	svc := newTestForecastService(nil, nil)
	baseline, err := svc.Sweep(context.Background(), "Monsoon", "Rainy")
	require.NoError(t, err)

	const workers = 32
	results := make([]*models.SweepResponse, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Sweep(context.Background(), "Monsoon", "Rainy")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, baseline.Predictions, results[i].Predictions)
	}
}

func TestBatchNoValidProducts(t *testing.T) {
	svc := newTestForecastService(nil, nil)
	_, err := svc.Batch(context.Background(), models.BatchPredictRequest{
		Season: "Summer", Weather: "Hot",
		Products: []models.ProductRecord{{ProductName: "urea"}},
	})
	assert.ErrorIs(t, err, forecast.ErrNoValidProducts)
}

func TestSimilar(t *testing.T) {
	svc := newTestForecastService(nil, nil)
	_, err := svc.Similar(context.Background(), "Urea", "Monsoon", "Rainy", 5, false)
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	archive := &fakeArchive{}
	svc = newTestForecastService(nil, archive)

	matches, err := svc.Similar(context.Background(), "Urea", "Monsoon", "Rainy", 500, true)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, uint64(50), archive.limit)
	assert.Equal(t, "Fertilizers", archive.category)
	assert.Len(t, archive.vector, int(FeatureSize))

	_, err = svc.Similar(context.Background(), "Urea", "Monsoon", "Rainy", 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), archive.limit)
	assert.Empty(t, archive.category)
}

func TestProductsAndCategories(t *testing.T) {
	svc := newTestForecastService(nil, nil)

	products := svc.Products()
	assert.Equal(t, 30, products.TotalProducts)
	assert.Equal(t, []string{"Fertilizers", "Seeds", "Pesticides"}, products.Categories)
	assert.Equal(t, "Urea", products.AllProducts[0].Name)

	categories := svc.Categories()
	require.Len(t, categories, 3)
	assert.Equal(t, "seed", categories[1].Class)
	assert.Equal(t, 10, categories[1].Count)
}
