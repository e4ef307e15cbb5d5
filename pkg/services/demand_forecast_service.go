package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/models"
)

const (
	defaultRegion  = "North"
	archiveTimeout = 3 * time.Second
	maxSimilar     = 50
)

// ForecastArchive stores scored scenarios and finds similar past ones.
type ForecastArchive interface {
	Record(ctx context.Context, entries ...ArchiveEntry) ([]string, error)
	Similar(ctx context.Context, vector []float32, limit uint64, category string) ([]models.ArchivedForecast, error)
}

// DemandForecastService 需要予測サービス
type DemandForecastService struct {
	engine  *forecast.Engine
	cache   ForecastCache
	archive ForecastArchive
}

// NewDemandForecastService 新しい需要予測サービスを作成。cacheとarchiveはnil可
func NewDemandForecastService(engine *forecast.Engine, cache ForecastCache, archive ForecastArchive) *DemandForecastService {
	if cache == nil {
		cache = NewNoopForecastCache()
	}
	return &DemandForecastService{
		engine:  engine,
		cache:   cache,
		archive: archive,
	}
}

// Catalog returns the catalog the engine scores against.
func (dfs *DemandForecastService) Catalog() *catalog.Catalog {
	return dfs.engine.Catalog()
}

// ArchiveEnabled reports whether scored results are archived.
func (dfs *DemandForecastService) ArchiveEnabled() bool {
	return dfs.archive != nil
}

// Predict scores one product and attaches its recommendation tier and
// advisories.
func (dfs *DemandForecastService) Predict(ctx context.Context, req models.PredictDemandRequest) (*models.PredictDemandResponse, error) {
	if req.Month != nil && (*req.Month < 1 || *req.Month > 12) {
		return nil, &catalog.ValidationError{
			Field:   "month",
			Value:   strconv.Itoa(*req.Month),
			Allowed: []string{"1-12"},
		}
	}
	q, err := forecast.NewQuery(req.Product, req.Season, req.Weather)
	if err != nil {
		return nil, err
	}
	result, err := dfs.score(ctx, q)
	if err != nil {
		return nil, err
	}
	rec := forecast.Recommend(result.FinalScore)
	dfs.record(ctx, ArchiveEntry{Query: q, Result: result, Action: rec.Action})

	region := strings.TrimSpace(req.Region)
	if region == "" {
		region = defaultRegion
	}

	return &models.PredictDemandResponse{
		Product:              result.Product,
		Season:               q.Season.String(),
		Weather:              q.Weather.String(),
		PredictedDemandScore: result.FinalScore,
		ConfidenceScore:      dfs.engine.Confidence(),
		RecommendedStock:     rec.RecommendedUnits,
		Recommendations:      toAdvisories(forecast.Advisories(result.FinalScore, result.Product)),
		Category:             result.Category.String(),
		BaseDemand:           result.BaseDemand,
		SeasonalImpact:       result.SeasonalImpact(),
		WeatherImpact:        result.WeatherImpact(),
		InventoryAction:      string(rec.Action),
		Priority:             string(rec.Priority),
		StockChange:          rec.Percentage,
		Message:              rec.Message,
		Month:                req.Month,
		Region:               region,
	}, nil
}

// ProductDetail is the single product view of GET /predict-demand.
func (dfs *DemandForecastService) ProductDetail(ctx context.Context, product, season, weather string) (*models.ProductForecast, error) {
	q, err := forecast.NewQuery(product, season, weather)
	if err != nil {
		return nil, err
	}
	result, err := dfs.score(ctx, q)
	if err != nil {
		return nil, err
	}
	rec := forecast.Recommend(result.FinalScore)
	dfs.record(ctx, ArchiveEntry{Query: q, Result: result, Action: rec.Action})

	return &models.ProductForecast{
		Product:              result.Product,
		Category:             result.Category.String(),
		Season:               q.Season.String(),
		Weather:              q.Weather.String(),
		PredictedDemandScore: result.FinalScore,
		BaseDemand:           result.BaseDemand,
		SeasonalImpact:       result.SeasonalImpact(),
		WeatherImpact:        result.WeatherImpact(),
		InventoryAction:      string(rec.Action),
		RecommendedQuantity:  rec.RecommendedUnits,
		Priority:             string(rec.Priority),
		ConfidenceScore:      dfs.engine.Confidence(),
	}, nil
}

// Sweep ranks every catalog product for the season and weather.
func (dfs *DemandForecastService) Sweep(ctx context.Context, season, weather string) (*models.SweepResponse, error) {
	s, err := catalog.ParseSeason(season)
	if err != nil {
		return nil, err
	}
	w, err := catalog.ParseWeather(weather)
	if err != nil {
		return nil, err
	}

	report, ok, err := dfs.cache.GetSweep(ctx, s.String(), w.String())
	if err != nil {
		logger.Log.Warn().Err(err).Str("season", season).Str("weather", weather).Msg("sweep cache read failed")
	}
	if !ok {
		report, err = dfs.engine.Sweep(s, w)
		if err != nil {
			return nil, err
		}
		if err := dfs.cache.SetSweep(ctx, report); err != nil {
			logger.Log.Warn().Err(err).Msg("sweep cache write failed")
		}
	}

	return &models.SweepResponse{
		Season:             s.String(),
		Weather:            w.String(),
		TotalProducts:      len(report.Rankings),
		Predictions:        toSweepRows(report.Rankings),
		Top10:              toSweepRows(report.Top),
		HighDemandProducts: toSweepRows(report.HighDemand),
		LowDemandProducts:  toSweepRows(report.LowDemand),
	}, nil
}

// Batch scores a list of product records. Unknown products are skipped; the
// call fails with forecast.ErrNoValidProducts when none resolve.
func (dfs *DemandForecastService) Batch(ctx context.Context, req models.BatchPredictRequest) (*models.BatchPredictResponse, error) {
	s, err := catalog.ParseSeason(req.Season)
	if err != nil {
		return nil, err
	}
	w, err := catalog.ParseWeather(req.Weather)
	if err != nil {
		return nil, err
	}

	entries := make([]forecast.BatchEntry, 0, len(req.Products))
	for _, p := range req.Products {
		entries = append(entries, forecast.BatchEntry{
			ProductName:  p.ProductName,
			CostPerUnit:  p.CostPerUnit,
			CurrentStock: p.CurrentStock,
		})
	}

	report, err := dfs.engine.Batch(entries, s, w)
	if err != nil {
		return nil, err
	}
	if n := len(report.Summary.SkippedProducts); n > 0 {
		logger.Log.Info().Int("skipped", n).Strs("products", report.Summary.SkippedProducts).Msg("batch skipped unknown products")
	}

	predictions := make([]models.BatchPrediction, 0, len(report.Items))
	archived := make([]ArchiveEntry, 0, len(report.Items))
	for _, item := range report.Items {
		predictions = append(predictions, models.BatchPrediction{
			Product:              item.Result.Product,
			Category:             item.Result.Category.String(),
			Season:               s.String(),
			Weather:              w.String(),
			PredictedDemandScore: item.Result.FinalScore,
			RecommendedStock:     item.Recommendation.RecommendedUnits,
			ConfidenceScore:      item.Confidence,
			CostPerUnit:          item.Entry.CostPerUnit,
			EstimatedCost:        item.EstimatedCost.InexactFloat64(),
			InventoryAction:      string(forecast.InventoryAction(item.Result.FinalScore)),
			Priority:             string(item.Recommendation.Priority),
			CurrentStock:         item.Entry.CurrentStock,
		})
		archived = append(archived, ArchiveEntry{
			Query:  forecast.Query{Product: item.Result.Product, Season: s, Weather: w},
			Result: item.Result,
			Action: item.Recommendation.Action,
		})
	}
	dfs.record(ctx, archived...)

	return &models.BatchPredictResponse{
		Predictions: predictions,
		Summary: models.BatchSummary{
			TotalProducts:      report.Summary.TotalProducts,
			HighDemandCount:    report.Summary.HighDemandCount,
			LowDemandCount:     report.Summary.LowDemandCount,
			TotalEstimatedCost: report.Summary.TotalEstimatedCost.InexactFloat64(),
			AverageDemandScore: report.Summary.AverageDemandScore,
			SkippedProducts:    report.Summary.SkippedProducts,
		},
	}, nil
}

// Similar scores the scenario and returns the closest archived forecasts.
func (dfs *DemandForecastService) Similar(ctx context.Context, product, season, weather string, limit int, sameCategory bool) ([]models.ArchivedForecast, error) {
	if dfs.archive == nil {
		return nil, ErrArchiveDisabled
	}
	q, err := forecast.NewQuery(product, season, weather)
	if err != nil {
		return nil, err
	}
	result, err := dfs.score(ctx, q)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	limit = min(limit, maxSimilar)

	category := ""
	if sameCategory {
		category = result.Category.String()
	}
	vector := ScenarioVector(result.Category, q.Season, q.Weather, result.FinalScore)
	return dfs.archive.Similar(ctx, vector, uint64(limit), category)
}

// Products 商品一覧
func (dfs *DemandForecastService) Products() models.ProductsResponse {
	c := dfs.Catalog()
	products := c.Products()
	all := make([]models.ProductInfo, 0, len(products))
	for _, p := range products {
		all = append(all, models.ProductInfo{
			Name:       p.Name,
			Category:   p.Category.String(),
			BaseDemand: p.BaseDemand,
		})
	}
	return models.ProductsResponse{
		TotalCategories: len(catalog.Categories()),
		TotalProducts:   c.Len(),
		Categories:      catalog.CategoryNames(),
		AllProducts:     all,
	}
}

// Categories カテゴリ一覧
func (dfs *DemandForecastService) Categories() []models.CategoryInfo {
	c := dfs.Catalog()
	out := make([]models.CategoryInfo, 0, len(catalog.Categories()))
	for _, cat := range catalog.Categories() {
		products := c.ByCategory(cat)
		names := make([]string, 0, len(products))
		for _, p := range products {
			names = append(names, p.Name)
		}
		out = append(out, models.CategoryInfo{
			Name:     cat.String(),
			Class:    string(cat.Class()),
			Count:    len(names),
			Products: names,
		})
	}
	return out
}

// score キャッシュを参照しつつスコアを計算する
func (dfs *DemandForecastService) score(ctx context.Context, q forecast.Query) (forecast.DemandResult, error) {
	cached, ok, err := dfs.cache.GetScore(ctx, q)
	if err != nil {
		logger.Log.Warn().Err(err).Str("product", q.Product).Msg("score cache read failed")
	}
	if ok {
		return *cached, nil
	}

	result, err := dfs.engine.Score(q)
	if err != nil {
		return forecast.DemandResult{}, err
	}
	if err := dfs.cache.SetScore(ctx, q, result); err != nil {
		logger.Log.Warn().Err(err).Str("product", q.Product).Msg("score cache write failed")
	}
	return result, nil
}

// record アーカイブへの保存はベストエフォート。失敗してもレスポンスは変えない
func (dfs *DemandForecastService) record(ctx context.Context, entries ...ArchiveEntry) {
	if dfs.archive == nil || len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if _, err := dfs.archive.Record(ctx, entries...); err != nil {
		logger.Log.Warn().Err(err).Int("entries", len(entries)).Msg("forecast archive write failed")
	}
}

func toAdvisories(in []forecast.Advisory) []models.Advisory {
	out := make([]models.Advisory, 0, len(in))
	for _, a := range in {
		out = append(out, models.Advisory{
			Title:    a.Title,
			Action:   a.Action,
			Priority: a.Priority,
			Details:  a.Details,
		})
	}
	return out
}

func toSweepRows(in []forecast.Ranked) []models.SweepRow {
	out := make([]models.SweepRow, 0, len(in))
	for _, r := range in {
		out = append(out, models.SweepRow{
			Category:            r.Result.Category.String(),
			Product:             r.Result.Product,
			DemandScore:         r.Result.FinalScore,
			RecommendedQuantity: r.Recommendation.RecommendedUnits,
			InventoryAction:     string(r.Recommendation.Action),
			Priority:            string(r.Recommendation.Priority),
		})
	}
	return out
}
