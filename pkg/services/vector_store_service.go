package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/models"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// ErrArchiveDisabled is returned when no archive endpoint is configured.
var ErrArchiveDisabled = errors.New("forecast archive is not configured")

// scoreScale normalises the final score into the last vector component.
const scoreScale = 200.0

// FeatureSize is the dimension of a scenario vector:
// category one-hot, season one-hot, weather one-hot, scaled score.
var FeatureSize = uint64(len(catalog.Categories()) + len(catalog.Seasons()) + len(catalog.Weathers()) + 1)

// ForecastArchiveService はスコア計算結果をQdrantにシナリオベクトルとして保存し、
// 類似シナリオの検索を提供します。
type ForecastArchiveService struct {
	points         qdrant.PointsClient
	collections    qdrant.CollectionsClient
	collectionName string
	conn           *grpc.ClientConn
}

// NewForecastArchiveService はQdrantへ接続し、コレクションを用意して返します
func NewForecastArchiveService(ctx context.Context, cfg config.QdrantConfig) (*ForecastArchiveService, error) {
	if !cfg.Enabled() {
		return nil, ErrArchiveDisabled
	}

	var dialOpts []grpc.DialOption

	// APIキーの有無で、Cloud接続(TLS+APIキー)とローカル接続(非セキュア)を切り替える
	if cfg.APIKey != "" {
		logger.Log.Info().Str("url", cfg.URL).Msg("connecting to Qdrant Cloud over TLS")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))

		apiKey := cfg.APIKey
		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		logger.Log.Info().Str("url", cfg.URL).Msg("connecting to local Qdrant")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(cfg.URL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("create qdrant grpc client: %w", err)
	}

	s := newForecastArchive(qdrant.NewPointsClient(conn), qdrant.NewCollectionsClient(conn), cfg.Collection)
	s.conn = conn

	if err := s.waitReady(ctx, 5, 2*time.Second); err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.EnsureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func newForecastArchive(points qdrant.PointsClient, collections qdrant.CollectionsClient, collection string) *ForecastArchiveService {
	if collection == "" {
		collection = "demand_forecasts"
	}
	return &ForecastArchiveService{
		points:         points,
		collections:    collections,
		collectionName: collection,
	}
}

// Close releases the gRPC connection.
func (s *ForecastArchiveService) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Collection returns the name of the backing collection.
func (s *ForecastArchiveService) Collection() string {
	return s.collectionName
}

// waitReady Qdrantサーバーが起動するまでリトライする
func (s *ForecastArchiveService) waitReady(ctx context.Context, attempts int, interval time.Duration) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := s.collections.List(listCtx, &qdrant.ListCollectionsRequest{})
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Log.Warn().Err(err).Int("attempt", i+1).Int("max", attempts).Msg("qdrant not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("qdrant not reachable: %w", lastErr)
}

// EnsureCollection コレクションが存在することを確認し、なければ作成
func (s *ForecastArchiveService) EnsureCollection(ctx context.Context) error {
	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.collections.List(listCtx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list qdrant collections: %w", err)
	}
	for _, collection := range res.GetCollections() {
		if collection.GetName() == s.collectionName {
			logger.Log.Debug().Str("collection", s.collectionName).Msg("archive collection exists")
			return nil
		}
	}
	return s.createCollection(ctx)
}

func (s *ForecastArchiveService) createCollection(ctx context.Context) error {
	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.collections.Create(createCtx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     FeatureSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create qdrant collection %q: %w", s.collectionName, err)
	}
	logger.Log.Info().Str("collection", s.collectionName).Msg("archive collection created")
	return nil
}

// Reset drops the collection and creates it empty.
func (s *ForecastArchiveService) Reset(ctx context.Context) error {
	delCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.collections.Delete(delCtx, &qdrant.DeleteCollection{CollectionName: s.collectionName}); err != nil {
		return fmt.Errorf("delete qdrant collection %q: %w", s.collectionName, err)
	}
	return s.createCollection(ctx)
}

// ArchiveEntry is one scored scenario to be archived.
type ArchiveEntry struct {
	Query  forecast.Query
	Result forecast.DemandResult
	Action forecast.Action
}

// Record はスコア結果をまとめてQdrantにUpsertし、付与したポイントIDを返します。
func (s *ForecastArchiveService) Record(ctx context.Context, entries ...ArchiveEntry) ([]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	recordedAt := time.Now().UTC().Format(time.RFC3339)

	ids := make([]string, 0, len(entries))
	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		pointID := uuid.New().String()
		ids = append(ids, pointID)
		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: ScenarioVector(e.Result.Category, e.Query.Season, e.Query.Weather, e.Result.FinalScore)},
				},
			},
			Payload: map[string]*qdrant.Value{
				"product":     stringValue(e.Result.Product),
				"category":    stringValue(e.Result.Category.String()),
				"season":      stringValue(e.Query.Season.String()),
				"weather":     stringValue(e.Query.Weather.String()),
				"final_score": {Kind: &qdrant.Value_DoubleValue{DoubleValue: e.Result.FinalScore}},
				"action":      stringValue(string(e.Action)),
				"recorded_at": stringValue(recordedAt),
			},
		})
	}

	wait := true
	_, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert %d forecasts: %w", len(points), err)
	}

	logger.Log.Debug().Int("points", len(points)).Str("collection", s.collectionName).Msg("forecasts archived")
	return ids, nil
}

// Similar returns the archived forecasts nearest to the scenario. A non-empty
// category restricts the search to that category.
func (s *ForecastArchiveService) Similar(ctx context.Context, vector []float32, limit uint64, category string) ([]models.ArchivedForecast, error) {
	req := &qdrant.SearchPoints{
		CollectionName: s.collectionName,
		Vector:         vector,
		Limit:          limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	}
	if category != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				{
					ConditionOneOf: &qdrant.Condition_Field{
						Field: &qdrant.FieldCondition{
							Key: "category",
							Match: &qdrant.Match{
								MatchValue: &qdrant.Match_Keyword{Keyword: category},
							},
						},
					},
				},
			},
		}
	}

	res, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search archived forecasts: %w", err)
	}

	out := make([]models.ArchivedForecast, 0, len(res.GetResult()))
	for _, point := range res.GetResult() {
		payload := point.GetPayload()
		recordedAt, _ := time.Parse(time.RFC3339, getStringFromPayload(payload, "recorded_at"))
		out = append(out, models.ArchivedForecast{
			ID:         point.GetId().GetUuid(),
			Product:    getStringFromPayload(payload, "product"),
			Category:   getStringFromPayload(payload, "category"),
			Season:     getStringFromPayload(payload, "season"),
			Weather:    getStringFromPayload(payload, "weather"),
			FinalScore: getFloatFromPayload(payload, "final_score"),
			Action:     getStringFromPayload(payload, "action"),
			RecordedAt: recordedAt,
			Similarity: point.GetScore(),
		})
	}
	return out, nil
}

// ScenarioVector encodes a scored scenario as a fixed size feature vector.
func ScenarioVector(category catalog.Category, season catalog.Season, weather catalog.Weather, score float64) []float32 {
	v := make([]float32, FeatureSize)
	offset := 0
	v[offset+int(category)] = 1
	offset += len(catalog.Categories())
	v[offset+int(season)] = 1
	offset += len(catalog.Seasons())
	v[offset+int(weather)] = 1
	offset += len(catalog.Weathers())
	v[offset] = float32(score / scoreScale)
	return v
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

// getStringFromPayload Payloadから文字列を取得
func getStringFromPayload(payload map[string]*qdrant.Value, key string) string {
	if val, ok := payload[key]; ok && val != nil {
		return val.GetStringValue()
	}
	return ""
}

// getFloatFromPayload Payloadから数値を取得
func getFloatFromPayload(payload map[string]*qdrant.Value, key string) float64 {
	if val, ok := payload[key]; ok && val != nil {
		if doubleVal := val.GetDoubleValue(); doubleVal != 0 {
			return doubleVal
		}
		if intVal := val.GetIntegerValue(); intVal != 0 {
			return float64(intVal)
		}
	}
	return 0
}
