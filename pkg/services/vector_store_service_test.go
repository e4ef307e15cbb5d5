package services

import (
	"context"
	"errors"
	"testing"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type fakePointsClient struct {
	qdrant.PointsClient
	upserts   []*qdrant.UpsertPoints
	searches  []*qdrant.SearchPoints
	results   []*qdrant.ScoredPoint
	upsertErr error
}

func (f *fakePointsClient) Upsert(_ context.Context, in *qdrant.UpsertPoints, _ ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, in)
	return &qdrant.PointsOperationResponse{}, nil
}

func (f *fakePointsClient) Search(_ context.Context, in *qdrant.SearchPoints, _ ...grpc.CallOption) (*qdrant.SearchResponse, error) {
	f.searches = append(f.searches, in)
	return &qdrant.SearchResponse{Result: f.results}, nil
}

type fakeCollectionsClient struct {
	qdrant.CollectionsClient
	existing []string
	created  []*qdrant.CreateCollection
	deleted  []string
}

func (f *fakeCollectionsClient) List(_ context.Context, _ *qdrant.ListCollectionsRequest, _ ...grpc.CallOption) (*qdrant.ListCollectionsResponse, error) {
	res := &qdrant.ListCollectionsResponse{}
	for _, name := range f.existing {
		res.Collections = append(res.Collections, &qdrant.CollectionDescription{Name: name})
	}
	return res, nil
}

func (f *fakeCollectionsClient) Create(_ context.Context, in *qdrant.CreateCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	f.existing = append(f.existing, in.CollectionName)
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollectionsClient) Delete(_ context.Context, in *qdrant.DeleteCollection, _ ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.deleted = append(f.deleted, in.CollectionName)
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func scoredEntry(t *testing.T, product, season, weather string) ArchiveEntry {
	t.Helper()
	q, err := forecast.NewQuery(product, season, weather)
	require.NoError(t, err)
	res, err := forecast.NewEngine(catalog.Default()).Score(q)
	require.NoError(t, err)
	return ArchiveEntry{Query: q, Result: res, Action: forecast.Recommend(res.FinalScore).Action}
}

func TestEnsureCollection(t *testing.T) {
	collections := &fakeCollectionsClient{}
	archive := newForecastArchive(&fakePointsClient{}, collections, "")

	require.NoError(t, archive.EnsureCollection(context.Background()))
	require.Len(t, collections.created, 1)
	assert.Equal(t, "demand_forecasts", collections.created[0].CollectionName)
	params := collections.created[0].GetVectorsConfig().GetParams()
	assert.Equal(t, FeatureSize, params.GetSize())
	assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())

	// 既存のコレクションは作り直さない
	require.NoError(t, archive.EnsureCollection(context.Background()))
	assert.Len(t, collections.created, 1)
}

func TestArchiveReset(t *testing.T) {
	collections := &fakeCollectionsClient{existing: []string{"forecasts"}}
	archive := newForecastArchive(&fakePointsClient{}, collections, "forecasts")

	require.NoError(t, archive.Reset(context.Background()))
	assert.Equal(t, []string{"forecasts"}, collections.deleted)
	assert.Len(t, collections.created, 1)
}

func TestArchiveRecordBatchesPoints(t *testing.T) {
	points := &fakePointsClient{}
	archive := newForecastArchive(points, &fakeCollectionsClient{}, "forecasts")

	ids, err := archive.Record(context.Background(),
		scoredEntry(t, "Urea", "Monsoon", "Rainy"),
		scoredEntry(t, "Insecticide", "Summer", "Humid"),
	)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	require.Len(t, points.upserts, 1)
	upsert := points.upserts[0]
	assert.Equal(t, "forecasts", upsert.CollectionName)
	require.Len(t, upsert.Points, 2)

	first := upsert.Points[0]
	assert.Equal(t, ids[0], first.GetId().GetUuid())
	assert.Len(t, first.GetVectors().GetVector().GetData(), int(FeatureSize))
	assert.Equal(t, "Urea", first.Payload["product"].GetStringValue())
	assert.Equal(t, "Fertilizers", first.Payload["category"].GetStringValue())
	assert.Equal(t, "Increase Stock", first.Payload["action"].GetStringValue())
}

func TestArchiveRecordEmptyAndError(t *testing.T) {
	points := &fakePointsClient{}
	archive := newForecastArchive(points, &fakeCollectionsClient{}, "forecasts")

	ids, err := archive.Record(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ids)
	assert.Empty(t, points.upserts)

	points.upsertErr = errors.New("unavailable")
	_, err = archive.Record(context.Background(), scoredEntry(t, "DAP", "Winter", "Dry"))
	assert.Error(t, err)
}

func TestArchiveSimilar(t *testing.T) {
	points := &fakePointsClient{results: []*qdrant.ScoredPoint{
		{
			Id:    &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: "p-1"}},
			Score: 0.98,
			Payload: map[string]*qdrant.Value{
				"product":     stringValue("Urea"),
				"category":    stringValue("Fertilizers"),
				"season":      stringValue("Monsoon"),
				"weather":     stringValue("Rainy"),
				"final_score": {Kind: &qdrant.Value_DoubleValue{DoubleValue: 160.12}},
				"action":      stringValue("Increase Stock"),
				"recorded_at": stringValue("2026-01-02T03:04:05Z"),
			},
		},
	}}
	archive := newForecastArchive(points, &fakeCollectionsClient{}, "forecasts")

	vector := ScenarioVector(catalog.Fertilizers, catalog.Monsoon, catalog.Rainy, 160)
	matches, err := archive.Similar(context.Background(), vector, 3, "Fertilizers")
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "p-1", matches[0].ID)
	assert.Equal(t, 160.12, matches[0].FinalScore)
	assert.Equal(t, float32(0.98), matches[0].Similarity)
	assert.Equal(t, 2026, matches[0].RecordedAt.Year())

	require.Len(t, points.searches, 1)
	search := points.searches[0]
	assert.Equal(t, uint64(3), search.Limit)
	require.NotNil(t, search.Filter)
	assert.Equal(t, "Fertilizers", search.Filter.Must[0].GetField().GetMatch().GetKeyword())
}

func TestScenarioVector(t *testing.T) {
	v := ScenarioVector(catalog.Seeds, catalog.Winter, catalog.Dry, 100)
	require.Len(t, v, 15)

	var ones int
	for _, x := range v[:14] {
		if x == 1 {
			ones++
		}
	}
	assert.Equal(t, 3, ones)
	assert.Equal(t, float32(1), v[int(catalog.Seeds)])
	assert.Equal(t, float32(1), v[3+int(catalog.Winter)])
	assert.Equal(t, float32(1), v[8+int(catalog.Dry)])
	assert.Equal(t, float32(0.5), v[14])
}

func TestNewForecastArchiveServiceDisabled(t *testing.T) {
	_, err := NewForecastArchiveService(context.Background(), config.QdrantConfig{})
	assert.ErrorIs(t, err, ErrArchiveDisabled)
}
