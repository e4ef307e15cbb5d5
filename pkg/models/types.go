package models

import "time"

// PredictDemandRequest 単一商品の需要予測リクエスト
type PredictDemandRequest struct {
	Product string `json:"product" form:"product" binding:"required"`
	Season  string `json:"season" form:"season" binding:"required"`
	Weather string `json:"weather" form:"weather" binding:"required"`
	Month   *int   `json:"month,omitempty" form:"month"`
	Region  string `json:"region,omitempty" form:"region"`
}

// Advisory is a merchandising suggestion attached to a prediction.
type Advisory struct {
	Title    string `json:"title"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Details  string `json:"details"`
}

// PredictDemandResponse 単一商品の需要予測レスポンス
type PredictDemandResponse struct {
	Product              string     `json:"product"`
	Season               string     `json:"season"`
	Weather              string     `json:"weather"`
	PredictedDemandScore float64    `json:"predicted_demand_score"`
	ConfidenceScore      float64    `json:"confidence_score"`
	RecommendedStock     int        `json:"recommended_stock"`
	Recommendations      []Advisory `json:"recommendations"`
	Category             string     `json:"category"`
	BaseDemand           float64    `json:"base_demand"`
	SeasonalImpact       float64    `json:"seasonal_impact"`
	WeatherImpact        float64    `json:"weather_impact"`
	InventoryAction      string     `json:"inventory_action"`
	Priority             string     `json:"priority"`
	StockChange          string     `json:"stock_change"`
	Message              string     `json:"message"`
	Month                *int       `json:"month,omitempty"`
	Region               string     `json:"region"`
}

// ProductForecast is the GET /predict-demand detail view of one product.
type ProductForecast struct {
	Product              string  `json:"product"`
	Category             string  `json:"category"`
	Season               string  `json:"season"`
	Weather              string  `json:"weather"`
	PredictedDemandScore float64 `json:"predicted_demand_score"`
	BaseDemand           float64 `json:"base_demand"`
	SeasonalImpact       float64 `json:"seasonal_impact"`
	WeatherImpact        float64 `json:"weather_impact"`
	InventoryAction      string  `json:"inventory_action"`
	RecommendedQuantity  int     `json:"recommended_quantity"`
	Priority             string  `json:"priority"`
	ConfidenceScore      float64 `json:"confidence_score"`
}

// SweepRow 全商品ランキングの1行
type SweepRow struct {
	Category            string  `json:"category"`
	Product             string  `json:"product"`
	DemandScore         float64 `json:"demand_score"`
	RecommendedQuantity int     `json:"recommended_quantity"`
	InventoryAction     string  `json:"inventory_action"`
	Priority            string  `json:"priority"`
}

// SweepResponse 全商品ランキング
type SweepResponse struct {
	Season             string     `json:"season"`
	Weather            string     `json:"weather"`
	TotalProducts      int        `json:"total_products"`
	Predictions        []SweepRow `json:"predictions"`
	Top10              []SweepRow `json:"top_10"`
	HighDemandProducts []SweepRow `json:"high_demand_products"`
	LowDemandProducts  []SweepRow `json:"low_demand_products"`
}

// ProductRecord is one product row as produced by the upload ingester and
// consumed by the batch endpoint.
type ProductRecord struct {
	ProductName  string  `json:"product_name"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	CurrentStock int     `json:"current_stock"`
}

// BatchPredictRequest 一括予測リクエスト
type BatchPredictRequest struct {
	Products []ProductRecord `json:"products" binding:"required"`
	Season   string          `json:"season" binding:"required"`
	Weather  string          `json:"weather" binding:"required"`
}

// BatchPrediction 一括予測の1件
type BatchPrediction struct {
	Product              string  `json:"product"`
	Category             string  `json:"category"`
	Season               string  `json:"season"`
	Weather              string  `json:"weather"`
	PredictedDemandScore float64 `json:"predicted_demand_score"`
	RecommendedStock     int     `json:"recommended_stock"`
	ConfidenceScore      float64 `json:"confidence_score"`
	CostPerUnit          float64 `json:"cost_per_unit"`
	EstimatedCost        float64 `json:"estimated_cost"`
	InventoryAction      string  `json:"inventory_action"`
	Priority             string  `json:"priority"`
	CurrentStock         int     `json:"current_stock"`
}

// BatchSummary 一括予測の集計
type BatchSummary struct {
	TotalProducts      int      `json:"total_products"`
	HighDemandCount    int      `json:"high_demand_count"`
	LowDemandCount     int      `json:"low_demand_count"`
	TotalEstimatedCost float64  `json:"total_estimated_cost"`
	AverageDemandScore float64  `json:"average_demand_score"`
	SkippedProducts    []string `json:"skipped_products"`
}

// BatchPredictResponse 一括予測レスポンス
type BatchPredictResponse struct {
	Predictions []BatchPrediction `json:"predictions"`
	Summary     BatchSummary      `json:"summary"`
}

// DataSummary describes the quality of an uploaded table.
type DataSummary struct {
	MissingValues  map[string]int `json:"missing_values"`
	SampleProducts []string       `json:"sample_products"`
}

// UploadResponse アップロード結果
type UploadResponse struct {
	Status        string              `json:"status"`
	DatasetID     string              `json:"dataset_id"`
	Filename      string              `json:"filename"`
	TotalRows     int                 `json:"total_rows"`
	ProductsFound int                 `json:"products_found"`
	Products      []ProductRecord     `json:"products"`
	Columns       []string            `json:"columns"`
	Preview       []map[string]string `json:"preview"`
	DataSummary   DataSummary         `json:"data_summary"`
}

// Dataset is the parsed content of the last uploaded file.
type Dataset struct {
	ID         string          `json:"dataset_id"`
	Filename   string          `json:"filename"`
	Columns    []string        `json:"columns"`
	Rows       [][]string      `json:"-"`
	Records    []ProductRecord `json:"products"`
	UploadedAt time.Time       `json:"uploaded_at"`
}

// ProductInfo 商品一覧の1件
type ProductInfo struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	BaseDemand float64 `json:"base_demand"`
}

// ProductsResponse 商品一覧
type ProductsResponse struct {
	TotalCategories int           `json:"total_categories"`
	TotalProducts   int           `json:"total_products"`
	Categories      []string      `json:"categories"`
	AllProducts     []ProductInfo `json:"all_products"`
}

// CategoryInfo カテゴリと所属商品
type CategoryInfo struct {
	Name     string   `json:"name"`
	Class    string   `json:"class"`
	Count    int      `json:"product_count"`
	Products []string `json:"products"`
}

// ArchivedForecast is a past scoring result stored in the vector archive.
type ArchivedForecast struct {
	ID         string    `json:"id"`
	Product    string    `json:"product"`
	Category   string    `json:"category"`
	Season     string    `json:"season"`
	Weather    string    `json:"weather"`
	FinalScore float64   `json:"final_score"`
	Action     string    `json:"action"`
	RecordedAt time.Time `json:"recorded_at"`
	Similarity float32   `json:"similarity,omitempty"`
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error         string   `json:"error"`
	Reason        string   `json:"reason"`
	Message       string   `json:"message,omitempty"`
	ValidProducts []string `json:"valid_products,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}
