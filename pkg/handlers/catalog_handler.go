package handlers

import (
	"net/http"
	"time"

	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ServiceName is reported by the banner and model description endpoints.
const ServiceName = "AI Demand Prediction API"

// APIVersion is the version reported by the banner.
const APIVersion = "2.0"

// CatalogHandler 商品カタログの参照系ハンドラー
type CatalogHandler struct {
	demandForecastService *services.DemandForecastService
}

// NewCatalogHandler 新しいカタログハンドラーを作成
func NewCatalogHandler(svc *services.DemandForecastService) *CatalogHandler {
	return &CatalogHandler{demandForecastService: svc}
}

// Root サービスのバナーを返す
func (h *CatalogHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   ServiceName,
		"status":    "running",
		"version":   APIVersion,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Products 全商品の一覧
func (h *CatalogHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, h.demandForecastService.Products())
}

// Categories カテゴリごとの商品一覧
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories := h.demandForecastService.Categories()
	c.JSON(http.StatusOK, gin.H{
		"total_categories": len(categories),
		"categories":       categories,
	})
}

// ModelInfo スコアリングモデルの概要
func (h *CatalogHandler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_type":     "Rule-based demand scoring",
		"is_trained":     false,
		"features_used":  3,
		"total_products": h.demandForecastService.Catalog().Len(),
		"categories":     catalog.CategoryNames(),
		"seasons":        catalog.SeasonNames(),
		"weather":        catalog.WeatherNames(),
	})
}

// MLStatus スコアリングの入力要素と閾値
func (h *CatalogHandler) MLStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model_type": "Rule-based demand scoring",
		"algorithm":  "Base demand with seasonal and weather factors and deterministic jitter",
		"features": []string{
			"Product base demand",
			"Seasonal variations",
			"Weather impact",
			"Category-specific logic",
			"Randomized confidence intervals",
		},
		"total_predictions_available": h.demandForecastService.Catalog().Len(),
		"archive_enabled":             h.demandForecastService.ArchiveEnabled(),
		"update_frequency":            "Real-time",
	})
}
