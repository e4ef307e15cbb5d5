package handlers

import (
	"net/http"
	"strconv"

	"agri-demand-api/pkg/models"
	"agri-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// DemandForecastHandler 需要予測ハンドラー
type DemandForecastHandler struct {
	demandForecastService *services.DemandForecastService
}

// NewDemandForecastHandler 新しい需要予測ハンドラーを作成
func NewDemandForecastHandler(svc *services.DemandForecastService) *DemandForecastHandler {
	return &DemandForecastHandler{demandForecastService: svc}
}

// PredictDemand 単一商品の需要予測 (POST)
func (dfh *DemandForecastHandler) PredictDemand(c *gin.Context) {
	var request models.PredictDemandRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := dfh.demandForecastService.Predict(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetPredictDemand productが指定されていれば単一商品の詳細、なければ全商品ランキングを返す
func (dfh *DemandForecastHandler) GetPredictDemand(c *gin.Context) {
	season := c.Query("season")
	weather := c.Query("weather")
	if season == "" || weather == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "season and weather query parameters are required",
			Reason: "invalid_request",
		})
		return
	}

	if product := c.Query("product"); product != "" {
		res, err := dfh.demandForecastService.ProductDetail(c.Request.Context(), product, season, weather)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	res, err := dfh.demandForecastService.Sweep(c.Request.Context(), season, weather)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PredictBatch 一括需要予測
func (dfh *DemandForecastHandler) PredictBatch(c *gin.Context) {
	var request models.BatchPredictRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := dfh.demandForecastService.Batch(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ArchiveSimilar 過去に予測した類似シナリオを検索
func (dfh *DemandForecastHandler) ArchiveSimilar(c *gin.Context) {
	product := c.Query("product")
	season := c.Query("season")
	weather := c.Query("weather")
	if product == "" || season == "" || weather == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "product, season and weather query parameters are required",
			Reason: "invalid_request",
		})
		return
	}

	limit, err := queryInt(c, "limit", 5)
	if err != nil {
		respondError(c, err)
		return
	}
	sameCategory, _ := strconv.ParseBool(c.DefaultQuery("same_category", "false"))

	matches, err := dfh.demandForecastService.Similar(c.Request.Context(), product, season, weather, limit, sameCategory)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"season":  season,
		"weather": weather,
		"count":   len(matches),
		"matches": matches,
	})
}
