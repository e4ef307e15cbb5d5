package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"agri-demand-api/pkg/catalog"
	"agri-demand-api/pkg/forecast"
	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/models"
	"agri-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const notFoundMessage = "Please select from valid categories: Fertilizers, Seeds, or Pesticides"

// respondError はサービス層のエラーをHTTPステータスとエラーボディに変換します。
func respondError(c *gin.Context, err error) {
	var (
		validationErr *catalog.ValidationError
		notFoundErr   *catalog.NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  validationErr.Error(),
			Reason: validationErr.Reason(),
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:         notFoundErr.Error(),
			Reason:        "product_not_found",
			Message:       notFoundMessage,
			ValidProducts: notFoundErr.ValidProducts,
			Categories:    notFoundErr.Categories,
		})
	case errors.Is(err, forecast.ErrNoValidProducts):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "No valid products found for prediction",
			Reason: "no_valid_products",
		})
	case errors.Is(err, services.ErrEmptyFile),
		errors.Is(err, services.ErrUnreadableFile),
		errors.Is(err, services.ErrNoProductData):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  err.Error(),
			Reason: "invalid_file",
		})
	case errors.Is(err, services.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:  err.Error(),
			Reason: "archive_disabled",
		})
	default:
		logger.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:  "Internal server error",
			Reason: "internal_error",
		})
	}
}

// respondBindError は入力の解析エラーを400で返します。
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:  "Invalid request: " + err.Error(),
		Reason: "invalid_request",
	})
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &catalog.ValidationError{Field: key, Value: raw, Allowed: []string{"integer"}}
	}
	return v, nil
}
