package handlers

import (
	"net/http"
	"sync/atomic"
	"time"

	config "agri-demand-api/configs"
	"agri-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// Maintenance はサーバーがメンテナンスモードかどうかを保持します。
// atomic.Boolを使用して、スレッドセーフな読み書きを保証します。
type Maintenance struct {
	enabled atomic.Bool
}

// Enabled reports whether maintenance mode is on.
func (m *Maintenance) Enabled() bool { return m.enabled.Load() }

// Set switches maintenance mode.
func (m *Maintenance) Set(on bool) { m.enabled.Store(on) }

// AdminHandler は管理者向け操作のハンドラです。
type AdminHandler struct {
	AdminUsername string
	AdminPassword string
	maintenance   *Maintenance
}

// NewAdminHandler は新しいAdminHandlerを生成します。
func NewAdminHandler(cfg *config.Config, maintenance *Maintenance) *AdminHandler {
	return &AdminHandler{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		maintenance:   maintenance,
	}
}

// AdminCredentials は管理者認証のためのリクエストボディです。
type AdminCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authorize validates the credentials in the body and writes the error response
// when they are missing or wrong.
func (h *AdminHandler) authorize(c *gin.Context) bool {
	var input AdminCredentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return false
	}
	// ADMIN_PASSWORD 未設定時は管理操作を受け付けない
	if h.AdminPassword == "" || input.Username != h.AdminUsername || input.Password != h.AdminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return false
	}
	return true
}

// StartMaintenance はメンテナンスモードを開始します。
func (h *AdminHandler) StartMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Set(true)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode started"})
}

// StopMaintenance はメンテナンスモードを停止します。
func (h *AdminHandler) StopMaintenance(c *gin.Context) {
	if !h.authorize(c) {
		return
	}
	h.maintenance.Set(false)
	c.JSON(http.StatusOK, gin.H{"message": "Maintenance mode stopped"})
}

// GetHealthStatus は現在のサーバーの状態を返します。
func (h *AdminHandler) GetHealthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"isMaintenanceMode": h.maintenance.Enabled()})
}

// HealthHandler は外部のヘルスチェッカー（例: ロードバランサー）からのリクエストに応答します。
type HealthHandler struct {
	demandForecastService *services.DemandForecastService
	store                 *services.DatasetStore
	maintenance           *Maintenance
}

// NewHealthHandler は新しいHealthHandlerを生成します。
func NewHealthHandler(svc *services.DemandForecastService, store *services.DatasetStore, maintenance *Maintenance) *HealthHandler {
	return &HealthHandler{demandForecastService: svc, store: store, maintenance: maintenance}
}

// HealthCheck メンテナンス中は503を返す
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.maintenance.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Server is in maintenance mode"})
		return
	}

	uploaded := "not uploaded"
	if h.store.Available() {
		uploaded = "available"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"total_products":  h.demandForecastService.Catalog().Len(),
		"categories":      len(h.demandForecastService.Categories()),
		"uploaded_data":   uploaded,
		"archive_enabled": h.demandForecastService.ArchiveEnabled(),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}
