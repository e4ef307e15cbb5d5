package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"agri-demand-api/pkg/models"
	"agri-demand-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// UploadHandler 在庫ファイルのアップロードを扱うハンドラー
type UploadHandler struct {
	uploadService *services.UploadService
	store         *services.DatasetStore
	maxBytes      int64
}

// NewUploadHandler 新しいアップロードハンドラーを作成
func NewUploadHandler(uploadService *services.UploadService, store *services.DatasetStore, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadHandler{uploadService: uploadService, store: store, maxBytes: maxBytes}
}

// UploadExcel multipartの"file"フィールドからExcel/CSVを読み込み、最新データセットとして保存する
func (h *UploadHandler) UploadExcel(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:  "File exceeds the upload size limit",
				Reason: "file_too_large",
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "A file must be sent in the 'file' form field",
			Reason: "invalid_request",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.uploadService.Ingest(fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// LatestUpload 最後にアップロードされたデータセットを返す
func (h *UploadHandler) LatestUpload(c *gin.Context) {
	ds, ok := h.store.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:  "No dataset has been uploaded",
			Reason: "no_upload",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dataset_id":     ds.ID,
		"filename":       ds.Filename,
		"uploaded_at":    ds.UploadedAt.Format(time.RFC3339),
		"total_rows":     len(ds.Rows),
		"products_found": len(ds.Records),
		"columns":        ds.Columns,
		"products":       ds.Records,
	})
}
