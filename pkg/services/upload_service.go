package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"agri-demand-api/pkg/logger"
	"agri-demand-api/pkg/models"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrUnreadableFile = errors.New("cannot read file, supported formats are Excel (.xlsx) and CSV (.csv)")
	ErrNoProductData  = errors.New("no product data could be extracted from the file")
)

const (
	responseProductLimit = 50
	sampleProductLimit   = 5
)

var (
	productKeywords  = []string{"product", "name", "item"}
	costKeywords     = []string{"cost", "price", "rate", "amount", "value"}
	quantityKeywords = []string{"quantity", "stock", "qty", "units", "amount"}
)

// UploadService はアップロードされた表形式ファイルから商品レコードを抽出します。
type UploadService struct {
	store       *DatasetStore
	previewRows int
}

func NewUploadService(store *DatasetStore, previewRows int) *UploadService {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &UploadService{store: store, previewRows: previewRows}
}

// Ingest parses the file, stores it as the latest dataset and returns the
// upload summary.
func (s *UploadService) Ingest(filename string, data []byte) (*models.UploadResponse, error) {
	ds, err := ParseDataset(filename, data)
	if err != nil {
		return nil, err
	}
	s.store.Set(ds)

	logger.Log.Info().
		Str("dataset_id", ds.ID).
		Str("filename", filename).
		Int("rows", len(ds.Rows)).
		Int("products", len(ds.Records)).
		Msg("dataset uploaded")

	return s.Summarize(ds), nil
}

// Summarize builds the upload response for a dataset.
func (s *UploadService) Summarize(ds *models.Dataset) *models.UploadResponse {
	products := ds.Records
	if len(products) > responseProductLimit {
		products = products[:responseProductLimit]
	}

	samples := make([]string, 0, sampleProductLimit)
	for _, r := range ds.Records {
		if len(samples) == sampleProductLimit {
			break
		}
		samples = append(samples, r.ProductName)
	}

	missing := make(map[string]int, len(ds.Columns))
	for _, col := range ds.Columns {
		missing[col] = 0
	}
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			if cell(row, i) == "" {
				missing[col]++
			}
		}
	}

	preview := make([]map[string]string, 0, s.previewRows)
	for _, row := range ds.Rows {
		if len(preview) == s.previewRows {
			break
		}
		m := make(map[string]string, len(ds.Columns))
		for i, col := range ds.Columns {
			m[col] = cell(row, i)
		}
		preview = append(preview, m)
	}

	return &models.UploadResponse{
		Status:        "success",
		DatasetID:     ds.ID,
		Filename:      ds.Filename,
		TotalRows:     len(ds.Rows),
		ProductsFound: len(ds.Records),
		Products:      products,
		Columns:       ds.Columns,
		Preview:       preview,
		DataSummary: models.DataSummary{
			MissingValues:  missing,
			SampleProducts: samples,
		},
	}
}

// ParseDataset reads an .xlsx or .csv payload. Files with any other extension
// are tried as Excel first and then as CSV.
func ParseDataset(filename string, data []byte) (*models.Dataset, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		rows, err = readExcel(data)
	case ".csv":
		rows, err = readCSV(data)
	default:
		rows, err = readExcel(data)
		if err != nil {
			rows, err = readCSV(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	rows = dropBlankRows(rows)
	if len(rows) < 2 {
		return nil, ErrNoProductData
	}

	columns := normalizeHeaders(rows[0])
	body := rows[1:]

	return &models.Dataset{
		ID:         uuid.New().String(),
		Filename:   filename,
		Columns:    columns,
		Rows:       body,
		Records:    ExtractRecords(columns, body),
		UploadedAt: time.Now(),
	}, nil
}

// ExtractRecords maps table rows to product records using the first column
// whose normalised header contains each keyword group.
func ExtractRecords(columns []string, rows [][]string) []models.ProductRecord {
	productIdx := findColumn(columns, productKeywords)
	if productIdx < 0 {
		productIdx = 0
	}
	costIdx := findColumn(columns, costKeywords)
	qtyIdx := findColumn(columns, quantityKeywords)

	records := make([]models.ProductRecord, 0, len(rows))
	for i, row := range rows {
		name := cell(row, productIdx)
		if name == "" {
			name = fmt.Sprintf("Product_%d", i)
		}
		rec := models.ProductRecord{ProductName: name}
		if costIdx >= 0 {
			rec.CostPerUnit = parseCost(cell(row, costIdx))
		}
		if qtyIdx >= 0 {
			rec.CurrentStock = parseQuantity(cell(row, qtyIdx))
		}
		records = append(records, rec)
	}
	return records
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// normalizeHeaders 列名を小文字化し、空白をアンダースコアに置き換える
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		out[i] = strings.ReplaceAll(h, " ", "_")
	}
	return out
}

func findColumn(columns []string, keywords []string) int {
	for i, col := range columns {
		for _, kw := range keywords {
			if strings.Contains(col, kw) {
				return i
			}
		}
	}
	return -1
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseCost(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseQuantity truncates fractional quantities toward zero. Values outside
// the int range read as 0, like unparseable ones.
func parseQuantity(s string) int {
	v := math.Trunc(parseCost(s))
	if v >= math.MaxInt || v < math.MinInt {
		return 0
	}
	return int(v)
}
