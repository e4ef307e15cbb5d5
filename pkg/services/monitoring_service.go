package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"agri-demand-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultLogCapacity is the number of requests kept by the monitoring ring.
const DefaultLogCapacity = 10000

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	RequestID    string        `json:"requestId"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
// 直近capacity件のリクエストをリングバッファに保持します。
type MonitoringService struct {
	mu       sync.RWMutex
	logs     []LogEntry
	next     int
	full     bool
	capacity int
	skip     []string
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
// skipPrefixes に一致するパスは記録しません。
func NewMonitoringService(capacity int, skipPrefixes ...string) *MonitoringService {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &MonitoringService{
		logs:     make([]LogEntry, capacity),
		capacity: capacity,
		skip:     skipPrefixes,
	}
}

// LogRequest はリクエストを記録します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[s.next] = entry
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
}

// Len returns the number of stored entries.
func (s *MonitoringService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.full {
		return s.capacity
	}
	return s.next
}

// snapshot returns the stored entries oldest first. Caller holds the read lock.
func (s *MonitoringService) snapshot() []LogEntry {
	if !s.full {
		return append([]LogEntry(nil), s.logs[:s.next]...)
	}
	out := make([]LogEntry, 0, s.capacity)
	out = append(out, s.logs[s.next:]...)
	return append(out, s.logs[:s.next]...)
}

// LoggingMiddleware はリクエストIDを付与し、リクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		// 次のミドルウェア/ハンドラを実行
		c.Next()

		path := c.Request.URL.Path
		status := c.Writer.Status()
		latency := time.Since(start)

		event := logger.Log.Info()
		if status >= 500 {
			event = logger.Log.Error()
		} else if status >= 400 {
			event = logger.Log.Warn()
		}
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", latency).
			Msg("Request processed")

		for _, prefix := range s.skip {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		s.LogRequest(LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   status,
			ResponseTime: latency,
		})
	}
}

// HourlyCount is the number of requests started within one hour.
type HourlyCount struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusClassCount groups responses by status class.
type StatusClassCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointLatency is the mean response time of a path in milliseconds.
type EndpointLatency struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyCount      `json:"requestsOverTime"`
	Endpoints        map[string]int     `json:"endpoints"`
	StatusCodes      []StatusClassCount `json:"statusCodes"`
	AvgResponseTimes []EndpointLatency  `json:"avgResponseTimes"`
	RecentErrors     []LogEntry         `json:"recentErrors"`
}

const (
	statusSuccess     = "2xx Success"
	statusClientError = "4xx Client Error"
	statusServerError = "5xx Server Error"
	recentErrorLimit  = 10
)

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	return s.dashboardAt(time.Now(), periodHours)
}

func (s *MonitoringService) dashboardAt(now time.Time, periodHours int) DashboardData {
	if periodHours <= 0 {
		periodHours = 24
	}

	s.mu.RLock()
	entries := s.snapshot()
	s.mu.RUnlock()

	since := now.Add(-time.Duration(periodHours) * time.Hour)
	filtered := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp.After(since) {
			filtered = append(filtered, e)
		}
	}

	// 時間バケット（過去から現在の順）
	hourly := make([]HourlyCount, periodHours)
	bucketIndex := make(map[time.Time]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		bucketIndex[t] = i
		hourly[i] = HourlyCount{Time: t.Format("15:00")}
	}

	endpoints := make(map[string]int)
	classes := map[string]int{statusSuccess: 0, statusClientError: 0, statusServerError: 0}
	latencySum := make(map[string]time.Duration)

	for _, e := range filtered {
		if i, ok := bucketIndex[e.Timestamp.Truncate(time.Hour)]; ok {
			hourly[i].Requests++
		}
		endpoints[e.Path]++
		latencySum[e.Path] += e.ResponseTime

		switch {
		case e.StatusCode >= 500:
			classes[statusServerError]++
		case e.StatusCode >= 400:
			classes[statusClientError]++
		case e.StatusCode >= 200 && e.StatusCode < 300:
			classes[statusSuccess]++
		}
	}

	statusCodes := []StatusClassCount{
		{Name: statusSuccess, Value: classes[statusSuccess]},
		{Name: statusClientError, Value: classes[statusClientError]},
		{Name: statusServerError, Value: classes[statusServerError]},
	}

	avg := make([]EndpointLatency, 0, len(latencySum))
	for path, total := range latencySum {
		avg = append(avg, EndpointLatency{
			Endpoint:     path,
			ResponseTime: total.Milliseconds() / int64(endpoints[path]),
		})
	}
	sort.Slice(avg, func(i, j int) bool { return avg[i].Endpoint < avg[j].Endpoint })

	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < recentErrorLimit; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: hourly,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avg,
		RecentErrors:     recentErrors,
	}
}
