package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultMaxLogEntries は保持するリクエストログの上限です。
const DefaultMaxLogEntries = 10000

// LogEntry は単一のリクエストログを表します。
// Route はセッションIDを含まないルートテンプレート (/ui/sessions/:id/chat など) です。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Route        string        `json:"route"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService はUIサーバーへのリクエストを記録・集計します。
type MonitoringService struct {
	mu         sync.RWMutex
	logs       []LogEntry
	maxEntries int
	location   *time.Location
	now        func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
// location が nil の場合は UTC で集計します。
func NewMonitoringService(location *time.Location) *MonitoringService {
	if location == nil {
		location = time.UTC
	}
	return &MonitoringService{
		logs:       make([]LogEntry, 0),
		maxEntries: DefaultMaxLogEntries,
		location:   location,
		now:        time.Now,
	}
}

// LogRequest はリクエストを記録します。上限を超えた古いログは捨てます。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - s.maxEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "(unmatched)"
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Route:        route,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// HourlyCount は1時間あたりのリクエスト数です。
type HourlyCount struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusCount はステータスクラスごとの件数です。
type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// RouteLatency はルートごとの平均応答時間(ミリ秒)です。
type RouteLatency struct {
	Route        string `json:"route"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はモニタリング画面に表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyCount  `json:"requestsOverTime"`
	Routes           map[string]int `json:"routes"`
	StatusCodes      []StatusCount  `json:"statusCodes"`
	AvgResponseTimes []RouteLatency `json:"avgResponseTimes"`
	RecentErrors     []LogEntry     `json:"recentErrors"`
}

var statusClasses = []string{"2xx Success", "4xx Client Error", "5xx Server Error"}

// GetDashboardData は直近 periodHours 時間のログを集計します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours < 1 {
		periodHours = 1
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().In(s.location)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]LogEntry, 0)
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	// 時間バケットは過去から現在の順
	requestsOverTime := make([]HourlyCount, periodHours)
	bucketIndex := make(map[time.Time]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		bucketIndex[t] = i
		requestsOverTime[i] = HourlyCount{Time: t.Format("15:00")}
	}

	routes := make(map[string]int)
	statusCounts := make(map[string]int)
	latencySum := make(map[string]time.Duration)
	for _, entry := range filtered {
		if i, ok := bucketIndex[entry.Timestamp.In(s.location).Truncate(time.Hour)]; ok {
			requestsOverTime[i].Requests++
		}
		routes[entry.Route]++
		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCounts[statusClasses[0]]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCounts[statusClasses[1]]++
		case entry.StatusCode >= 500:
			statusCounts[statusClasses[2]]++
		}
		latencySum[entry.Route] += entry.ResponseTime
	}

	statusCodes := make([]StatusCount, 0, len(statusClasses))
	for _, name := range statusClasses {
		statusCodes = append(statusCodes, StatusCount{Name: name, Value: statusCounts[name]})
	}

	avgResponseTimes := make([]RouteLatency, 0, len(latencySum))
	for route, total := range latencySum {
		avgResponseTimes = append(avgResponseTimes, RouteLatency{
			Route:        route,
			ResponseTime: total.Milliseconds() / int64(routes[route]),
		})
	}
	sort.Slice(avgResponseTimes, func(i, j int) bool {
		return avgResponseTimes[i].Route < avgResponseTimes[j].Route
	})

	// 新しい順に最大10件
	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Routes:           routes,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
