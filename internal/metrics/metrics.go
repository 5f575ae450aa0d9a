// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 外部呼び出しの結果ラベル
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// 外部呼び出し先のプロバイダ名
const (
	ProviderGoogleOAuth    = "google_oauth"
	ProviderGoogleCalendar = "google_calendar"
	ProviderOpenAI         = "openai"
)

// UpstreamRecorder は外部API呼び出しの結果を記録するインターフェース。
// auth / calendar / summarize の各クライアントから利用する。
type UpstreamRecorder interface {
	RecordUpstream(provider string, err error, duration time.Duration)
}

// HTTPRecorder はHTTPリクエストの結果を記録するインターフェース。
// ミドルウェアから利用する。
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calendarai_http_requests_total",
			Help: "HTTPリクエストの合計数",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calendarai_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calendarai_upstream_requests_total",
			Help: "外部API呼び出しの合計数",
		}, []string{"provider", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calendarai_upstream_latency_seconds",
			Help:    "外部API呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.upstreamRequests,
		c.upstreamLatency,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpstream は外部API呼び出しの結果とレイテンシを記録する。
func (c *Collector) RecordUpstream(provider string, err error, duration time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.upstreamRequests.WithLabelValues(provider, outcome).Inc()
	c.upstreamLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// Nop は何も記録しないレコーダー。テストやメトリクス無効時に使う。
type Nop struct{}

// RecordHTTPRequest は何もしない。
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

// RecordUpstream は何もしない。
func (Nop) RecordUpstream(string, error, time.Duration) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var (
	_ UpstreamRecorder = (*Collector)(nil)
	_ HTTPRecorder     = (*Collector)(nil)
	_ UpstreamRecorder = Nop{}
	_ HTTPRecorder     = Nop{}
)
