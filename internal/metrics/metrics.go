package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "repairdesk_"

var (
	registerOnce sync.Once

	actionsTotal   *prometheus.CounterVec
	actionsLatency *prometheus.HistogramVec
	messagesTotal  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
)

// Init регистрирует метрики в глобальном реестре (один раз).
func Init() {
	registerOnce.Do(func() {
		actionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "actions_total",
				Help: "Repair actions by action id and result",
			},
			[]string{"action", "result"},
		)
		actionsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "action_latency_seconds",
				Help:    "Repair action latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		)
		messagesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "customer_messages_total",
				Help: "Customer messages by result",
			},
			[]string{"result"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		)
		prometheus.MustRegister(actionsTotal, actionsLatency, messagesTotal, httpRequests)
	})
}

// Recorder — наблюдатель для repair.Service.
type Recorder struct{}

func NewRecorder() Recorder {
	Init()
	return Recorder{}
}

func (Recorder) ObserveAction(action, result string, took time.Duration) {
	actionsTotal.WithLabelValues(action, result).Inc()
	actionsLatency.WithLabelValues(action).Observe(took.Seconds())
}

func (Recorder) ObserveMessage(result string) {
	messagesTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP — для access-лога.
func ObserveHTTP(method string, code int) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func Handler() http.Handler { return promhttp.Handler() }
