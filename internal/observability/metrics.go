package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_messages_appended_total",
			Help: "Total number of messages durably appended.",
		},
		[]string{"kind"},
	)
	fanoutSubscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messaging_fanout_active_subscriptions",
			Help: "Number of live fan-out subscriptions.",
		},
	)
	fanoutEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_fanout_events_total",
			Help: "Total number of fan-out lifecycle and delivery events.",
		},
		[]string{"event"},
	)
	fanoutPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_fanout_publish_errors_total",
			Help: "Total number of fan-out publish failures (swallowed after durable append).",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesAppendedTotal,
		fanoutSubscriptionsActive,
		fanoutEventsTotal,
		fanoutPublishErrorsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// IncMessageAppended counts a durable append; kind is "room" or "conversation".
func IncMessageAppended(kind string) {
	messagesAppendedTotal.WithLabelValues(kind).Inc()
}

func IncFanoutActive() {
	fanoutSubscriptionsActive.Inc()
}

func DecFanoutActive() {
	fanoutSubscriptionsActive.Dec()
}

func IncFanoutEvent(event string) {
	fanoutEventsTotal.WithLabelValues(event).Inc()
}

func IncFanoutPublishError() {
	fanoutPublishErrorsTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
