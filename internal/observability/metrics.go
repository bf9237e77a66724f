package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const namespace = "holiday"

// Transport metrics.
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served.",
	})

	grpcHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grpc",
		Name:      "server_handled_total",
		Help:      "Unary RPCs completed on the server by code.",
	}, []string{"grpc_service", "grpc_method", "grpc_code"})

	wsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Open websocket subscriptions.",
	}, []string{"kind"})

	wsEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "events_total",
		Help:      "Websocket lifecycle and push events.",
	}, []string{"kind", "event"})

	amqpPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "amqp",
		Name:      "publish_errors_total",
		Help:      "Failed broker publishes.",
	})
)

// Domain metrics.
var (
	connectionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connection_transitions_total",
		Help:      "Connection ledger transitions.",
	}, []string{"transition"})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_total",
		Help:      "Messages admitted or refused by the admission gate.",
	}, []string{"result"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Outbound notifications by template and outcome.",
	}, []string{"template", "outcome"})

	accountDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_deletions_total",
		Help:      "Account deletion cascade runs by outcome.",
	}, []string{"outcome"})
)

// HTTPMetricsMiddleware records count, latency and concurrency per route
// template, so path ids never become label values.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		service, method := splitFullMethod(info.FullMethod)
		grpcHandledTotal.WithLabelValues(service, method, status.Code(err).String()).Inc()
		return resp, err
	}
}

// splitFullMethod splits "/pkg.Service/Method".
func splitFullMethod(fullMethod string) (string, string) {
	service, method, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok || service == "" || method == "" {
		return "unknown", "unknown"
	}
	return service, method
}

func IncWSActive(kind string) { wsActive.WithLabelValues(kind).Inc() }

func DecWSActive(kind string) { wsActive.WithLabelValues(kind).Dec() }

func IncWSEvent(kind, event string) { wsEventsTotal.WithLabelValues(kind, event).Inc() }

func IncAMQPPublishError() { amqpPublishErrors.Inc() }

// IncConnectionTransition counts proposed, accepted, declined and withdrawn edges.
func IncConnectionTransition(transition string) {
	connectionTransitions.WithLabelValues(transition).Inc()
}

// IncMessage counts admission results: clean, flagged, blocked, closed.
func IncMessage(result string) {
	messagesTotal.WithLabelValues(result).Inc()
}

func IncNotification(template, outcome string) {
	notificationsTotal.WithLabelValues(template, outcome).Inc()
}

func IncAccountDeletion(outcome string) {
	accountDeletions.WithLabelValues(outcome).Inc()
}
