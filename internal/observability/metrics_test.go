package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddlewareCountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware())
	r.GET("/conversations/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/conversations/:id", "204"))

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/conversations/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestSplitFullMethod(t *testing.T) {
	service, method := splitFullMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitFullMethod("bogus")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "unknown", method)
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.keys = append(p.keys, routingKey)
	return nil
}

func TestPublishEvent(t *testing.T) {
	t.Cleanup(func() { SetPublisher(nil) })
	require.NoError(t, PublishEvent(context.Background(), "ws_events.conversations", EventEnvelope{}))

	pub := &recordingPublisher{}
	SetPublisher(pub)
	require.NoError(t, PublishEvent(context.Background(), "ws_events.conversations", EventEnvelope{EventName: "ws_connect"}))
	assert.Equal(t, []string{"ws_events.conversations"}, pub.keys)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(messagesTotal.WithLabelValues("flagged"))
	IncMessage("flagged")
	assert.Equal(t, before+1, testutil.ToFloat64(messagesTotal.WithLabelValues("flagged")))

	before = testutil.ToFloat64(connectionTransitions.WithLabelValues("accepted"))
	IncConnectionTransition("accepted")
	assert.Equal(t, before+1, testutil.ToFloat64(connectionTransitions.WithLabelValues("accepted")))
}

func TestIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", IPFromRequest(r))

	r.Header.Set("X-Real-Ip", "192.0.2.7")
	assert.Equal(t, "192.0.2.7", IPFromRequest(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.4 , 10.0.0.1")
	assert.Equal(t, "203.0.113.4", IPFromRequest(r))
}
