package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("GET", "/api/drug-tests", 200, 10*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `journey_http_requests_total{method="GET",route="/api/drug-tests",status="200"}`)
	assert.Contains(t, body, `journey_http_request_duration_seconds_count{method="GET",route="/api/drug-tests"}`)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordsCreated.WithLabelValues("meeting").Inc()
	PaymentDecisions.WithLabelValues("confirmed").Inc()
	ObserveDBPing(time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `journey_records_created_total{kind="meeting"} 1`)
	assert.Contains(t, body, `journey_payment_decisions_total{status="confirmed"} 1`)
	assert.Contains(t, body, "journey_db_ping_seconds")
}
