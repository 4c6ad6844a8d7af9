package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ExposesReviewhubCounters(t *testing.T) {
	s := NewServer(MetricsConfig{})
	WebhookEventsTotal.WithLabelValues("gitlab", "merge_request", "accepted").Inc()
	DedupHitsTotal.Inc()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `reviewhub_webhook_events_total{kind="merge_request",provider="gitlab",result="accepted"}`)
	assert.Contains(t, string(body), "reviewhub_dedup_hits_total")
}

func TestServer_StartDisabled(t *testing.T) {
	s := NewServer(MetricsConfig{Enable: false})
	assert.NoError(t, s.Start())
	assert.NoError(t, s.Stop(t.Context()))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "success", Result(nil))
	assert.Equal(t, "failure", Result(errors.New("boom")))

	before := testutil.ToFloat64(NotifyTotal.WithLabelValues("dingtalk", Result(nil)))
	NotifyTotal.WithLabelValues("dingtalk", Result(nil)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(NotifyTotal.WithLabelValues("dingtalk", "success")))
}
