package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	m := New("test")
	m.EvaluationsTotal.WithLabelValues("binomial", "PUT").Inc()
	m.ObserveEvaluation("binomial", "quote", time.Now().Add(-10*time.Millisecond))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "pricing_test_engine_evaluations_total")
	assert.Contains(t, string(body), "pricing_test_evaluation_duration_seconds")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues("binomial", "PUT")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := New("test"), New("test")
	a.ExerciseDowngradesTotal.WithLabelValues("monte_carlo").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ExerciseDowngradesTotal.WithLabelValues("monte_carlo")))
	assert.NotSame(t, a.Registry(), b.Registry())
}
