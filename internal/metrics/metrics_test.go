package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ExtractionAttempt("lattice", "empty")
	m.ExtractionAttempt("stream", "ok")
	m.ExtractionAttempt("stream", "ok")
	m.FileProcessed("ok")
	m.TradesExtracted(3)
	m.TradesExtracted(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionAttempts.WithLabelValues("lattice", "empty")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.extractionAttempts.WithLabelValues("stream", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesProcessed.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tradesExtracted))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ExtractionAttempt("lattice", "error")
		m.FileProcessed("error")
		m.TradesExtracted(5)
		m.ObserveBatch("ok", time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TradesExtracted(7)
	m.ObserveBatch("ok", 250*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "tradecsv_trades_extracted_total 7"), body)
	assert.Contains(t, body, "tradecsv_batch_duration_seconds_count")
}
