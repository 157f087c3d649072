package rubble

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.instrumentFracture(FractureEvent{Shards: 3})
		m.instrumentRetired(RetireExpired)
		m.instrumentLive(1, 2)
		m.instrumentStep(0.1)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("unit")
	m.instrumentFracture(FractureEvent{Shards: 4, Discarded: 1, Chips: 25, Dust: 40})
	m.instrumentRetired(RetireFellOut)
	m.instrumentRetired(RetireNone)
	m.instrumentLive(69, 10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "unit_fractures_total 1")
	assert.Contains(t, body, "unit_shards_emitted_total 4")
	assert.Contains(t, body, "unit_shards_discarded_total 1")
	assert.Contains(t, body, `unit_fragments_spawned_total{kind="chip"} 25`)
	assert.Contains(t, body, `unit_fragments_retired_total{reason="fell_out"} 1`)
	assert.NotContains(t, body, `reason="none"`)
	assert.Contains(t, body, "unit_fragments_live 69")
	assert.Contains(t, body, "unit_blocks_active 10")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("rubble")
		NewMetrics("rubble")
	}, "two simulations in one process")
}
