package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/infrastructure/metrics"
)

func TestRecorder_CuentaTransicionesYDisposiciones(t *testing.T) {
	r := metrics.NewRecorder()
	r.TransferTransition("approved")
	r.TransferTransition("approved")
	r.TransferTransition("dispatched")
	r.DispositionApplied("scrap")

	expected := `
# HELP traslados_transfer_transitions_total Transiciones de estado de traslados.
# TYPE traslados_transfer_transitions_total counter
traslados_transfer_transitions_total{status="approved"} 2
traslados_transfer_transitions_total{status="dispatched"} 1
# HELP traslados_dispositions_applied_total Líneas de discrepancia resueltas por disposición.
# TYPE traslados_dispositions_applied_total counter
traslados_dispositions_applied_total{disposition="scrap"} 1
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected),
		"traslados_transfer_transitions_total", "traslados_dispositions_applied_total")
	assert.NoError(t, err)
}

func TestRecorder_HandlerExponeMetricas(t *testing.T) {
	r := metrics.NewRecorder()
	r.MovementRecorded("transfer_out")
	r.ObserveHTTP(http.MethodPost, "/api/transfers/:id/dispatch", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `traslados_stock_movements_total{type="transfer_out"} 1`)
	assert.Contains(t, body, `route="/api/transfers/:id/dispatch"`)
	assert.Contains(t, body, "go_goroutines")
}
