package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_RegistersAndRecords(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("render", 25*time.Millisecond)
	pr.ObserveBuildDuration(100 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.SetPagesRendered(3)
	pr.SetAssetsCopied(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["mdblog_stage_duration_seconds"])
	require.True(t, names["mdblog_build_duration_seconds"])
	require.True(t, names["mdblog_stage_results_total"])
	require.True(t, names["mdblog_build_outcomes_total"])
	require.True(t, names["mdblog_pages_rendered"])
	require.True(t, names["mdblog_assets_copied"])
}

func TestPrometheusRecorder_Handler_ServesMetrics(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetPagesRendered(5)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "mdblog_pages_rendered 5")
}
