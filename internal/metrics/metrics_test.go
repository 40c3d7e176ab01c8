package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordIngest(t *testing.T) {
	m := New()
	m.RecordIngest("biak", 31, map[string][]string{
		"2024-01-03": {"humidity_invalid"},
		"2024-01-09": {"humidity_invalid", "rainfall_negative"},
	})

	assert.Equal(t, 31.0, testutil.ToFloat64(m.ObservationsIngested.WithLabelValues("biak")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QualityFlags.WithLabelValues("humidity_invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QualityFlags.WithLabelValues("rainfall_negative")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Labels.WithLabelValues("weather_condition", "rain").Inc()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Labels.WithLabelValues("weather_condition", "rain")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.MonthsAggregated.WithLabelValues("sorong").Add(12)

	path := filepath.Join(t.TempDir(), "climatedss.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `climatedss_months_aggregated_total{location="sorong"} 12`))
}
