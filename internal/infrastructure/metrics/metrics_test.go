package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakreminder/internal/domain/constant"
	"breakreminder/internal/domain/entity"
)

func TestCollectorRecordsLoopEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetState(constant.StateWaiting)
	c.SetNextAlert(time.Unix(1700000000, 0))
	c.SetConfiguration(entity.Configuration{EventsPerHour: 3, LeadTimeMinutes: 5})
	c.AlertFired(constant.AlertSourceSchedule)
	c.AlertFired(constant.AlertSourceSchedule)
	c.AlertFired(constant.AlertSourceManual)
	c.AlertFailed(constant.AlertSourceManual)
	c.Rescheduled()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.state))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(c.nextAlert))
	assert.Equal(t, float64(3), testutil.ToFloat64(c.eventsPerHour))
	assert.Equal(t, float64(5), testutil.ToFloat64(c.leadTime))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.alerts.WithLabelValues("schedule")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.alerts.WithLabelValues("manual")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.failures.WithLabelValues("manual")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.rescheduled))

	expected := `
# HELP breakreminder_reschedules_total Waits cancelled by a configuration change.
# TYPE breakreminder_reschedules_total counter
breakreminder_reschedules_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "breakreminder_reschedules_total"))
}

func TestNewCollectorTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
