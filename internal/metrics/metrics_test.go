package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreLabelled(t *testing.T) {
	before := testutil.ToFloat64(CounterDroppedRows.WithLabelValues("vehicles", ReasonUnknownTransportType))
	CounterDroppedRows.WithLabelValues("vehicles", ReasonUnknownTransportType).Add(3)
	after := testutil.ToFloat64(CounterDroppedRows.WithLabelValues("vehicles", ReasonUnknownTransportType))
	assert.Equal(t, 3.0, after-before)

	GaugeFactRows.Set(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(GaugeFactRows))
}
