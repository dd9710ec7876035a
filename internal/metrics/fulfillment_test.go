package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type FulfillmentMetricsTestSuite struct {
	suite.Suite
}

func TestFulfillmentMetricsSuite(t *testing.T) {
	suite.Run(t, new(FulfillmentMetricsTestSuite))
}

func (s *FulfillmentMetricsTestSuite) TestCounters() {
	m := NewFulfillmentMetrics(prometheus.NewRegistry())

	m.IncOutcome("completed")
	m.IncOutcome("completed")
	m.IncOutcome("failed")
	m.AddClaimed(3)
	m.IncSkippedTick()
	m.ObserveTick(time.Second)

	s.InDelta(2, testutil.ToFloat64(m.outcomes.WithLabelValues("completed")), 0)
	s.InDelta(1, testutil.ToFloat64(m.outcomes.WithLabelValues("failed")), 0)
	s.InDelta(3, testutil.ToFloat64(m.claimed), 0)
	s.InDelta(1, testutil.ToFloat64(m.skipped), 0)
}

func (s *FulfillmentMetricsTestSuite) TestNilSafe() {
	var m *FulfillmentMetrics
	s.NotPanics(func() {
		m.IncOutcome("completed")
		m.AddClaimed(1)
		m.IncSkippedTick()
		m.ObserveTick(time.Second)
	})

	s.NotPanics(func() {
		NewFulfillmentMetrics(nil).IncOutcome("failed")
	})
}
