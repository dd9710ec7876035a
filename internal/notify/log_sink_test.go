package notify

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

type LogSinkTestSuite struct {
	suite.Suite
}

func TestLogSinkSuite(t *testing.T) {
	suite.Run(t, new(LogSinkTestSuite))
}

func (s *LogSinkTestSuite) TestFulfillmentFailed() {
	logger, hook := test.NewNullLogger()
	sink := NewLogSink(logger)

	recipient := "0551234567"
	cause := errors.New("supplier rejected order")
	sink.FulfillmentFailed(s.T().Context(), domain.Order{
		ID:          5,
		OrderNumber: "abc",
		Type:        domain.OrderTypeForProvider(domain.ProviderMTN),
		Details:     "5GB",
		Recipient:   &recipient,
	}, cause)

	s.Require().Len(hook.Entries, 1)
	entry := hook.LastEntry()
	s.Equal(logrus.WarnLevel, entry.Level)
	s.Equal(int64(5), entry.Data["orderID"])
	s.Equal(recipient, entry.Data["recipient"])
	s.Equal(cause, entry.Data[logrus.ErrorKey])
}
