package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/metrics"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/fsdevblog/groph-bundles/internal/transport/fulfillment/mocks"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ProcessorTestSuite struct {
	suite.Suite
	processor   *Processor
	mockService *mocks.MockServicer
	mockLock    *mocks.MockLock
	ctrl        *gomock.Controller
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorTestSuite))
}

func (s *ProcessorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockServicer(s.ctrl)
	s.mockLock = mocks.NewMockLock(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.processor = New(s.mockService, logger).
		SetWorkers(3).
		SetBatchSize(10).
		SetMetrics(metrics.NewFulfillmentMetrics(prometheus.NewRegistry()))
}

func (s *ProcessorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// TestTickNoJobs пустая очередь.
func (s *ProcessorTestSuite) TestTickNoJobs() {
	s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).Return(nil, nil)

	s.ErrorIs(s.processor.tick(s.T().Context()), ErrNoJobs)
}

// TestTickFulfilsEveryClaimedJob каждая задача обрабатывается ровно один раз, ошибка одного заказа не мешает
// остальным.
func (s *ProcessorTestSuite) TestTickFulfilsEveryClaimedJob() {
	jobs := []domain.FulfillmentJob{{OrderID: 1}, {OrderID: 2}, {OrderID: 3}, {OrderID: 4}}
	s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).Return(jobs, nil)

	var mu sync.Mutex
	seen := make(map[int64]int)
	record := func(_ context.Context, orderID int64) {
		mu.Lock()
		defer mu.Unlock()
		seen[orderID]++
	}

	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(1)).Do(record).Return(service.FulfilOutcomeCompleted, nil)
	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(2)).Do(record).
		Return(service.FulfilOutcomeFailed, domain.ErrForwardingFailed)
	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(3)).Do(record).Return(service.FulfilOutcomeSkipped, nil)
	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(4)).Do(record).Return(service.FulfilOutcomeCompleted, nil)

	s.Require().NoError(s.processor.tick(s.T().Context()))
	s.Equal(map[int64]int{1: 1, 2: 1, 3: 1, 4: 1}, seen)
}

// TestTickClaimError ошибка очереди возвращается без обращения к поставщику.
func (s *ProcessorTestSuite) TestTickClaimError() {
	s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).Return(nil, domain.ErrUnknown)

	s.ErrorIs(s.processor.tick(s.T().Context()), domain.ErrUnknown)
}

// TestTickLockHeld другая реплика держит блокировку: очередь не трогаем.
func (s *ProcessorTestSuite) TestTickLockHeld() {
	s.processor.SetLock(s.mockLock)
	s.mockLock.EXPECT().Acquire(gomock.Any()).Return(false, nil)

	s.ErrorIs(s.processor.tick(s.T().Context()), ErrLockHeld)
}

// TestTickReleasesLock блокировка снимается после итерации, даже если очередь пуста.
func (s *ProcessorTestSuite) TestTickReleasesLock() {
	s.processor.SetLock(s.mockLock)
	gomock.InOrder(
		s.mockLock.EXPECT().Acquire(gomock.Any()).Return(true, nil),
		s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).Return(nil, nil),
		s.mockLock.EXPECT().Release(gomock.Any()).Return(nil),
	)

	s.ErrorIs(s.processor.tick(s.T().Context()), ErrNoJobs)
}

func (s *ProcessorTestSuite) TestTickReleaseError() {
	releaseErr := errors.New("connection reset")
	s.processor.SetLock(s.mockLock)
	s.mockLock.EXPECT().Acquire(gomock.Any()).Return(true, nil)
	s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).
		Return([]domain.FulfillmentJob{{OrderID: 7}}, nil)
	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(7)).Return(service.FulfilOutcomeCompleted, nil)
	s.mockLock.EXPECT().Release(gomock.Any()).Return(releaseErr)

	s.ErrorIs(s.processor.tick(s.T().Context()), releaseErr)
}

// TestClaimedJobSurvivesCancel уже забранная задача доводится до конца после отмены контекста.
func (s *ProcessorTestSuite) TestClaimedJobSurvivesCancel() {
	ctx, cancel := context.WithCancel(s.T().Context())
	s.mockService.EXPECT().ClaimDueJobs(gomock.Any(), uint(10)).
		DoAndReturn(func(context.Context, uint) ([]domain.FulfillmentJob, error) {
			cancel()
			return []domain.FulfillmentJob{{OrderID: 9}}, nil
		})
	s.mockService.EXPECT().Fulfil(gomock.Any(), int64(9)).
		DoAndReturn(func(c context.Context, _ int64) (service.FulfilOutcome, error) {
			s.NoError(c.Err())
			return service.FulfilOutcomeCompleted, nil
		})

	s.NoError(s.processor.tick(ctx))
}

func (s *ProcessorTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(s.T().Context())
	cancel()

	done := make(chan struct{})
	go func() {
		s.processor.Run(ctx)
		close(done)
	}()
	<-done
}
