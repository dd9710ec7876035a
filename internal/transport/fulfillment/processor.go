// Package fulfillment отправляет поставщику заказы, у которых истекла задержка перед отправкой.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/metrics"
	"github.com/fsdevblog/groph-bundles/internal/service"
	"github.com/sirupsen/logrus"
)

const (
	defaultServiceTimeout = 5 * time.Second
	// defaultJobTimeout покрывает запрос к поставщику и обновление статуса.
	defaultJobTimeout          = 30 * time.Second
	defaultInterval            = 30 * time.Second
	defaultBatchSize      uint = 50
	defaultWorkers        uint = 5
)

// Processor периодически забирает из очереди задачи с наступившим сроком и отправляет заказы поставщику.
type Processor struct {
	svs       Servicer
	lock      Lock
	metrics   *metrics.FulfillmentMetrics
	l         *logrus.Entry
	interval  time.Duration
	batchSize uint
	workers   uint
}

func New(svs Servicer, l *logrus.Logger) *Processor {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "fulfillment",
		"module":    "processor",
	})

	return &Processor{
		svs:       svs,
		l:         loggerEntry,
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
	}
}

// SetInterval период опроса очереди.
func (p *Processor) SetInterval(interval time.Duration) *Processor {
	if interval > 0 {
		p.interval = interval
	}
	return p
}

// SetBatchSize устанавливает кол-во задач, забираемых за одну итерацию.
func (p *Processor) SetBatchSize(size uint) *Processor {
	if size > 0 {
		p.batchSize = size
	}
	return p
}

// SetWorkers устанавливает кол-во воркеров, параллельно отправляющих заказы.
func (p *Processor) SetWorkers(workers uint) *Processor {
	if workers > 0 {
		p.workers = workers
	}
	return p
}

// SetLock включает блокировку между репликами. Без нее каждая реплика опрашивает очередь самостоятельно,
// что тоже безопасно: ClaimDueJobs отдает задачу только одному вызывающему.
func (p *Processor) SetLock(lock Lock) *Processor {
	p.lock = lock
	return p
}

func (p *Processor) SetMetrics(m *metrics.FulfillmentMetrics) *Processor {
	p.metrics = m
	return p
}

// Run обрабатывает очередь по тикеру до отмены контекста.
//
// Алгоритм работы:
//  1. На каждом тике пытается взять блокировку (если задана). Если она у другой реплики, тик пропускается.
//  2. Забирает из очереди до batchSize задач со сроком <= now. Задача удаляется из очереди в момент выдачи,
//     поэтому заказ отправляется не более одного раза.
//  3. Раздает задачи N воркерам (SetWorkers), каждый вызывает Fulfil для своего заказа.
//  4. Собирает результаты, пишет их в лог и метрики.
func (p *Processor) Run(ctx context.Context) {
	p.l.WithFields(logrus.Fields{
		"interval":  p.interval,
		"batchSize": p.batchSize,
		"workers":   p.workers,
	}).Info("Starting")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				switch {
				case errors.Is(err, ErrNoJobs):
				case errors.Is(err, ErrLockHeld):
					p.l.Debug("lock is held, skipping tick")
				default:
					p.l.WithError(err).Error("tick error")
				}
			}
		}
	}
}

// tick одна итерация обработки. Возвращает ErrNoJobs если очередь пуста и ErrLockHeld если блокировка занята.
func (p *Processor) tick(ctx context.Context) (err error) { //nolint:nonamedreturns
	start := time.Now()
	defer func() {
		p.metrics.ObserveTick(time.Since(start))
	}()

	if p.lock != nil {
		acquired, lockErr := p.lock.Acquire(ctx)
		if lockErr != nil {
			return fmt.Errorf("tick: %w", lockErr)
		}
		if !acquired {
			p.metrics.IncSkippedTick()
			return ErrLockHeld
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultServiceTimeout)
			defer cancel()
			if releaseErr := p.lock.Release(releaseCtx); releaseErr != nil {
				err = errors.Join(err, fmt.Errorf("tick: %w", releaseErr))
			}
		}()
	}

	orderIDs, err := p.produce(ctx)
	if err != nil {
		return err
	}

	for _, result := range p.runWorkers(ctx, orderIDs) {
		l := p.l.WithFields(logrus.Fields{
			"worker":  result.WorkerID,
			"orderID": result.OrderID,
			"outcome": result.Outcome,
		})
		p.metrics.IncOutcome(string(result.Outcome))
		if result.Error != nil {
			l.WithError(result.Error).Error("fulfil order")
			continue
		}
		l.Info("Done")
	}
	return nil
}

// produce забирает задачи с наступившим сроком. Возвращает ErrNoJobs, если таких нет.
func (p *Processor) produce(ctx context.Context) ([]int64, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	jobs, err := p.svs.ClaimDueJobs(produceCtx, p.batchSize)
	if err != nil {
		return nil, fmt.Errorf("produce: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	p.metrics.AddClaimed(len(jobs))

	ids := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.OrderID)
	}
	return ids, nil
}

type workerResult struct {
	WorkerID uint
	OrderID  int64
	Outcome  service.FulfilOutcome
	Error    error
}

// runWorkers fan-out/fan-in: раздает заказы воркерам и ждет окончания их работы.
func (p *Processor) runWorkers(ctx context.Context, orderIDs []int64) []workerResult {
	taskCh := make(chan int64, len(orderIDs))
	for _, id := range orderIDs {
		taskCh <- id
	}
	close(taskCh)

	workers := min(p.workers, uint(len(orderIDs))) //nolint:gosec
	resultCh := make(chan workerResult, len(orderIDs))

	wg := new(sync.WaitGroup)
	wg.Add(int(workers)) //nolint:gosec
	for i := range workers {
		go p.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()
	close(resultCh)

	results := make([]workerResult, 0, len(orderIDs))
	for result := range resultCh {
		results = append(results, result)
	}
	return results
}

// worker обрабатывает заказы из канала. Уже забранная из очереди задача доводится до конца даже при отмене
// контекста, иначе заказ остался бы в Processing без задачи.
func (p *Processor) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan int64,
	resultCh chan<- workerResult,
) {
	defer wg.Done()

	for orderID := range taskCh {
		jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultJobTimeout)
		outcome, err := p.svs.Fulfil(jobCtx, orderID)
		cancel()

		resultCh <- workerResult{
			WorkerID: workerID,
			OrderID:  orderID,
			Outcome:  outcome,
			Error:    err,
		}
	}
}
