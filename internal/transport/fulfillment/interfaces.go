package fulfillment

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/service"
)

type Servicer interface {
	ClaimDueJobs(ctx context.Context, limit uint) ([]domain.FulfillmentJob, error)
	Fulfil(ctx context.Context, orderID int64) (service.FulfilOutcome, error)
}

// Lock эксклюзивный запуск итерации среди реплик.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
