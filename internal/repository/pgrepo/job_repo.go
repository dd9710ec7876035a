package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
)

// FulfillmentJobRepository очередь отложенных отправок заказов поставщику. Первичный ключ по order_id не дает
// завести вторую живую задачу для одного заказа.
type FulfillmentJobRepository struct {
	conn DBTX
}

func NewFulfillmentJobRepository(conn DBTX) *FulfillmentJobRepository {
	return &FulfillmentJobRepository{conn: conn}
}

// Schedule ставит задачу для заказа на время dueAt. Повторная постановка возвращает domain.ErrDuplicateKey.
func (f *FulfillmentJobRepository) Schedule(
	ctx context.Context,
	orderID int64,
	dueAt time.Time,
) (*domain.FulfillmentJob, error) {
	var job domain.FulfillmentJob
	err := f.conn.QueryRow(ctx,
		`INSERT INTO fulfillment_jobs (order_id, due_at) VALUES ($1, $2) RETURNING order_id, due_at, created_at`,
		orderID, dueAt,
	).Scan(&job.OrderID, &job.DueAt, &job.CreatedAt)
	if err != nil {
		return nil, convertErr(err, "scheduling fulfillment of order %d", orderID)
	}
	return &job, nil
}

// ClaimDue атомарно забирает из очереди до limit задач со сроком не позже now. Задача удаляется до попытки
// отправки, так что каждая задача обрабатывается не более одного раза. Строки, заблокированные другим
// обработчиком, пропускаются.
func (f *FulfillmentJobRepository) ClaimDue(
	ctx context.Context,
	now time.Time,
	limit uint,
) ([]domain.FulfillmentJob, error) {
	size, _, pErr := pagination(1, limit)
	if pErr != nil {
		return nil, convertErr(pErr, "claiming due fulfillment jobs")
	}

	rows, err := f.conn.Query(ctx,
		`DELETE FROM fulfillment_jobs
		WHERE order_id IN (
			SELECT order_id FROM fulfillment_jobs
			WHERE due_at <= $1
			ORDER BY due_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING order_id, due_at, created_at`,
		now, size,
	)
	if err != nil {
		return nil, convertErr(err, "claiming due fulfillment jobs")
	}
	defer rows.Close()

	jobs := make([]domain.FulfillmentJob, 0)
	for rows.Next() {
		var job domain.FulfillmentJob
		if scanErr := rows.Scan(&job.OrderID, &job.DueAt, &job.CreatedAt); scanErr != nil {
			return nil, convertErr(scanErr, "scanning fulfillment job")
		}
		jobs = append(jobs, job)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "claiming due fulfillment jobs")
	}
	return jobs, nil
}

// Delete снимает задачу заказа. Отсутствие задачи не ошибка, возвращает признак удаления.
func (f *FulfillmentJobRepository) Delete(ctx context.Context, orderID int64) (bool, error) {
	tag, err := f.conn.Exec(ctx, `DELETE FROM fulfillment_jobs WHERE order_id = $1`, orderID)
	if err != nil {
		return false, convertErr(err, "deleting fulfillment job of order %d", orderID)
	}
	return tag.RowsAffected() > 0, nil
}
