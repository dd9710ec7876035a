package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, created_at, updated_at, user_id, order_number, type, details, amount, recipient, status,
	profit, commission, reference, forwarding_at`

// userFilterCondition представление истории: $2 - фильтр (all, bundles, topups), $3 - тип пополнения.
const userFilterCondition = `($2 = 'all' OR ((type = $3) = ($2 = 'topups')))`

type OrderRepository struct {
	conn DBTX
}

func NewOrderRepository(conn DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

// Create сохраняет заказ. Повтор order_number или reference возвращает domain.ErrDuplicateKey.
func (o *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	if !args.Status.IsValid() {
		return nil, fmt.Errorf("[repository/creating order `%s`] %w", args.OrderNumber, domain.ErrInvalidStatus)
	}
	row := o.conn.QueryRow(ctx,
		`INSERT INTO orders (user_id, order_number, type, details, amount, recipient, status, profit, commission,
			reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		args.UserID,
		args.OrderNumber,
		string(args.Type),
		args.Details,
		args.Amount,
		args.Recipient,
		string(args.Status),
		args.Profit,
		args.Commission,
		args.Reference,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order `%s`", args.OrderNumber)
	}
	return order, nil
}

func (o *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, convertErr(err, "getting order %d", id)
	}
	return order, nil
}

// LockByID читает заказ и блокирует строку до конца транзакции.
func (o *OrderRepository) LockByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(o.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, convertErr(err, "locking order %d", id)
	}
	return order, nil
}

// SetStatus переводит заказ в статус args.To одним условным UPDATE: строка меняется, только если текущий статус
// входит в args.From. Смена статуса снимает отметку об отправке. Если заказа нет или его статус уже другой,
// возвращает domain.ErrStatusConflict.
func (o *OrderRepository) SetStatus(ctx context.Context, args repoargs.SetOrderStatus) (*domain.Order, error) {
	if !args.To.IsValid() {
		return nil, fmt.Errorf("[repository/setting status of order %d] %w: %q", args.ID, domain.ErrInvalidStatus, args.To)
	}
	from := make([]string, len(args.From))
	for i, status := range args.From {
		from[i] = string(status)
	}

	row := o.conn.QueryRow(ctx,
		`UPDATE orders SET status = $2, forwarding_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3::text[])
		RETURNING `+orderColumns,
		args.ID, string(args.To), from,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("[repository/setting status of order %d to %s] %w",
				args.ID, args.To, domain.ErrStatusConflict)
		}
		return nil, convertErr(err, "setting status of order %d to %s", args.ID, args.To)
	}
	return order, nil
}

// MarkForwarding ставит отметку начала отправки поставщику. Вызывается под блокировкой LockByID.
func (o *OrderRepository) MarkForwarding(ctx context.Context, id int64, at time.Time) (*domain.Order, error) {
	order, err := scanOrder(o.conn.QueryRow(ctx,
		`UPDATE orders SET forwarding_at = $2, updated_at = NOW() WHERE id = $1 RETURNING `+orderColumns,
		id, at,
	))
	if err != nil {
		return nil, convertErr(err, "marking order %d as forwarding", id)
	}
	return order, nil
}

// ClearForwarding снимает отметку отправки без смены статуса (поставщик отказал при ручной отправке).
func (o *OrderRepository) ClearForwarding(ctx context.Context, id int64) error {
	if _, err := o.conn.Exec(ctx,
		`UPDATE orders SET forwarding_at = NULL, updated_at = NOW() WHERE id = $1`, id,
	); err != nil {
		return convertErr(err, "clearing forwarding mark of order %d", id)
	}
	return nil
}

// ListByUser возвращает страницу истории пользователя, новые заказы первыми.
func (o *OrderRepository) ListByUser(ctx context.Context, args repoargs.ListOrders) (*repoargs.OrdersPage, error) {
	limit, offset, pErr := pagination(args.Page, args.PageSize)
	if pErr != nil {
		return nil, convertErr(pErr, "listing orders of user %d", args.UserID)
	}

	filter, fErr := domain.ParseOrderFilter(string(args.Filter))
	if fErr != nil {
		return nil, fmt.Errorf("[repository/listing orders of user %d] %w", args.UserID, fErr)
	}

	var total int64
	if err := o.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND `+userFilterCondition,
		args.UserID, string(filter), string(domain.OrderTypeTopUp),
	).Scan(&total); err != nil {
		return nil, convertErr(err, "counting orders of user %d", args.UserID)
	}

	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND `+userFilterCondition+`
		ORDER BY created_at DESC, id DESC LIMIT $4 OFFSET $5`,
		args.UserID, string(filter), string(domain.OrderTypeTopUp), limit, offset,
	)
	if err != nil {
		return nil, convertErr(err, "listing orders of user %d", args.UserID)
	}
	items, err := collectOrders(rows)
	if err != nil {
		return nil, convertErr(err, "listing orders of user %d", args.UserID)
	}

	return &repoargs.OrdersPage{Items: items, TotalPages: totalPages(total, args.PageSize)}, nil
}

// ListAll страница всех заказов для оператора.
func (o *OrderRepository) ListAll(ctx context.Context, args repoargs.ListAllOrders) (*repoargs.OrdersPage, error) {
	limit, offset, pErr := pagination(args.Page, args.PageSize)
	if pErr != nil {
		return nil, convertErr(pErr, "listing all orders")
	}

	var total int64
	if err := o.conn.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, convertErr(err, "counting all orders")
	}

	rows, err := o.conn.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, convertErr(err, "listing all orders")
	}
	items, err := collectOrders(rows)
	if err != nil {
		return nil, convertErr(err, "listing all orders")
	}

	return &repoargs.OrdersPage{Items: items, TotalPages: totalPages(total, args.PageSize)}, nil
}

// Summary агрегаты для дашборда пользователя.
func (o *OrderRepository) Summary(ctx context.Context, userID int64) (*repoargs.OrderSummary, error) {
	var summary repoargs.OrderSummary
	err := o.conn.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE type <> $2), 0),
			COUNT(*) FILTER (WHERE type = $2),
			COALESCE(SUM(amount) FILTER (WHERE type = $2), 0)
		FROM orders WHERE user_id = $1`,
		userID, string(domain.OrderTypeTopUp),
	).Scan(&summary.TotalOrders, &summary.TotalSales, &summary.TotalTopUps, &summary.TotalTopUpValue)
	if err != nil {
		return nil, convertErr(err, "summarizing orders of user %d", userID)
	}
	return &summary, nil
}

// Stats агрегаты для оператора: количество заказов по статусам, сумма продаж и прибыль по выполненным пакетам.
func (o *OrderRepository) Stats(ctx context.Context) (*repoargs.OrderStats, error) {
	stats := repoargs.OrderStats{ByStatus: make(map[domain.OrderStatus]int64)}

	rows, err := o.conn.Query(ctx, `SELECT status, COUNT(*) FROM orders WHERE type <> $1 GROUP BY status`,
		string(domain.OrderTypeTopUp))
	if err != nil {
		return nil, convertErr(err, "counting orders by status")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, convertErr(scanErr, "scanning order status count")
		}
		stats.ByStatus[domain.OrderStatus(status)] = count
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "counting orders by status")
	}

	if err = o.conn.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(profit), 0)
		FROM orders WHERE type <> $1 AND status = $2`,
		string(domain.OrderTypeTopUp), string(domain.OrderStatusCompleted),
	).Scan(&stats.TotalSales, &stats.TotalProfit); err != nil {
		return nil, convertErr(err, "summing completed orders")
	}
	return &stats, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	items := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *order)
	}
	return items, rows.Err() //nolint:wrapcheck
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order       domain.Order
		typ, status string
		amount      decimal.Decimal
		profit      decimal.NullDecimal
		commission  decimal.NullDecimal
		recipient   *string
		reference   *string
	)
	if err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.UserID,
		&order.OrderNumber,
		&typ,
		&order.Details,
		&amount,
		&recipient,
		&status,
		&profit,
		&commission,
		&reference,
		&order.ForwardingAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	order.Type = domain.OrderType(typ)
	order.Status = domain.OrderStatus(status)
	order.Amount = amount
	order.Profit = profit
	order.Commission = commission
	order.Recipient = recipient
	order.Reference = reference
	return &order, nil
}
