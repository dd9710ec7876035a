package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bundles/internal/domain"
	"github.com/fsdevblog/groph-bundles/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const bundleColumns = `id, created_at, updated_at, provider, volume, price, supplier_cost, audience, active`

type BundleRepository struct {
	conn DBTX
}

func NewBundleRepository(conn DBTX) *BundleRepository {
	return &BundleRepository{conn: conn}
}

// FindActive ищет активный пакет оператора с указанным объемом для ценовой группы. Объем сравнивается без учета
// регистра и пробелов по краям. Если пакета нет, возвращает domain.ErrRecordNotFound.
func (b *BundleRepository) FindActive(ctx context.Context, args repoargs.FindBundle) (*domain.Bundle, error) {
	row := b.conn.QueryRow(ctx,
		`SELECT `+bundleColumns+` FROM bundles
		WHERE active AND provider = $1 AND LOWER(TRIM(volume)) = LOWER(TRIM($2)) AND audience = $3
		ORDER BY id LIMIT 1`,
		string(args.Provider), args.Volume, string(args.Audience),
	)
	bundle, err := scanBundle(row)
	if err != nil {
		return nil, convertErr(err, "finding %s bundle `%s` for %s", args.Provider, args.Volume, args.Audience)
	}
	return bundle, nil
}

// ListActive возвращает активный каталог для ценовой группы, отсортированный по оператору и цене.
func (b *BundleRepository) ListActive(ctx context.Context, audience domain.AudienceTier) ([]domain.Bundle, error) {
	rows, err := b.conn.Query(ctx,
		`SELECT `+bundleColumns+` FROM bundles WHERE active AND audience = $1 ORDER BY provider, price`,
		string(audience),
	)
	if err != nil {
		return nil, convertErr(err, "listing bundles for %s", audience)
	}
	defer rows.Close()

	var bundles []domain.Bundle
	for rows.Next() {
		bundle, scanErr := scanBundle(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning bundle")
		}
		bundles = append(bundles, *bundle)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing bundles for %s", audience)
	}
	return bundles, nil
}

func scanBundle(row pgx.Row) (*domain.Bundle, error) {
	var (
		bundle             domain.Bundle
		provider, audience string
	)
	if err := row.Scan(
		&bundle.ID,
		&bundle.CreatedAt,
		&bundle.UpdatedAt,
		&provider,
		&bundle.Volume,
		&bundle.Price,
		&bundle.SupplierCost,
		&audience,
		&bundle.Active,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	bundle.Provider = domain.Provider(provider)
	bundle.Audience = domain.AudienceTier(audience)
	return &bundle, nil
}
