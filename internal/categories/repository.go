package categories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Repository defines financial category data access.
type Repository interface {
	List(ctx context.Context, typ CategoryType, activeOnly bool) ([]FinancialCategory, error)
	Get(ctx context.Context, id uuid.UUID) (FinancialCategory, error)
	Insert(ctx context.Context, c FinancialCategory) (FinancialCategory, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) List(ctx context.Context, typ CategoryType, activeOnly bool) ([]FinancialCategory, error) {
	query := `SELECT id, name, type, active FROM financial_categories WHERE ($1 = '' OR type = $1)`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, string(typ))
	if err != nil {
		return nil, shared.WrapStore("list financial categories", err)
	}
	defer rows.Close()

	var out []FinancialCategory
	for rows.Next() {
		var c FinancialCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Active); err != nil {
			return nil, shared.WrapStore("scan financial category", err)
		}
		out = append(out, c)
	}
	return out, shared.WrapStore("list financial categories", rows.Err())
}

func (r *pgRepository) Get(ctx context.Context, id uuid.UUID) (FinancialCategory, error) {
	var c FinancialCategory
	err := r.pool.QueryRow(ctx, `SELECT id, name, type, active FROM financial_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialCategory{}, shared.ErrNotFound
		}
		return FinancialCategory{}, shared.WrapStore("get financial category", err)
	}
	return c, nil
}

func (r *pgRepository) Insert(ctx context.Context, c FinancialCategory) (FinancialCategory, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO financial_categories (id, name, type, active) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Type, c.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return FinancialCategory{}, shared.NewValidationError("financial_category", "name", "duplicate category")
		}
		return FinancialCategory{}, shared.WrapStore("insert financial category", err)
	}
	return c, nil
}

func (r *pgRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE financial_categories SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return shared.WrapStore("set financial category active", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
