package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Repository defines ledger data access. Each mutation is a single awaited
// store call; the core assumes no multi-record transaction guarantees.
type Repository interface {
	ListMovements(ctx context.Context) ([]CashMovement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (CashMovement, error)
	InsertMovement(ctx context.Context, m CashMovement) (CashMovement, error)
	UpdateMovement(ctx context.Context, m CashMovement) (CashMovement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context, activeOnly bool) ([]CashCategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (CashCategory, error)
	InsertCategory(ctx context.Context, c CashCategory) (CashCategory, error)
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListMovements(ctx context.Context) ([]CashMovement, error) {
	const query = `
		SELECT id, movement_date, description, type, amount, category_id, created_at, updated_at
		FROM cash_movements
		ORDER BY movement_date, created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapStore("list cash movements", err)
	}
	defer rows.Close()

	var out []CashMovement
	for rows.Next() {
		var m CashMovement
		if err := rows.Scan(&m.ID, &m.MovementDate, &m.Description, &m.Type, &m.Amount, &m.CategoryID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, shared.WrapStore("scan cash movement", err)
		}
		out = append(out, m)
	}
	return out, shared.WrapStore("list cash movements", rows.Err())
}

func (r *pgRepository) GetMovement(ctx context.Context, id uuid.UUID) (CashMovement, error) {
	const query = `
		SELECT id, movement_date, description, type, amount, category_id, created_at, updated_at
		FROM cash_movements
		WHERE id = $1
	`
	var m CashMovement
	err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.MovementDate, &m.Description, &m.Type, &m.Amount, &m.CategoryID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CashMovement{}, shared.ErrNotFound
		}
		return CashMovement{}, shared.WrapStore("get cash movement", err)
	}
	return m, nil
}

func (r *pgRepository) InsertMovement(ctx context.Context, m CashMovement) (CashMovement, error) {
	const query = `
		INSERT INTO cash_movements (id, movement_date, description, type, amount, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, m.ID, m.MovementDate, m.Description, m.Type, m.Amount, m.CategoryID).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return CashMovement{}, mapWriteError("insert cash movement", err)
	}
	return m, nil
}

func (r *pgRepository) UpdateMovement(ctx context.Context, m CashMovement) (CashMovement, error) {
	const query = `
		UPDATE cash_movements
		SET movement_date = $2, description = $3, type = $4, amount = $5, category_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query, m.ID, m.MovementDate, m.Description, m.Type, m.Amount, m.CategoryID).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CashMovement{}, shared.ErrNotFound
		}
		return CashMovement{}, mapWriteError("update cash movement", err)
	}
	return m, nil
}

func (r *pgRepository) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cash_movements WHERE id = $1`, id)
	if err != nil {
		return shared.WrapStore("delete cash movement", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *pgRepository) ListCategories(ctx context.Context, activeOnly bool) ([]CashCategory, error) {
	query := `SELECT id, name, active FROM cash_categories ORDER BY name`
	if activeOnly {
		query = `SELECT id, name, active FROM cash_categories WHERE active ORDER BY name`
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapStore("list cash categories", err)
	}
	defer rows.Close()

	var out []CashCategory
	for rows.Next() {
		var c CashCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Active); err != nil {
			return nil, shared.WrapStore("scan cash category", err)
		}
		out = append(out, c)
	}
	return out, shared.WrapStore("list cash categories", rows.Err())
}

func (r *pgRepository) GetCategory(ctx context.Context, id uuid.UUID) (CashCategory, error) {
	var c CashCategory
	err := r.pool.QueryRow(ctx, `SELECT id, name, active FROM cash_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CashCategory{}, shared.ErrNotFound
		}
		return CashCategory{}, shared.WrapStore("get cash category", err)
	}
	return c, nil
}

func (r *pgRepository) InsertCategory(ctx context.Context, c CashCategory) (CashCategory, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO cash_categories (id, name, active) VALUES ($1, $2, $3)`, c.ID, c.Name, c.Active)
	if err != nil {
		return CashCategory{}, mapWriteError("insert cash category", err)
	}
	return c, nil
}

func (r *pgRepository) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cash_categories SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return shared.WrapStore("set cash category active", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// mapWriteError surfaces constraint violations as validation failures so the
// caller can highlight the offending field.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.NewValidationError("cash_movement", pgErr.ConstraintName, "duplicate value")
		case "23503":
			return shared.NewValidationError("cash_movement", pgErr.ConstraintName, "referenced record does not exist")
		case "23514":
			return shared.NewValidationError("cash_movement", pgErr.ConstraintName, "constraint violated")
		}
	}
	return shared.WrapStore(op, err)
}
