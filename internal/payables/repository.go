package payables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amparo-lar/amparo-lar/internal/shared"
)

// Repository defines payable data access.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Payable, error)
	Get(ctx context.Context, id uuid.UUID) (Payable, error)
	Insert(ctx context.Context, p Payable) (Payable, error)
	Update(ctx context.Context, p Payable) (Payable, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const payableColumns = `id, descricao, valor, data_vencimento, data_pagamento, categoria_id,
	fornecedor, forma_pagamento, status, observacoes, created_at, updated_at`

func (r *pgRepository) List(ctx context.Context, filter ListFilter) ([]Payable, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + payableColumns + ` FROM contas_pagar WHERE 1=1`)
	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		fmt.Fprintf(&sb, " AND status = ANY($%d)", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		fmt.Fprintf(&sb, " AND categoria_id = $%d", len(args))
	}
	if !filter.Range.From.IsZero() {
		args = append(args, shared.DateOnly(filter.Range.From))
		fmt.Fprintf(&sb, " AND data_vencimento >= $%d", len(args))
	}
	if !filter.Range.To.IsZero() {
		args = append(args, shared.DateOnly(filter.Range.To))
		fmt.Fprintf(&sb, " AND data_vencimento <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY data_vencimento, created_at")

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, shared.WrapStore("list payables", err)
	}
	defer rows.Close()

	var out []Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, shared.WrapStore("list payables", rows.Err())
}

func (r *pgRepository) Get(ctx context.Context, id uuid.UUID) (Payable, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+payableColumns+` FROM contas_pagar WHERE id = $1`, id)
	p, err := scanPayable(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payable{}, shared.ErrNotFound
		}
		return Payable{}, err
	}
	return p, nil
}

func (r *pgRepository) Insert(ctx context.Context, p Payable) (Payable, error) {
	const query = `
		INSERT INTO contas_pagar (id, descricao, valor, data_vencimento, data_pagamento, categoria_id,
			fornecedor, forma_pagamento, status, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Description, p.Value, p.DueDate, p.SettlementDate, p.CategoryID,
		p.SupplierName, p.PaymentMethod, p.Status, p.Observations,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payable{}, mapWriteError(err)
	}
	return p, nil
}

func (r *pgRepository) Update(ctx context.Context, p Payable) (Payable, error) {
	const query = `
		UPDATE contas_pagar
		SET descricao = $2, valor = $3, data_vencimento = $4, data_pagamento = $5, categoria_id = $6,
			fornecedor = $7, forma_pagamento = $8, status = $9, observacoes = $10, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Description, p.Value, p.DueDate, p.SettlementDate, p.CategoryID,
		p.SupplierName, p.PaymentMethod, p.Status, p.Observations,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payable{}, shared.ErrNotFound
		}
		return Payable{}, mapWriteError(err)
	}
	return p, nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contas_pagar WHERE id = $1`, id)
	if err != nil {
		return shared.WrapStore("delete payable", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanPayable(row pgx.Row) (Payable, error) {
	var p Payable
	err := row.Scan(&p.ID, &p.Description, &p.Value, &p.DueDate, &p.SettlementDate, &p.CategoryID,
		&p.SupplierName, &p.PaymentMethod, &p.Status, &p.Observations, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payable{}, err
		}
		return Payable{}, shared.WrapStore("scan payable", err)
	}
	return p, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return shared.NewValidationError("payable", "categoria_id", "referenced category does not exist")
		case "23514":
			return shared.NewValidationError("payable", pgErr.ConstraintName, "constraint violated")
		}
	}
	return shared.WrapStore("write payable", err)
}
