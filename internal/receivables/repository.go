package receivables

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

// Repository defines receivable data access.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Receivable, error)
	Get(ctx context.Context, id uuid.UUID) (Receivable, error)
	Insert(ctx context.Context, rec Receivable) (Receivable, error)
	Update(ctx context.Context, rec Receivable) (Receivable, error)
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

const receivableColumns = `id, descricao, valor, data_vencimento, data_recebimento, categoria_id,
	pagador, forma_recebimento, status, observacoes, recorrente, frequencia_recorrencia,
	created_at, updated_at`

func (r *pgRepository) List(ctx context.Context, filter ListFilter) ([]Receivable, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + receivableColumns + ` FROM contas_receber WHERE 1=1`)
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
		return nil, shared.WrapStore("list receivables", err)
	}
	defer rows.Close()

	var out []Receivable
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, shared.WrapStore("list receivables", rows.Err())
}

func (r *pgRepository) Get(ctx context.Context, id uuid.UUID) (Receivable, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+receivableColumns+` FROM contas_receber WHERE id = $1`, id)
	rec, err := scanReceivable(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receivable{}, shared.ErrNotFound
		}
		return Receivable{}, err
	}
	return rec, nil
}

func (r *pgRepository) Insert(ctx context.Context, rec Receivable) (Receivable, error) {
	const query = `
		INSERT INTO contas_receber (id, descricao, valor, data_vencimento, data_recebimento, categoria_id,
			pagador, forma_recebimento, status, observacoes, recorrente, frequencia_recorrencia)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.Description, rec.Value, rec.DueDate, rec.SettlementDate, rec.CategoryID,
		rec.PayerName, rec.PaymentMethod, rec.Status, rec.Observations,
		rec.Recurring, rec.RecurrenceFrequency,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Receivable{}, mapWriteError(err)
	}
	return rec, nil
}

func (r *pgRepository) Update(ctx context.Context, rec Receivable) (Receivable, error) {
	const query = `
		UPDATE contas_receber
		SET descricao = $2, valor = $3, data_vencimento = $4, data_recebimento = $5, categoria_id = $6,
			pagador = $7, forma_recebimento = $8, status = $9, observacoes = $10,
			recorrente = $11, frequencia_recorrencia = $12, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.Description, rec.Value, rec.DueDate, rec.SettlementDate, rec.CategoryID,
		rec.PayerName, rec.PaymentMethod, rec.Status, rec.Observations,
		rec.Recurring, rec.RecurrenceFrequency,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receivable{}, shared.ErrNotFound
		}
		return Receivable{}, mapWriteError(err)
	}
	return rec, nil
}

func (r *pgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contas_receber WHERE id = $1`, id)
	if err != nil {
		return shared.WrapStore("delete receivable", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanReceivable(row pgx.Row) (Receivable, error) {
	var rec Receivable
	err := row.Scan(&rec.ID, &rec.Description, &rec.Value, &rec.DueDate, &rec.SettlementDate, &rec.CategoryID,
		&rec.PayerName, &rec.PaymentMethod, &rec.Status, &rec.Observations,
		&rec.Recurring, &rec.RecurrenceFrequency, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receivable{}, err
		}
		return Receivable{}, shared.WrapStore("scan receivable", err)
	}
	return rec, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return shared.NewValidationError("receivable", "categoria_id", "referenced category does not exist")
		case "23514":
			return shared.NewValidationError("receivable", pgErr.ConstraintName, "constraint violated")
		}
	}
	return shared.WrapStore("write receivable", err)
}
