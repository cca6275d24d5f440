package reconciliation

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

// Repository defines reconciliation data access.
type Repository interface {
	ListAccounts(ctx context.Context, activeOnly bool) ([]BankAccount, error)
	GetAccount(ctx context.Context, id uuid.UUID) (BankAccount, error)
	InsertAccount(ctx context.Context, a BankAccount) (BankAccount, error)
	SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error

	ListMovements(ctx context.Context, filter Filter) ([]BankMovement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (BankMovement, error)
	InsertMovement(ctx context.Context, m BankMovement) (BankMovement, error)
	UpdateMovementStatus(ctx context.Context, id uuid.UUID, status Status, observations string) (BankMovement, error)
	DeleteMovement(ctx context.Context, id uuid.UUID) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const accountColumns = `id, nome, banco, agencia, conta, saldo_atual, ativo, created_at, updated_at`

func (r *pgRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]BankAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM contas_bancarias`
	if activeOnly {
		query += ` WHERE ativo`
	}
	query += ` ORDER BY nome`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapStore("list bank accounts", err)
	}
	defer rows.Close()

	var out []BankAccount
	for rows.Next() {
		var a BankAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Bank, &a.Agency, &a.AccountNumber,
			&a.CurrentBalance, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, shared.WrapStore("scan bank account", err)
		}
		out = append(out, a)
	}
	return out, shared.WrapStore("list bank accounts", rows.Err())
}

func (r *pgRepository) GetAccount(ctx context.Context, id uuid.UUID) (BankAccount, error) {
	var a BankAccount
	err := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM contas_bancarias WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Bank, &a.Agency, &a.AccountNumber,
			&a.CurrentBalance, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankAccount{}, shared.ErrNotFound
		}
		return BankAccount{}, shared.WrapStore("get bank account", err)
	}
	return a, nil
}

func (r *pgRepository) InsertAccount(ctx context.Context, a BankAccount) (BankAccount, error) {
	const query = `
		INSERT INTO contas_bancarias (id, nome, banco, agencia, conta, saldo_atual, ativo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		a.ID, a.Name, a.Bank, a.Agency, a.AccountNumber, a.CurrentBalance, a.Active,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return BankAccount{}, mapWriteError("bank_account", err)
	}
	return a, nil
}

func (r *pgRepository) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE contas_bancarias SET ativo = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return shared.WrapStore("set bank account active", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const movementColumns = `id, data_movimento, descricao, valor, tipo, status_conciliacao,
	conta_bancaria_id, documento, observacoes, created_at, updated_at`

func (r *pgRepository) ListMovements(ctx context.Context, filter Filter) ([]BankMovement, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + movementColumns + ` FROM movimentos_bancarios WHERE 1=1`)
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&sb, " AND descricao ILIKE $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, " AND status_conciliacao = $%d", len(args))
	}
	if filter.BankAccountID != nil {
		args = append(args, *filter.BankAccountID)
		fmt.Fprintf(&sb, " AND conta_bancaria_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		fmt.Fprintf(&sb, " AND tipo = $%d", len(args))
	}
	if !filter.Range.From.IsZero() {
		args = append(args, shared.DateOnly(filter.Range.From))
		fmt.Fprintf(&sb, " AND data_movimento >= $%d", len(args))
	}
	if !filter.Range.To.IsZero() {
		args = append(args, shared.DateOnly(filter.Range.To))
		fmt.Fprintf(&sb, " AND data_movimento <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY data_movimento DESC, created_at DESC")

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, shared.WrapStore("list bank movements", err)
	}
	defer rows.Close()

	var out []BankMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, shared.WrapStore("list bank movements", rows.Err())
}

func (r *pgRepository) GetMovement(ctx context.Context, id uuid.UUID) (BankMovement, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+movementColumns+` FROM movimentos_bancarios WHERE id = $1`, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankMovement{}, shared.ErrNotFound
		}
		return BankMovement{}, err
	}
	return m, nil
}

func (r *pgRepository) InsertMovement(ctx context.Context, m BankMovement) (BankMovement, error) {
	const query = `
		INSERT INTO movimentos_bancarios (id, data_movimento, descricao, valor, tipo, status_conciliacao,
			conta_bancaria_id, documento, observacoes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		m.ID, m.MovementDate, m.Description, m.Value, m.Type, m.Status,
		m.BankAccountID, m.Document, m.Observations,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return BankMovement{}, mapWriteError("bank_movement", err)
	}
	return m, nil
}

func (r *pgRepository) UpdateMovementStatus(ctx context.Context, id uuid.UUID, status Status, observations string) (BankMovement, error) {
	const query = `
		UPDATE movimentos_bancarios
		SET status_conciliacao = $2,
			observacoes = CASE WHEN $3 <> '' THEN $3 ELSE observacoes END,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + movementColumns + `
	`
	row := r.pool.QueryRow(ctx, query, id, status, observations)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankMovement{}, shared.ErrNotFound
		}
		return BankMovement{}, err
	}
	return m, nil
}

func (r *pgRepository) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movimentos_bancarios WHERE id = $1`, id)
	if err != nil {
		return shared.WrapStore("delete bank movement", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMovement(row pgx.Row) (BankMovement, error) {
	var m BankMovement
	err := row.Scan(&m.ID, &m.MovementDate, &m.Description, &m.Value, &m.Type, &m.Status,
		&m.BankAccountID, &m.Document, &m.Observations, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BankMovement{}, err
		}
		return BankMovement{}, shared.WrapStore("scan bank movement", err)
	}
	return m, nil
}

func mapWriteError(entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return shared.NewValidationError(entity, "conta_bancaria_id", "referenced bank account does not exist")
		case "23514":
			return shared.NewValidationError(entity, pgErr.ConstraintName, "constraint violated")
		}
	}
	return shared.WrapStore("write "+entity, err)
}
