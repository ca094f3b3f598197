package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type accountRepoPG struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) AccountRepository {
	return &accountRepoPG{pool: pool}
}

func (r *accountRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const accountCols = `id, username, role, display_name, active, created_at, updated_at`

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO account (id, username, role, display_name, active)
		VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Username, a.Role, a.DisplayName, a.Active,
	)
	return translateErr(err)
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *accountRepoPG) GetByUsername(ctx context.Context, username string) (*Account, error) {
	return scanAccount(r.conn(ctx).QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE username = $1`, username))
}

func (r *accountRepoPG) Update(ctx context.Context, a *Account) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE account SET display_name=$2, active=$3, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.DisplayName, a.Active,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *accountRepoPG) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM account`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+accountCols+` FROM account ORDER BY username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	accounts, err := collectAccounts(rows)
	return accounts, total, err
}

func (r *accountRepoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM account WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+accountCols+` FROM account WHERE role = $1 ORDER BY username LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	accounts, err := collectAccounts(rows)
	return accounts, total, err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.Role, &a.DisplayName, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*Account, error) {
	var accounts []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Username, &a.Role, &a.DisplayName, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}

// translateErr maps pgx-level failures onto the domain sentinels so callers
// never see driver errors.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return clinicerr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return clinicerr.ErrConflict
	}
	return err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
