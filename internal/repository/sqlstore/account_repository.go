package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
)

const createLoginTableSQLite = `
CREATE TABLE IF NOT EXISTS login (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	last_login DATETIME NULL
);
`

const createLoginTablePostgres = `
CREATE TABLE IF NOT EXISTS login (
	id SERIAL PRIMARY KEY,
	username VARCHAR(100) NOT NULL UNIQUE,
	email VARCHAR(255) NOT NULL UNIQUE,
	password VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMPTZ NULL
);
`

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type accountRow struct {
	ID        int64        `db:"id"`
	Username  string       `db:"username"`
	Email     string       `db:"email"`
	Password  string       `db:"password"`
	CreatedAt time.Time    `db:"created_at"`
	LastLogin sql.NullTime `db:"last_login"`
}

func (row accountRow) toDomain() domain.Account {
	account := domain.Account{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.Password,
		CreatedAt:    row.CreatedAt,
	}
	if row.LastLogin.Valid {
		t := row.LastLogin.Time
		account.LastLogin = &t
	}
	return account
}

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Init(ctx context.Context) error {
	stmt := createLoginTableSQLite
	if r.db.DriverName() == DriverPostgres {
		stmt = createLoginTablePostgres
	}
	if err := execAll(ctx, r.db, []string{stmt}); err != nil {
		return fmt.Errorf("create login table: %w", err)
	}
	return nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (int64, error) {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO login (username, email, password, created_at)
VALUES (?, ?, ?, ?)
RETURNING id`),
		account.Username,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	).Scan(&id)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, fmt.Errorf("insert account: %w: %w", dup, err)
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}

	account.ID = id
	return id, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, `
SELECT id, username, email, password, created_at, last_login
FROM login
WHERE username = ?`, username)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, `
SELECT id, username, email, password, created_at, last_login
FROM login
WHERE email = ?`, email)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var row accountRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select account: %w", err)
	}
	account := row.toDomain()
	return &account, nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE login SET last_login = ? WHERE id = ?`), at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("last login rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns accounts in insertion order. The password column is never selected.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, `
SELECT id, username, email, created_at, last_login
FROM login
ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]domain.Account, len(rows))
	for i := range rows {
		accounts[i] = rows[i].toDomain()
	}
	return accounts, nil
}

// uniqueViolation maps a unique index failure on login to the matching repository error.
// It returns nil for any other error.
func uniqueViolation(err error) error {
	var detail string
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return nil
		}
		// Detail echoes the rejected value, so only the constraint name is trusted.
		detail = strings.ToLower(pgErr.ConstraintName)
	} else {
		detail = strings.ToLower(err.Error())
		if !strings.Contains(detail, "unique") {
			return nil
		}
	}

	switch {
	case strings.Contains(detail, "username"):
		return repository.ErrDuplicateUsername
	case strings.Contains(detail, "email"):
		return repository.ErrDuplicateEmail
	default:
		return nil
	}
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
