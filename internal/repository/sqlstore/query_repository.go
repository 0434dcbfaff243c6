package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
)

// queryTable is quoted because QUERY is a keyword in sqlite.
const queryTable = `"query"`

var createQueryTableSQLite = []string{`
CREATE TABLE IF NOT EXISTS "query" (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL,
	email TEXT NOT NULL,
	msg TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`,
	`CREATE INDEX IF NOT EXISTS idx_query_created_at ON "query" (created_at);`,
}

var createQueryTablePostgres = []string{`
CREATE TABLE IF NOT EXISTS "query" (
	id SERIAL PRIMARY KEY,
	username VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	msg TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	`CREATE INDEX IF NOT EXISTS idx_query_created_at ON "query" (created_at);`,
}

// errEmptyPatch guards the builder; callers reject empty patches before reaching the store.
var errEmptyPatch = errors.New("no fields to update")

type queryRow struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Msg       string    `db:"msg"`
	CreatedAt time.Time `db:"created_at"`
}

func (row queryRow) toDomain() domain.QueryMessage {
	return domain.QueryMessage{
		ID:        row.ID,
		Name:      row.Username,
		Email:     row.Email,
		Message:   row.Msg,
		CreatedAt: row.CreatedAt,
	}
}

type QueryRepository struct {
	db *sqlx.DB
}

func NewQueryRepository(db *sqlx.DB) repository.QueryRepository {
	return &QueryRepository{db: db}
}

func (r *QueryRepository) Init(ctx context.Context) error {
	stmts := createQueryTableSQLite
	if r.db.DriverName() == DriverPostgres {
		stmts = createQueryTablePostgres
	}
	if err := execAll(ctx, r.db, stmts); err != nil {
		return fmt.Errorf("create query table: %w", err)
	}
	return nil
}

func (r *QueryRepository) Create(ctx context.Context, msg *domain.QueryMessage) (int64, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO "query" (username, email, msg, created_at)
VALUES (?, ?, ?, ?)
RETURNING id`),
		msg.Name,
		msg.Email,
		msg.Message,
		msg.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert query: %w", err)
	}

	msg.ID = id
	return id, nil
}

func (r *QueryRepository) Get(ctx context.Context, id int64) (*domain.QueryMessage, error) {
	var row queryRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
SELECT id, username, email, msg, created_at
FROM "query"
WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select query: %w", err)
	}
	msg := row.toDomain()
	return &msg, nil
}

// List returns every query, newest first.
func (r *QueryRepository) List(ctx context.Context) ([]domain.QueryMessage, error) {
	var rows []queryRow
	if err := r.db.SelectContext(ctx, &rows, `
SELECT id, username, email, msg, created_at
FROM "query"
ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}

	msgs := make([]domain.QueryMessage, len(rows))
	for i := range rows {
		msgs[i] = rows[i].toDomain()
	}
	return msgs, nil
}

func (r *QueryRepository) Update(ctx context.Context, id int64, patch domain.QueryPatch) (int64, error) {
	query, args, err := buildQueryUpdate(id, patch)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("update query: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update query rows affected: %w", err)
	}
	return affected, nil
}

func (r *QueryRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM "query" WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("delete query: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete query rows affected: %w", err)
	}
	return affected, nil
}

// buildQueryUpdate turns a patch into a single UPDATE with one SET clause per supplied field.
// Input names differ from the columns: name -> username, message -> msg.
func buildQueryUpdate(id int64, patch domain.QueryPatch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, errEmptyPatch
	}

	b := sq.Update(queryTable)
	if patch.Name != nil {
		b = b.Set("username", *patch.Name)
	}
	if patch.Email != nil {
		b = b.Set("email", *patch.Email)
	}
	if patch.Message != nil {
		b = b.Set("msg", *patch.Message)
	}

	query, args, err := b.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build query update: %w", err)
	}
	return query, args, nil
}

var _ repository.QueryRepository = (*QueryRepository)(nil)
