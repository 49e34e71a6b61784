package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rushteam/shoprec/core"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLStore 是 PostgreSQL 实现的 Store：一张以 cache_key 为主键的表。
// 写入使用 INSERT ... ON CONFLICT DO UPDATE，单条语句原子完成，并发写以最后提交的为准。
type SQLStore struct {
	db    *sql.DB
	table string
}

// OpenSQLStore 通过 pgx 驱动连接 PostgreSQL。
func OpenSQLStore(ctx context.Context, dsn, table string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, err, "store: open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, err, "store: ping postgres")
	}
	s, err := NewSQLStore(db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore 复用已有的 *sql.DB，Close 时会关闭它。
func NewSQLStore(db *sql.DB, table string) (*SQLStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, fmt.Sprintf("store: invalid table name %q", table))
	}
	return &SQLStore{db: db, table: table}, nil
}

func (s *SQLStore) Name() string { return "postgres" }

// EnsureSchema 创建缓存表（已存在时不做任何事）。
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	cache_key TEXT PRIMARY KEY,
	payload BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := squirrel.Select("payload").
		From(s.table).
		Where(squirrel.Eq{"cache_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var payload []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := squirrel.Insert(s.table).
		Columns("cache_key", "payload", "updated_at").
		Values(key, value, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query, args, err := squirrel.Delete(s.table).
		Where(squirrel.Eq{"cache_key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

var _ core.Store = (*SQLStore)(nil)
