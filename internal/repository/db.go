package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/victoedr/idcard-verifier/internal/common"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Store wraps the driver database independent of backend. The default
// backend is a local sqlite file; shared deployments point DB_URL at a
// postgres server instead.
type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool // nil on sqlite
	dialect string
	logger  *slog.Logger
}

// Open connects to the driver store. postgres:// and postgresql:// DSNs get
// a pgx pool; every other DSN is treated as a sqlite file path (":memory:"
// works) and is initialized with the embedded schema. Postgres schemas are
// administrator-managed and never migrated here.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if isPostgresDSN(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "dialect", DialectPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, common.StorageError("parse dsn", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "idcard-verifier"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, common.StorageError("connect postgres", err)
	}

	// Wrap pool as *sql.DB so queries are backend-agnostic.
	db := stdlib.OpenDBFromPool(pool)

	logger.Info("successfully connected to database")
	return &Store{db: db, pool: pool, dialect: DialectPostgres, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "dialect", DialectSQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, common.StorageError("open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, common.StorageError(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, dialect: DialectSQLite, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return store, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Info("closing database connections")
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Ping verifies connectivity, catching DSN issues early.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return common.StorageError("ping", err)
	}
	return nil
}

func (s *Store) Dialect() string {
	return s.dialect
}

// rebind rewrites ? placeholders into the $n form postgres expects. Queries
// are written once with ? and stay valid on both backends.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
