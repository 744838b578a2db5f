package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const applicationName = "invoice-extractor"

// Store owns the database handle shared by the repositories.
type Store struct {
	drv     *entsql.Driver
	pool    *pgxpool.Pool // nil for SQLite
	dialect string
	logger  *slog.Logger
}

// IsPostgresDSN reports whether dsn addresses a Postgres server; anything
// else is treated as a SQLite path.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to Postgres through a pgx pool, or opens a SQLite database,
// and wraps the handle in an ent SQL driver.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "database DSN is empty", common.ErrInvalidInput)
	}
	if IsPostgresDSN(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func openPostgres(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	logger.Info("db.connect", "driver", dialect.Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.connect.failed", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// Wrap pool as *sql.DB for ent's driver.
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("db.connect.ok", "driver", dialect.Postgres)
	return &Store{
		drv:     entsql.OpenDB(dialect.Postgres, db),
		pool:    pool,
		dialect: dialect.Postgres,
		logger:  logger,
	}, nil
}

func openSQLite(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	logger.Info("db.connect", "driver", dialect.SQLite, "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("db.connect.failed", "error", err)
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("db.sqlite.pragma_failed", "error", err)
	}
	logger.Info("db.connect.ok", "driver", dialect.SQLite)
	return &Store{
		drv:     entsql.OpenDB(dialect.SQLite, db),
		dialect: dialect.SQLite,
		logger:  logger,
	}, nil
}

// Dialect returns the ent dialect name of the store.
func (s *Store) Dialect() string { return s.dialect }

// Close closes the database connections gracefully.
func (s *Store) Close() {
	s.logger.Info("db.close")
	if err := s.drv.Close(); err != nil {
		s.logger.Error("db.close.failed", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.drv.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}
	s.logger.Debug("db.ping.ok")
	return nil
}

// Migrate creates the tables used by the repositories if they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, q := range migrations(s.dialect) {
		if err := s.drv.Exec(ctx, q, []any{}, nil); err != nil {
			s.logger.Error("db.migrate.failed", "error", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	s.logger.Info("db.migrate.ok", "dialect", s.dialect)
	return nil
}

// migrations returns the DDL for the extractions table. Postgres stores
// created_at with a zone; SQLite keeps whatever the driver writes.
func migrations(d string) []string {
	ts := "timestamp"
	if d == dialect.Postgres {
		ts = "timestamptz"
	}
	return []string{
		"CREATE TABLE IF NOT EXISTS " + extractionsTable + " (" +
			colID + " varchar(36) NOT NULL PRIMARY KEY, " +
			colSource + " text NOT NULL, " +
			colRoute + " varchar(16) NOT NULL, " +
			colItemCount + " integer NOT NULL, " +
			colHasRequisites + " boolean NOT NULL, " +
			colResult + " text NOT NULL, " +
			colCreatedAt + " " + ts + " NOT NULL)",
		"CREATE INDEX IF NOT EXISTS " + extractionsTable + "_created_at_idx ON " + extractionsTable + " (" + colCreatedAt + ")",
	}
}
