// Package testdb starts a disposable PostgreSQL for the coinwallet
// repository integration tests, with the schema from migrations/ applied.
package testdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Image is the PostgreSQL image the integration suite runs against.
const Image = "postgres:16-alpine"

// walletTables are the tables Reset empties. Holdings reference both users
// and assets, so they come first.
var walletTables = []string{"user_assets", "assets", "users"}

// TestDB is a running container plus a pool connected to it.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// NewTestDB starts the container, runs every *.up.sql migration as an init
// script and returns once the pool answers a ping.
func NewTestDB(ctx context.Context) (*TestDB, error) {
	scripts, err := upMigrations()
	if err != nil {
		return nil, err
	}

	container, err := postgres.Run(ctx,
		Image,
		postgres.WithDatabase("coinwallet_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(scripts...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	db := &TestDB{Container: container}
	if err := db.connect(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return db, nil
}

func (db *TestDB) connect(ctx context.Context) error {
	connStr, err := db.Container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.Pool = pool
	db.ConnStr = connStr
	return nil
}

// Reset empties users, assets and holdings in one statement.
func (db *TestDB) Reset(ctx context.Context) error {
	stmt := "TRUNCATE TABLE " + strings.Join(walletTables, ", ") + " CASCADE"
	if _, err := db.Pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to reset wallet tables: %w", err)
	}
	return nil
}

// Close closes the pool and terminates the container.
func (db *TestDB) Close(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// upMigrations returns the repository's *.up.sql files in version order.
func upMigrations() ([]string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("failed to locate testdb source file")
	}

	// testutil/testdb/postgres.go -> <root>/migrations
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	scripts, err := filepath.Glob(filepath.Join(root, "migrations", "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("no up migrations found under %s", filepath.Join(root, "migrations"))
	}
	return scripts, nil
}
