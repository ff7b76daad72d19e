//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"soccerpipe/internal/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Integration tests for database operations.
// Run with: go test -v -tags=integration ./internal/repository/...
//
// setupTestDB prefers a real Postgres already listening on localhost:5432 and falls
// back to a disposable testcontainers-go Postgres container when that host
// isn't reachable, so CI doesn't need a hand-provisioned database.

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "soccerpipe_test",
		User:     "soccerpipe_user",
		Password: "soccerpipe_password",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	if err == nil {
		return db, ctx
	}

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(cfg.Database),
		tcpostgres.WithUsername(cfg.User),
		tcpostgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategyAndDeadline(30*time.Second),
	)
	require.NoError(t, err, "failed to start postgres test container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg.Host = host
	cfg.Port = port.Port()

	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)
	require.NoError(t, migrations.Up(dsn), "failed to apply schema migrations to test container")

	db, err = NewDatabase(ctx, cfg)
	require.NoError(t, err, "failed to connect to test container database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "should successfully ping database")
}
