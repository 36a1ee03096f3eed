// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package testdb provides a PostgreSQL database for integration tests.
// It prefers the server described by the POSTGRES_* variables and falls
// back to a throwaway container started with testcontainers. Tests are
// skipped when neither is available.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once     sync.Once
	dsn      string
	setupErr error
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDSN returns the connection string built from POSTGRES_* variables,
// with defaults matching docker-compose.yml.
func envDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "yamdb")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "yamdb")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable&connect_timeout=2"
}

func reachable(dsn string) bool {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return false
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return db.PingContext(ctx) == nil
}

func setup() {
	if d := envDSN(); reachable(d) {
		dsn = d
		return
	}
	if os.Getenv("YAMDB_TEST_NO_CONTAINERS") != "" {
		setupErr = fmt.Errorf("postgres not reachable and containers disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// The docker provider panics on some hosts without a daemon.
	defer func() {
		if r := recover(); r != nil {
			setupErr = fmt.Errorf("start postgres container: %v", r)
		}
	}()

	// The container is reaped by testcontainers when the test binary exits.
	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("yamdb_test"),
		postgres.WithUsername("yamdb"),
		postgres.WithPassword("yamdb"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		setupErr = fmt.Errorf("start postgres container: %w", err)
		return
	}

	dsn, setupErr = c.ConnectionString(ctx, "sslmode=disable")
}

// DSN returns the connection string of the test database, skipping the
// test if none is available.
func DSN(t *testing.T) string {
	t.Helper()
	once.Do(setup)
	if setupErr != nil {
		t.Skipf("skipping integration test: %v", setupErr)
	}
	return dsn
}

// Open connects to the test database. The connection is closed when the
// test finishes. The schema is not migrated; callers run database.Migrate.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DSN(t))
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
