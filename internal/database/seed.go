// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"yamdb/internal/slug"
)

// Default development superuser. It has no password; request a code via
// signup with this exact username/email pair to obtain a token.
const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@yamdb.local"
)

// Initial categories and genres by name; slugs are derived.
var (
	seedCategories = []string{"Books", "Films", "Music"}
	seedGenres     = []string{"Drama", "Comedy", "Fantasy", "Science Fiction", "Rock and Roll"}
)

// Seed populates the database with initial development data: a superuser
// and a handful of categories and genres. It is a no-op once any user
// exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (username, email, role, is_superuser)
		VALUES ($1, $2, 'admin', TRUE)
	`, SeedAdminUsername, SeedAdminEmail)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for _, name := range seedCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			name, slug.Generate(name),
		); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	for _, name := range seedGenres {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO genres (name, slug) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING`,
			name, slug.Generate(name),
		); err != nil {
			return fmt.Errorf("seed genre %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default superuser",
		"username", SeedAdminUsername,
		"email", SeedAdminEmail,
	)
	return nil
}
