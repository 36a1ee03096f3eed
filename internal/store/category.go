// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"yamdb/internal/models"
)

// Categories and genres share the same shape: a name and a unique slug.
// The helpers below operate on either table.

func listTerms[T any](ctx context.Context, db *sqlx.DB, table, search string, page Page) ([]T, int, error) {
	where := sq.And{}
	if search != "" {
		where = append(where, sq.ILike{"name": containsPattern(search)})
	}

	var total int
	countSQL, countArgs, err := psql.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count %s: %w", table, err)
	}
	if err := db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	query, args, err := page.apply(
		psql.Select("id", "name", "slug").From(table).Where(where).OrderBy("name", "id"),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list %s: %w", table, err)
	}

	items := []T{}
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	return items, total, nil
}

func findTerm[T any](ctx context.Context, db *sqlx.DB, table, slug string) (*T, error) {
	var item T
	err := db.GetContext(ctx, &item, `SELECT id, name, slug FROM `+table+` WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by slug: %w", table, err)
	}
	return &item, nil
}

func createTerm[T any](ctx context.Context, db *sqlx.DB, table, name, slug string) (*T, error) {
	var item T
	err := db.GetContext(ctx, &item,
		`INSERT INTO `+table+` (name, slug) VALUES ($1, $2) RETURNING id, name, slug`,
		name, slug,
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", table, translate(err))
	}
	return &item, nil
}

func deleteTerm(ctx context.Context, db *sqlx.DB, table, slug string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", table, err)
	}
	return n > 0, nil
}

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sqlx.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: sqlx.NewDb(db, "pgx")}
}

// List returns one page of categories ordered by name, optionally filtered
// by a case-insensitive name search, and the total number of matches.
func (s *CategoryStore) List(ctx context.Context, search string, page Page) (items []models.Category, total int, err error) {
	ctx, done := observe(ctx, "categories.list")
	defer func() { done(err) }()
	return listTerms[models.Category](ctx, s.db, "categories", search, page)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (c *models.Category, err error) {
	ctx, done := observe(ctx, "categories.find")
	defer func() { done(err) }()
	return findTerm[models.Category](ctx, s.db, "categories", slug)
}

// Create inserts a new category. A duplicate slug yields *ConflictError.
func (s *CategoryStore) Create(ctx context.Context, name, slug string) (c *models.Category, err error) {
	ctx, done := observe(ctx, "categories.create")
	defer func() { done(err) }()
	return createTerm[models.Category](ctx, s.db, "categories", name, slug)
}

// Delete removes a category by slug and reports whether it existed.
// Titles in the category keep existing with no category (ON DELETE SET NULL).
func (s *CategoryStore) Delete(ctx context.Context, slug string) (ok bool, err error) {
	ctx, done := observe(ctx, "categories.delete")
	defer func() { done(err) }()
	return deleteTerm(ctx, s.db, "categories", slug)
}

// GenreStore manages genres in the database.
type GenreStore struct {
	db *sqlx.DB
}

// NewGenreStore returns a new GenreStore.
func NewGenreStore(db *sql.DB) *GenreStore {
	return &GenreStore{db: sqlx.NewDb(db, "pgx")}
}

// List returns one page of genres ordered by name and the total count.
func (s *GenreStore) List(ctx context.Context, search string, page Page) (items []models.Genre, total int, err error) {
	ctx, done := observe(ctx, "genres.list")
	defer func() { done(err) }()
	return listTerms[models.Genre](ctx, s.db, "genres", search, page)
}

// FindBySlug retrieves a genre by slug. Returns nil if not found.
func (s *GenreStore) FindBySlug(ctx context.Context, slug string) (g *models.Genre, err error) {
	ctx, done := observe(ctx, "genres.find")
	defer func() { done(err) }()
	return findTerm[models.Genre](ctx, s.db, "genres", slug)
}

// FindBySlugs resolves a list of slugs. Slugs that do not exist are simply
// absent from the result; callers compare lengths to detect them.
func (s *GenreStore) FindBySlugs(ctx context.Context, slugs []string) (items []models.Genre, err error) {
	ctx, done := observe(ctx, "genres.find_many")
	defer func() { done(err) }()

	items = []models.Genre{}
	if len(slugs) == 0 {
		return items, nil
	}

	query, args, err := psql.Select("id", "name", "slug").From("genres").
		Where(sq.Eq{"slug": slugs}).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find genres: %w", err)
	}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("find genres by slug: %w", err)
	}
	return items, nil
}

// Create inserts a new genre. A duplicate slug yields *ConflictError.
func (s *GenreStore) Create(ctx context.Context, name, slug string) (g *models.Genre, err error) {
	ctx, done := observe(ctx, "genres.create")
	defer func() { done(err) }()
	return createTerm[models.Genre](ctx, s.db, "genres", name, slug)
}

// Delete removes a genre by slug and reports whether it existed. Its
// title links are removed by cascade.
func (s *GenreStore) Delete(ctx context.Context, slug string) (ok bool, err error) {
	ctx, done := observe(ctx, "genres.delete")
	defer func() { done(err) }()
	return deleteTerm(ctx, s.db, "genres", slug)
}
