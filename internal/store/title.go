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

// TitleStore manages titles and their genre links.
type TitleStore struct {
	db *sqlx.DB
}

// NewTitleStore returns a new TitleStore.
func NewTitleStore(db *sql.DB) *TitleStore {
	return &TitleStore{db: sqlx.NewDb(db, "pgx")}
}

// TitleFilter narrows a title listing. Zero values mean "no filter".
type TitleFilter struct {
	Genre    string // genre slug
	Category string // category slug
	Year     *int
	Name     string // case-insensitive substring
}

func (f TitleFilter) where() sq.And {
	where := sq.And{}
	if f.Category != "" {
		where = append(where, sq.Eq{"c.slug": f.Category})
	}
	if f.Genre != "" {
		where = append(where, sq.Expr(`EXISTS (
			SELECT 1 FROM genre_titles gt JOIN genres g ON g.id = gt.genre_id
			WHERE gt.title_id = t.id AND g.slug = ?)`, f.Genre))
	}
	if f.Year != nil {
		where = append(where, sq.Eq{"t.year": *f.Year})
	}
	if f.Name != "" {
		where = append(where, sq.ILike{"t.name": containsPattern(f.Name)})
	}
	return where
}

// titleRow is a title joined with its category and review average.
type titleRow struct {
	models.Title
	CategoryName *string  `db:"category_name"`
	CategorySlug *string  `db:"category_slug"`
	Rating       *float64 `db:"rating"`
}

func (r titleRow) toModel() models.Title {
	t := r.Title
	t.Rating = r.Rating
	if r.CategoryID != nil && r.CategorySlug != nil {
		t.Category = &models.Category{ID: *r.CategoryID, Name: *r.CategoryName, Slug: *r.CategorySlug}
	}
	t.Genres = []models.Genre{}
	return t
}

// selectTitles is the base read query: rating is averaged over the
// title's reviews at query time.
func selectTitles() sq.SelectBuilder {
	return psql.Select(
		"t.id", "t.name", "t.year", "t.description", "t.category_id",
		"c.name AS category_name", "c.slug AS category_slug",
		"AVG(r.score)::float8 AS rating",
	).
		From("titles t").
		LeftJoin("categories c ON c.id = t.category_id").
		LeftJoin("reviews r ON r.title_id = t.id").
		GroupBy("t.id", "c.id")
}

// List returns one page of titles ordered by name with category, genres
// and rating populated, plus the total number of matches.
func (s *TitleStore) List(ctx context.Context, f TitleFilter, page Page) (titles []models.Title, total int, err error) {
	ctx, done := observe(ctx, "titles.list")
	defer func() { done(err) }()

	where := f.where()

	countSQL, countArgs, err := psql.Select("COUNT(*)").
		From("titles t").
		LeftJoin("categories c ON c.id = t.category_id").
		Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count titles: %w", err)
	}
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query, args, err := page.apply(selectTitles().Where(where).OrderBy("t.name", "t.id")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list titles: %w", err)
	}

	var rows []titleRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	titles = make([]models.Title, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.toModel())
	}
	if err := s.loadGenres(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// FindByID retrieves a title with category, genres and rating. Returns
// nil if not found.
func (s *TitleStore) FindByID(ctx context.Context, id int64) (t *models.Title, err error) {
	ctx, done := observe(ctx, "titles.find")
	defer func() { done(err) }()

	query, args, err := selectTitles().Where(sq.Eq{"t.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find title: %w", err)
	}

	var row titleRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find title by id: %w", err)
	}

	titles := []models.Title{row.toModel()}
	if err := s.loadGenres(ctx, titles); err != nil {
		return nil, err
	}
	return &titles[0], nil
}

// Exists reports whether a title with the given id exists.
func (s *TitleStore) Exists(ctx context.Context, id int64) (ok bool, err error) {
	ctx, done := observe(ctx, "titles.exists")
	defer func() { done(err) }()

	if err := s.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return ok, nil
}

// loadGenres fills the Genres slice of every title with one query.
func (s *TitleStore) loadGenres(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, len(titles))
	index := make(map[int64]int, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
		index[t.ID] = i
	}

	query, args, err := psql.Select("gt.title_id", "g.id", "g.name", "g.slug").
		From("genre_titles gt").
		Join("genres g ON g.id = gt.genre_id").
		Where(sq.Eq{"gt.title_id": ids}).
		OrderBy("g.name", "g.id").ToSql()
	if err != nil {
		return fmt.Errorf("build load genres: %w", err)
	}

	var links []struct {
		TitleID int64 `db:"title_id"`
		models.Genre
	}
	if err := s.db.SelectContext(ctx, &links, query, args...); err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}

	for _, l := range links {
		i := index[l.TitleID]
		titles[i].Genres = append(titles[i].Genres, l.Genre)
	}
	return nil
}

// setGenres replaces the genre links of a title inside tx.
func setGenres(ctx context.Context, tx *sqlx.Tx, titleID int64, genreIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM genre_titles WHERE title_id = $1`, titleID); err != nil {
		return fmt.Errorf("clear title genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	ins := psql.Insert("genre_titles").Columns("title_id", "genre_id").Suffix("ON CONFLICT DO NOTHING")
	for _, gid := range genreIDs {
		ins = ins.Values(titleID, gid)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert title genres: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert title genres: %w", translate(err))
	}
	return nil
}

// Create inserts a title and its genre links in one transaction and
// returns the stored title.
func (s *TitleStore) Create(ctx context.Context, t *models.Title, genreIDs []int64) (created *models.Title, err error) {
	ctx, done := observe(ctx, "titles.create")
	defer func() { done(err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, `
		INSERT INTO titles (name, year, description, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, t.Name, t.Year, t.Description, t.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("create title: %w", translate(err))
	}

	if err := setGenres(ctx, tx, id, genreIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit title: %w", err)
	}

	return s.FindByID(ctx, id)
}

// Update writes the scalar fields of t. When replaceGenres is set the
// genre links are replaced by genreIDs in the same transaction.
func (s *TitleStore) Update(ctx context.Context, t *models.Title, genreIDs []int64, replaceGenres bool) (err error) {
	ctx, done := observe(ctx, "titles.update")
	defer func() { done(err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4
		WHERE id = $5
	`, t.Name, t.Year, t.Description, t.CategoryID, t.ID)
	if err != nil {
		return fmt.Errorf("update title: %w", translate(err))
	}

	if replaceGenres {
		if err := setGenres(ctx, tx, t.ID, genreIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a title and reports whether it existed. Reviews, comments
// and genre links go with it by cascade.
func (s *TitleStore) Delete(ctx context.Context, id int64) (ok bool, err error) {
	ctx, done := observe(ctx, "titles.delete")
	defer func() { done(err) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	return n > 0, nil
}
