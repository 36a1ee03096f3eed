// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"yamdb/internal/models"
)

// ReviewStore manages reviews in the database.
type ReviewStore struct {
	db *sqlx.DB
}

// NewReviewStore returns a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: sqlx.NewDb(db, "pgx")}
}

const reviewColumns = `r.id, r.author_id, u.username AS author, r.title_id, r.text, r.score, r.pub_date`

// List returns one page of a title's reviews ordered by id, and the total.
func (s *ReviewStore) List(ctx context.Context, titleID int64, page Page) (reviews []models.Review, total int, err error) {
	ctx, done := observe(ctx, "reviews.list")
	defer func() { done(err) }()

	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query, args, err := page.apply(
		psql.Select(reviewColumns).
			From("reviews r").
			Join("users u ON u.id = r.author_id").
			Where("r.title_id = ?", titleID).
			OrderBy("r.id"),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reviews: %w", err)
	}

	reviews = []models.Review{}
	if err := s.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// Find retrieves a review that belongs to the given title. Returns nil if
// the review does not exist or belongs to another title.
func (s *ReviewStore) Find(ctx context.Context, titleID, id int64) (rv *models.Review, err error) {
	ctx, done := observe(ctx, "reviews.find")
	defer func() { done(err) }()

	var r models.Review
	err = s.db.GetContext(ctx, &r, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.id = $1 AND r.title_id = $2
	`, id, titleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return &r, nil
}

// ExistsFor reports whether authorID has already reviewed titleID.
func (s *ReviewStore) ExistsFor(ctx context.Context, titleID, authorID int64) (ok bool, err error) {
	ctx, done := observe(ctx, "reviews.exists")
	defer func() { done(err) }()

	err = s.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`,
		titleID, authorID,
	)
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return ok, nil
}

// Create inserts a review with pub_date set by the database. A second
// review of the same title by the same author yields *ConflictError.
func (s *ReviewStore) Create(ctx context.Context, r *models.Review) (created *models.Review, err error) {
	ctx, done := observe(ctx, "reviews.create")
	defer func() { done(err) }()

	var out models.Review
	err = s.db.GetContext(ctx, &out, `
		WITH r AS (
			INSERT INTO reviews (author_id, title_id, text, score)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+reviewColumns+` FROM r JOIN users u ON u.id = r.author_id
	`, r.AuthorID, r.TitleID, r.Text, r.Score)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", translate(err))
	}
	return &out, nil
}

// Update writes text and score. Author, title and pub_date never change.
func (s *ReviewStore) Update(ctx context.Context, r *models.Review) (err error) {
	ctx, done := observe(ctx, "reviews.update")
	defer func() { done(err) }()

	_, err = s.db.ExecContext(ctx,
		`UPDATE reviews SET text = $1, score = $2 WHERE id = $3`,
		r.Text, r.Score, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Delete removes a review and its comments.
func (s *ReviewStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := observe(ctx, "reviews.delete")
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
