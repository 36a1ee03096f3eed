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

// CommentStore manages review comments in the database.
type CommentStore struct {
	db *sqlx.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: sqlx.NewDb(db, "pgx")}
}

const commentColumns = `c.id, c.author_id, u.username AS author, c.review_id, c.text, c.pub_date`

// List returns one page of a review's comments, newest first.
func (s *CommentStore) List(ctx context.Context, reviewID int64, page Page) (comments []models.Comment, total int, err error) {
	ctx, done := observe(ctx, "comments.list")
	defer func() { done(err) }()

	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments WHERE review_id = $1`, reviewID); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query, args, err := page.apply(
		psql.Select(commentColumns).
			From("comments c").
			Join("users u ON u.id = c.author_id").
			Where("c.review_id = ?", reviewID).
			OrderBy("c.pub_date DESC", "c.id DESC"),
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list comments: %w", err)
	}

	comments = []models.Comment{}
	if err := s.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	return comments, total, nil
}

// Find retrieves a comment that belongs to the given review. Returns nil
// if not found.
func (s *CommentStore) Find(ctx context.Context, reviewID, id int64) (cm *models.Comment, err error) {
	ctx, done := observe(ctx, "comments.find")
	defer func() { done(err) }()

	var c models.Comment
	err = s.db.GetContext(ctx, &c, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.review_id = $2
	`, id, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &c, nil
}

// Create inserts a comment with pub_date set by the database.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (created *models.Comment, err error) {
	ctx, done := observe(ctx, "comments.create")
	defer func() { done(err) }()

	var out models.Comment
	err = s.db.GetContext(ctx, &out, `
		WITH c AS (
			INSERT INTO comments (author_id, review_id, text)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+commentColumns+` FROM c JOIN users u ON u.id = c.author_id
	`, c.AuthorID, c.ReviewID, c.Text)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", translate(err))
	}
	return &out, nil
}

// Update writes the comment text.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) (err error) {
	ctx, done := observe(ctx, "comments.update")
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `UPDATE comments SET text = $1 WHERE id = $2`, c.Text, c.ID); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := observe(ctx, "comments.delete")
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
