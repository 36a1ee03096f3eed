// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all YaMDb entities.
// Each store struct wraps a *sqlx.DB and exposes typed query methods.
// Lookups that find nothing return (nil, nil).
package store

import (
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// psql builds statements with PostgreSQL $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SQLSTATE codes translate understands.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// NonFieldErrors is the field name used for conflicts that do not belong to
// a single input field.
const NonFieldErrors = "non_field_errors"

// constraintFields maps unique constraints to the input field they guard.
var constraintFields = map[string]string{
	"users_username_key":           "username",
	"users_email_key":              "email",
	"categories_slug_key":          "slug",
	"genres_slug_key":              "slug",
	"reviews_author_title_key":     NonFieldErrors,
	"genre_titles_title_genre_key": "genre",
}

// referenceFields maps foreign keys to the input field that chose the
// referenced row. Keys not listed point at the parent named in the URL.
var referenceFields = map[string]string{
	"titles_category_id_fkey":    "category",
	"genre_titles_genre_id_fkey": "genre",
}

// ReferenceError reports a write whose referenced row was deleted after
// it was looked up. Field is empty when the missing row is the parent
// resource rather than an input value.
type ReferenceError struct {
	Field      string
	Constraint string
}

func (e *ReferenceError) Error() string {
	return "missing referenced row (" + e.Constraint + ")"
}

// ConflictError reports a write rejected by a uniqueness rule, either by a
// pre-check or by the database constraint itself.
type ConflictError struct {
	Fields     []string
	Constraint string
}

func (e *ConflictError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("conflict on %s (%s)", strings.Join(e.Fields, ", "), e.Constraint)
	}
	return "conflict on " + strings.Join(e.Fields, ", ")
}

// translate turns unique violations into *ConflictError and foreign key
// violations into *ReferenceError. Every other error is left untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = NonFieldErrors
		}
		return &ConflictError{Fields: []string{field}, Constraint: pgErr.ConstraintName}
	case foreignKeyViolation:
		return &ReferenceError{Field: referenceFields[pgErr.ConstraintName], Constraint: pgErr.ConstraintName}
	}
	return err
}

// Page selects a window of a list result.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(b sq.SelectBuilder) sq.SelectBuilder {
	if p.Limit > 0 {
		b = b.Limit(uint64(p.Limit))
	}
	if p.Offset > 0 {
		b = b.Offset(uint64(p.Offset))
	}
	return b
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// wildcards in s escaped.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
