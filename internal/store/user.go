// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"yamdb/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: sqlx.NewDb(db, "pgx")}
}

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, confirmed, last_login, date_joined`

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

func findUser(ctx context.Context, q queryer, column string, value any) (*models.User, error) {
	u := &models.User{}
	err := q.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", column, err)
	}
	return u, nil
}

// FindByID retrieves a user by id. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id int64) (u *models.User, err error) {
	ctx, done := observe(ctx, "users.find")
	defer func() { done(err) }()
	return findUser(ctx, s.db, "id", id)
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (u *models.User, err error) {
	ctx, done := observe(ctx, "users.find")
	defer func() { done(err) }()
	return findUser(ctx, s.db, "username", username)
}

// FindByEmail retrieves a user by email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (u *models.User, err error) {
	ctx, done := observe(ctx, "users.find")
	defer func() { done(err) }()
	return findUser(ctx, s.db, "email", email)
}

// List returns one page of users ordered by id. A non-empty search matches
// the username exactly.
func (s *UserStore) List(ctx context.Context, search string, page Page) (users []models.User, total int, err error) {
	ctx, done := observe(ctx, "users.list")
	defer func() { done(err) }()

	count := psql.Select("COUNT(*)").From("users")
	list := psql.Select(userColumns).From("users").OrderBy("id")
	if search != "" {
		count = count.Where("username = ?", search)
		list = list.Where("username = ?", search)
	}

	query, args, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count users: %w", err)
	}
	if err := s.db.GetContext(ctx, &total, query, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query, args, err = page.apply(list).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users: %w", err)
	}
	users = []models.User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Create inserts a user as given (admin-created users start unconfirmed
// like everyone else). Duplicate username or email yields *ConflictError.
func (s *UserStore) Create(ctx context.Context, u *models.User) (created *models.User, err error) {
	ctx, done := observe(ctx, "users.create")
	defer func() { done(err) }()

	role := u.Role
	if role == "" {
		role = models.RoleUser
	}

	created = &models.User{}
	err = s.db.GetContext(ctx, created, `
		INSERT INTO users (username, email, first_name, last_name, bio, role, is_superuser, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, role, u.IsSuperuser, u.Confirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", translate(err))
	}
	return created, nil
}

// CreateSuperuser inserts a confirmed admin with the superuser flag set.
func (s *UserStore) CreateSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	return s.Create(ctx, &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
		Confirmed:   true,
	})
}

// Update writes the editable profile fields of u.
func (s *UserStore) Update(ctx context.Context, u *models.User) (err error) {
	ctx, done := observe(ctx, "users.update")
	defer func() { done(err) }()

	_, err = s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6
		WHERE id = $7
	`, u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", translate(err))
	}
	return nil
}

// Delete removes a user by id together with their reviews and comments.
func (s *UserStore) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := observe(ctx, "users.delete")
	defer func() { done(err) }()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// MarkConfirmed sets the confirmed flag and stamps last_login, but only while
// the row still matches seen on every field a confirmation code is bound to.
// It reports false when another request changed that state first.
func (s *UserStore) MarkConfirmed(ctx context.Context, seen *models.User, at time.Time) (ok bool, err error) {
	ctx, done := observe(ctx, "users.confirm")
	defer func() { done(err) }()

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET confirmed = TRUE, last_login = $1
		WHERE id = $2 AND username = $3 AND email = $4
		  AND confirmed = $5 AND last_login IS NOT DISTINCT FROM $6`,
		at, seen.ID, seen.Username, seen.Email, seen.Confirmed, seen.LastLogin,
	)
	if err != nil {
		return false, fmt.Errorf("confirm user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("confirm user: %w", err)
	}
	return n == 1, nil
}

// Register resolves a signup request inside one transaction. When neither
// username nor email is taken a new unconfirmed user is inserted; when both
// belong to the same user that user is reused. Any other overlap returns a
// *ConflictError naming the taken fields. deliver is called with the
// resulting user before commit, and an error from it rolls the insert back.
func (s *UserStore) Register(ctx context.Context, username, email string, deliver func(*models.User) error) (u *models.User, err error) {
	ctx, done := observe(ctx, "users.register")
	defer func() { done(err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	byName, err := findUser(ctx, tx, "username", username)
	if err != nil {
		return nil, err
	}
	byEmail, err := findUser(ctx, tx, "email", email)
	if err != nil {
		return nil, err
	}

	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		u = byName
	case byName == nil && byEmail == nil:
		u = &models.User{}
		err = tx.GetContext(ctx, u, `
			INSERT INTO users (username, email) VALUES ($1, $2)
			RETURNING `+userColumns,
			username, email,
		)
		if err != nil {
			return nil, fmt.Errorf("register user: %w", translate(err))
		}
	default:
		conflict := &ConflictError{}
		if byName != nil {
			conflict.Fields = append(conflict.Fields, "username")
		}
		if byEmail != nil {
			conflict.Fields = append(conflict.Fields, "email")
		}
		return nil, conflict
	}

	if err := deliver(u); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return u, nil
}
