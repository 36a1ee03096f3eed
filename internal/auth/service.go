// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/mail"
	"yamdb/internal/models"
)

var (
	// ErrInvalidCode means the confirmation code does not match.
	ErrInvalidCode = errors.New("invalid confirmation code")
	// ErrUserNotFound means no user has the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrDelivery means the confirmation mail could not be sent.
	ErrDelivery = errors.New("confirmation mail not delivered")
)

// MailSubject is the subject of the signup confirmation mail.
const MailSubject = "YaMDb registration"

// UserRepository is the storage the auth flow needs. It is implemented by
// *store.UserStore.
type UserRepository interface {
	Register(ctx context.Context, username, email string, deliver func(*models.User) error) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	MarkConfirmed(ctx context.Context, seen *models.User, at time.Time) (bool, error)
}

// Service runs signup and token exchange.
type Service struct {
	users  UserRepository
	mailer mail.Sender
	codes  *Codes
	tokens *Tokens
	now    func() time.Time
}

// NewService wires the auth flow.
func NewService(users UserRepository, mailer mail.Sender, codes *Codes, tokens *Tokens) *Service {
	return &Service{
		users:  users,
		mailer: mailer,
		codes:  codes,
		tokens: tokens,
		now:    time.Now,
	}
}

// Signup registers (or re-identifies) a user and mails a confirmation code.
// Uniqueness conflicts come back from the repository unchanged; a mail
// failure is reported as ErrDelivery and leaves no new user behind.
func (s *Service) Signup(ctx context.Context, username, email string) (*models.User, error) {
	deliver := func(u *models.User) error {
		code, err := s.codes.Generate(u, s.now())
		if err != nil {
			return err
		}
		err = s.mailer.Send(ctx, mail.Message{
			To:      u.Email,
			Subject: MailSubject,
			Body:    "Confirmation code: " + code,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDelivery, err)
		}
		return nil
	}
	return s.users.Register(ctx, username, email, deliver)
}

// Exchange trades a confirmation code for a bearer token. On success the
// user is marked confirmed and last_login is stamped, which also retires
// the code.
func (s *Service) Exchange(ctx context.Context, username, code string) (string, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	now := s.now()
	if !s.codes.Validate(u, code, now) {
		return "", ErrInvalidCode
	}

	ok, err := s.users.MarkConfirmed(ctx, u, now)
	if err != nil {
		return "", err
	}
	if !ok {
		// Someone else spent the code between the check and the update.
		return "", ErrInvalidCode
	}
	return s.tokens.Issue(u, now)
}

// Verify resolves a bearer token to a user id.
func (s *Service) Verify(raw string) (int64, error) {
	return s.tokens.Parse(raw, s.now())
}
