// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamdb/internal/mail"
	"yamdb/internal/models"
)

const testSecret = "test-secret-key"

// memUsers is an in-memory UserRepository.
type memUsers struct {
	byName map[string]*models.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]*models.User{}}
}

func (m *memUsers) Register(_ context.Context, username, email string, deliver func(*models.User) error) (*models.User, error) {
	u, ok := m.byName[username]
	if !ok {
		m.nextID++
		u = &models.User{ID: m.nextID, Username: username, Email: email, Role: models.RoleUser}
	}
	if err := deliver(u); err != nil {
		return nil, err
	}
	m.byName[username] = u
	return u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) MarkConfirmed(_ context.Context, seen *models.User, at time.Time) (bool, error) {
	u, ok := m.byName[seen.Username]
	if !ok || u.ID != seen.ID || u.Email != seen.Email || u.Confirmed != seen.Confirmed {
		return false, nil
	}
	if (u.LastLogin == nil) != (seen.LastLogin == nil) ||
		(u.LastLogin != nil && !u.LastLogin.Equal(*seen.LastLogin)) {
		return false, nil
	}
	u.Confirmed = true
	at = at.Truncate(time.Microsecond)
	u.LastLogin = &at
	return true, nil
}

// staleUsers hands out one snapshot of a user to every lookup, as two
// requests racing on the same code would both see it.
type staleUsers struct {
	*memUsers
	snapshot *models.User
}

func (s *staleUsers) FindByUsername(_ context.Context, _ string) (*models.User, error) {
	cp := *s.snapshot
	return &cp, nil
}

// outbox records sent mail.
type outbox struct {
	sent []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, o.sent)
	body := o.sent[len(o.sent)-1].Body
	code, ok := strings.CutPrefix(body, "Confirmation code: ")
	require.True(t, ok, "unexpected body %q", body)
	return code
}

func newTestService(t *testing.T, now time.Time) (*Service, *memUsers, *outbox) {
	t.Helper()
	codes, err := NewCodes(testSecret, time.Hour)
	require.NoError(t, err)
	tokens, err := NewTokens(testSecret, 24*time.Hour)
	require.NoError(t, err)

	users, box := newMemUsers(), &outbox{}
	s := NewService(users, box, codes, tokens)
	s.now = func() time.Time { return now }
	return s, users, box
}

func TestSignupAndExchange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, users, box := newTestService(t, now)

	u, err := s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	require.Len(t, box.sent, 1)
	assert.Equal(t, "ada@example.com", box.sent[0].To)
	assert.Equal(t, MailSubject, box.sent[0].Subject)
	code := box.lastCode(t)
	assert.Len(t, code, 8)

	token, err := s.Exchange(ctx, "ada", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	id, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	stored, _ := users.FindByUsername(ctx, "ada")
	assert.True(t, stored.Confirmed)
	require.NotNil(t, stored.LastLogin)
}

func TestExchangeCodeIsOneTime(t *testing.T) {
	ctx := context.Background()
	s, _, box := newTestService(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	code := box.lastCode(t)

	_, err = s.Exchange(ctx, "ada", code)
	require.NoError(t, err)

	_, err = s.Exchange(ctx, "ada", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestExchangeConcurrentUseOfOneCode(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, users, box := newTestService(t, now)

	_, err := s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	code := box.lastCode(t)

	before, err := users.FindByUsername(ctx, "ada")
	require.NoError(t, err)
	s.users = &staleUsers{memUsers: users, snapshot: before}

	first, err := s.Exchange(ctx, "ada", code)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.Exchange(ctx, "ada", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, second)
}

func TestExchangeErrors(t *testing.T) {
	ctx := context.Background()
	s, users, _ := newTestService(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := s.Exchange(ctx, "nobody", "12345678")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	_, err = s.Exchange(ctx, "ada", "not-a-code")
	assert.ErrorIs(t, err, ErrInvalidCode)

	stored, _ := users.FindByUsername(ctx, "ada")
	assert.False(t, stored.Confirmed, "a failed exchange must not confirm the user")
}

func TestSignupReplayReissuesCode(t *testing.T) {
	ctx := context.Background()
	s, _, box := newTestService(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	_, err := s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	_, err = s.Exchange(ctx, "ada", box.lastCode(t))
	require.NoError(t, err)

	// A confirmed user signs up again to get a fresh code.
	_, err = s.Signup(ctx, "ada", "ada@example.com")
	require.NoError(t, err)
	require.Len(t, box.sent, 2)

	_, err = s.Exchange(ctx, "ada", box.lastCode(t))
	assert.NoError(t, err)
}

func TestSignupDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	s, users, box := newTestService(t, time.Now())
	box.err = errors.New("connection refused")

	_, err := s.Signup(ctx, "ada", "ada@example.com")
	assert.ErrorIs(t, err, ErrDelivery)

	u, _ := users.FindByUsername(ctx, "ada")
	assert.Nil(t, u)
}

func TestCodeExpires(t *testing.T) {
	codes, err := NewCodes(testSecret, time.Minute)
	require.NoError(t, err)

	u := &models.User{ID: 7, Username: "ada", Email: "ada@example.com"}
	issued := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	code, err := codes.Generate(u, issued)
	require.NoError(t, err)

	assert.True(t, codes.Validate(u, code, issued))
	assert.True(t, codes.Validate(u, code, issued.Add(time.Minute)))
	assert.False(t, codes.Validate(u, code, issued.Add(5*time.Minute)))
}

func TestCodeBoundToUserState(t *testing.T) {
	codes, err := NewCodes(testSecret, time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	u := &models.User{ID: 7, Username: "ada", Email: "ada@example.com"}
	code, err := codes.Generate(u, now)
	require.NoError(t, err)

	changed := *u
	changed.Email = "ada@elsewhere.com"
	assert.False(t, codes.Validate(&changed, code, now))

	other, err := NewCodes("another-secret", time.Hour)
	require.NoError(t, err)
	assert.False(t, other.Validate(u, code, now))
}

func TestTokens(t *testing.T) {
	tokens, err := NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := tokens.Issue(&models.User{ID: 42}, now)
	require.NoError(t, err)

	id, err := tokens.Parse(raw, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = tokens.Parse(raw, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	other, err := NewTokens("another-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(raw, now)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong key")

	_, err = tokens.Parse("garbage", now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token issued twice for the same user differs by jti.
	again, err := tokens.Issue(&models.User{ID: 42}, now)
	require.NoError(t, err)
	assert.NotEqual(t, raw, again)
}

func TestDeriveKeySeparatesPurposes(t *testing.T) {
	a, err := deriveKey(testSecret, codeKeyLabel)
	require.NoError(t, err)
	b, err := deriveKey(testSecret, tokenKeyLabel)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = deriveKey("", codeKeyLabel)
	assert.Error(t, err)
}
