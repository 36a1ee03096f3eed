// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

// signupUser runs a successful signup and removes the user afterwards.
func (e *testEnv) signupUser(t *testing.T) (username, email string) {
	t.Helper()

	username = uniq("s")
	email = username + "@signup-test.local"
	t.Cleanup(func() { e.DB.Exec(`DELETE FROM users WHERE username = $1`, username) })

	rec := call(t, e.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/",
		map[string]string{"username": username, "email": email}, nil)
	wantStatus(t, rec, http.StatusOK)
	return username, email
}

func TestSignupAndToken(t *testing.T) {
	env := newTestEnv(t)
	username, email := env.signupUser(t)

	code := env.Outbox.lastCode(t, email)
	rec := call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/",
		map[string]string{"username": username, "confirmation_code": code}, nil)
	wantStatus(t, rec, http.StatusCreated)

	var body struct {
		Token string `json:"token"`
	}
	decode(t, rec, &body)
	if body.Token == "" {
		t.Fatal("empty token")
	}

	uid, err := env.Service.Verify(body.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	u, err := env.Users.FindByUsername(context.Background(), username)
	if err != nil || u == nil {
		t.Fatalf("FindByUsername: %v, %v", u, err)
	}
	if uid != u.ID {
		t.Errorf("token subject: got %d, want %d", uid, u.ID)
	}
	if !u.Confirmed || u.LastLogin == nil {
		t.Errorf("user not marked confirmed: %+v", u)
	}

	// The code is spent once exchanged.
	rec = call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/",
		map[string]string{"username": username, "confirmation_code": code}, nil)
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestSignupResponseBody(t *testing.T) {
	env := newTestEnv(t)
	username := uniq("s")
	email := username + "@signup-test.local"
	t.Cleanup(func() { env.DB.Exec(`DELETE FROM users WHERE username = $1`, username) })

	rec := call(t, env.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/",
		map[string]string{"username": username, "email": email}, nil)
	wantStatus(t, rec, http.StatusOK)

	var body map[string]string
	decode(t, rec, &body)
	if body["username"] != username || body["email"] != email {
		t.Errorf("body: got %v", body)
	}
}

func TestSignupReplaySendsNewMail(t *testing.T) {
	env := newTestEnv(t)
	username, email := env.signupUser(t)

	rec := call(t, env.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/",
		map[string]string{"username": username, "email": email}, nil)
	wantStatus(t, rec, http.StatusOK)

	count := 0
	for _, m := range env.Outbox.sent {
		if m.To == email {
			count++
		}
	}
	if count != 2 {
		t.Errorf("mails to %s: got %d, want 2", email, count)
	}
}

func TestSignupConflicts(t *testing.T) {
	env := newTestEnv(t)
	username, email := env.signupUser(t)

	tests := []struct {
		name      string
		body      map[string]string
		wantField string
	}{
		{"username taken", map[string]string{"username": username, "email": "other-" + email}, "username"},
		{"email taken", map[string]string{"username": "other" + username, "email": email}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, env.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/", tt.body, nil)
			wantStatus(t, rec, http.StatusBadRequest)

			var errs map[string][]string
			decode(t, rec, &errs)
			if len(errs[tt.wantField]) == 0 {
				t.Errorf("expected %s error, got %v", tt.wantField, errs)
			}
		})
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       any
		wantFields []string
	}{
		{"empty", map[string]string{}, []string{"username", "email"}},
		{"reserved username", map[string]string{"username": "me", "email": "me@example.com"}, []string{"username"}},
		{"bad email", map[string]string{"username": "valid_name", "email": "nope"}, []string{"email"}},
		{"null username", map[string]any{"username": nil, "email": "x@example.com"}, []string{"username"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, env.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/", tt.body, nil)
			wantStatus(t, rec, http.StatusBadRequest)

			var errs map[string][]string
			decode(t, rec, &errs)
			for _, field := range tt.wantFields {
				if len(errs[field]) == 0 {
					t.Errorf("expected %s error, got %v", field, errs)
				}
			}
		})
	}
}

func TestSignupDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.Outbox.err = errors.New("smtp down")

	username := uniq("s")
	t.Cleanup(func() { env.DB.Exec(`DELETE FROM users WHERE username = $1`, username) })

	rec := call(t, env.Auth.Signup, http.MethodPost, "/api/v1/auth/signup/",
		map[string]string{"username": username, "email": username + "@signup-test.local"}, nil)
	wantStatus(t, rec, http.StatusServiceUnavailable)

	u, err := env.Users.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u != nil {
		t.Error("user was created although the mail failed")
	}
}

func TestTokenErrors(t *testing.T) {
	env := newTestEnv(t)
	username, _ := env.signupUser(t)

	t.Run("wrong code", func(t *testing.T) {
		rec := call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/",
			map[string]string{"username": username, "confirmation_code": "00000000"}, nil)
		wantStatus(t, rec, http.StatusBadRequest)

		var body map[string]string
		decode(t, rec, &body)
		if body["error"] != "Invalid confirmation code" {
			t.Errorf("body: got %v", body)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/",
			map[string]string{"username": "nobody" + username, "confirmation_code": "12345678"}, nil)
		wantStatus(t, rec, http.StatusNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/", map[string]string{}, nil)
		wantStatus(t, rec, http.StatusBadRequest)

		var errs map[string][]string
		decode(t, rec, &errs)
		if len(errs["username"]) == 0 || len(errs["confirmation_code"]) == 0 {
			t.Errorf("errors: got %v", errs)
		}
	})

	t.Run("blank code", func(t *testing.T) {
		rec := call(t, env.Auth.Token, http.MethodPost, "/api/v1/auth/token/",
			map[string]string{"username": username, "confirmation_code": ""}, nil)
		wantStatus(t, rec, http.StatusBadRequest)
	})
}
