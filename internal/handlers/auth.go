// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"yamdb/internal/auth"
	"yamdb/internal/store"
)

// Auth groups the signup and token exchange handlers.
type Auth struct {
	service *auth.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(service *auth.Service) *Auth {
	return &Auth{service: service}
}

// Signup registers a user (or re-identifies an existing one by the exact
// username and email pair) and mails a confirmation code.
func (a *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}

	errs := fieldErrors{}
	username, hasUsername := p.str("username", errs)
	email, hasEmail := p.str("email", errs)
	if !p.has("username") {
		errs.add("username", msgRequired)
	} else if hasUsername {
		errs.addAll("username", validateUsername(username))
	}
	if !p.has("email") {
		errs.add("email", msgRequired)
	} else if hasEmail {
		errs.addAll("email", validateEmail(email))
	}
	if errs.any() {
		badRequest(w, errs)
		return
	}

	user, err := a.service.Signup(r.Context(), username, email)
	if err != nil {
		var conflict *store.ConflictError
		switch {
		case errors.As(err, &conflict):
			writeStoreError(w, "signup", err)
		case errors.Is(err, auth.ErrDelivery):
			slog.Error("signup mail failed", "error", err, "username", username)
			writeDetail(w, http.StatusServiceUnavailable, "The confirmation code could not be sent. Try again later.")
		default:
			serverError(w, "signup failed", err)
		}
		return
	}

	slog.Info("confirmation code sent", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
}

// Token exchanges a username and confirmation code for a bearer token.
func (a *Auth) Token(w http.ResponseWriter, r *http.Request) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}

	errs := fieldErrors{}
	username, _ := p.str("username", errs)
	code, _ := p.str("confirmation_code", errs)
	for _, field := range []string{"username", "confirmation_code"} {
		if !p.has(field) {
			errs.add(field, msgRequired)
		}
	}
	if p.has("username") && username == "" && len(errs["username"]) == 0 {
		errs.add("username", msgBlank)
	}
	if p.has("confirmation_code") && code == "" && len(errs["confirmation_code"]) == 0 {
		errs.add("confirmation_code", msgBlank)
	}
	if errs.any() {
		badRequest(w, errs)
		return
	}

	token, err := a.service.Exchange(r.Context(), username, code)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		notFound(w)
		return
	case errors.Is(err, auth.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid confirmation code"})
		return
	case err != nil:
		serverError(w, "token exchange failed", err)
		return
	}

	slog.Info("token issued", "username", username)
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}
