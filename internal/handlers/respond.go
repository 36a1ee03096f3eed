// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the YaMDb REST API. Handlers are grouped by
// resource (Auth, Catalog, Reviews, Users); each group is built with a
// NewX constructor and mounted by the router.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"yamdb/internal/access"
	"yamdb/internal/store"
)

// Response messages shared by several handlers.
const (
	msgNotFound        = "Not found."
	msgUnauthenticated = "Authentication credentials were not provided."
	msgForbidden       = "You do not have permission to perform this action."
	msgServerError     = "Internal server error."
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDetail writes a {"detail": msg} error body.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func notFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, msgNotFound)
}

// serverError logs err and writes a generic 500.
func serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeDetail(w, http.StatusInternalServerError, msgServerError)
}

// deny writes the response for a refused permission check.
func deny(w http.ResponseWriter, d access.Decision) {
	if d == access.Unauthenticated {
		writeDetail(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	writeDetail(w, http.StatusForbidden, msgForbidden)
}

// fieldErrors collects validation messages per input field.
type fieldErrors map[string][]string

func (e fieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// addAll records msgs for field, if any.
func (e fieldErrors) addAll(field string, msgs []string) {
	if len(msgs) > 0 {
		e[field] = append(e[field], msgs...)
	}
}

func (e fieldErrors) any() bool {
	return len(e) > 0
}

func badRequest(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusBadRequest, errs)
}

// conflictMessages names the duplicate for each unique constraint.
var conflictMessages = map[string]string{
	"users_username_key":       "A user with that username already exists.",
	"users_email_key":          "A user with that email already exists.",
	"categories_slug_key":      "A category with this slug already exists.",
	"genres_slug_key":          "A genre with this slug already exists.",
	"reviews_author_title_key": "You have already reviewed this title.",
}

// conflictFieldMessages is used when the conflict was detected before
// reaching a constraint.
var conflictFieldMessages = map[string]string{
	"username": "A user with that username already exists.",
	"email":    "A user with that email already exists.",
}

// msgReferenceGone is the field error for an input reference deleted
// while the request was in flight.
const msgReferenceGone = "The referenced object no longer exists."

// writeStoreError turns a store error into a response. Unique conflicts
// become 400 field errors. A vanished parent is a 404 and a vanished input
// reference a 400 on its field. Everything else is a logged 500.
func writeStoreError(w http.ResponseWriter, msg string, err error) {
	var ref *store.ReferenceError
	if errors.As(err, &ref) {
		if ref.Field == "" {
			notFound(w)
			return
		}
		badRequest(w, fieldErrors{ref.Field: {msgReferenceGone}})
		return
	}

	var conflict *store.ConflictError
	if !errors.As(err, &conflict) {
		serverError(w, msg, err)
		return
	}

	errs := fieldErrors{}
	for _, field := range conflict.Fields {
		text, ok := conflictMessages[conflict.Constraint]
		if !ok {
			text, ok = conflictFieldMessages[field]
		}
		if !ok {
			text = "This value must be unique."
		}
		errs.add(field, text)
	}
	badRequest(w, errs)
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(w)
}

// MethodNotAllowed answers requests with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", r.Method))
}
