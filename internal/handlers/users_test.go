// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"yamdb/internal/models"
)

func TestUsersRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := call(t, env.UserAPI.List, http.MethodGet, "/api/v1/users/", nil, nil)
	wantStatus(t, rec, http.StatusUnauthorized)

	for _, role := range []models.Role{models.RoleUser, models.RoleModerator} {
		rec = call(t, env.UserAPI.List, http.MethodGet, "/api/v1/users/", nil, env.newUser(t, role))
		wantStatus(t, rec, http.StatusForbidden)
	}

	// Superusers pass regardless of role.
	super := env.newUser(t, models.RoleUser)
	super.IsSuperuser = true
	rec = call(t, env.UserAPI.List, http.MethodGet, "/api/v1/users/", nil, super)
	wantStatus(t, rec, http.StatusOK)
}

func TestUsersListSearch(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	target := env.newUser(t, models.RoleUser)

	rec := call(t, env.UserAPI.List, http.MethodGet, "/api/v1/users/?search="+target.Username, nil, admin)
	wantStatus(t, rec, http.StatusOK)

	var page struct {
		Count   int        `json:"count"`
		Results []userJSON `json:"results"`
	}
	decode(t, rec, &page)
	if page.Count != 1 || len(page.Results) != 1 || page.Results[0].Username != target.Username {
		t.Fatalf("search: got %+v", page)
	}

	// Search is an exact match, not a substring.
	rec = call(t, env.UserAPI.List, http.MethodGet, "/api/v1/users/?search="+target.Username[:3], nil, admin)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &page)
	if page.Count != 0 {
		t.Errorf("prefix search: got count %d, want 0", page.Count)
	}
}

func TestUsersCreate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	name := uniq("new")
	t.Cleanup(func() { env.DB.Exec(`DELETE FROM users WHERE username = $1`, name) })

	rec := call(t, env.UserAPI.Create, http.MethodPost, "/api/v1/users/", map[string]string{
		"username":   name,
		"email":      name + "@users-test.local",
		"first_name": "Ada",
		"bio":        "Mathematician",
	}, admin)
	wantStatus(t, rec, http.StatusCreated)

	var got userJSON
	decode(t, rec, &got)
	if got.Role != models.RoleUser {
		t.Errorf("role: got %q, want user", got.Role)
	}
	if got.FirstName != "Ada" || got.Bio != "Mathematician" || got.LastName != "" {
		t.Errorf("profile: got %+v", got)
	}

	rec = call(t, env.UserAPI.Create, http.MethodPost, "/api/v1/users/", map[string]string{
		"username": name,
		"email":    "other-" + name + "@users-test.local",
	}, admin)
	wantStatus(t, rec, http.StatusBadRequest)

	var errs map[string][]string
	decode(t, rec, &errs)
	if len(errs["username"]) == 0 {
		t.Errorf("expected username conflict, got %v", errs)
	}

	rec = call(t, env.UserAPI.Create, http.MethodPost, "/api/v1/users/", map[string]string{
		"username": "me",
		"role":     "owner",
	}, admin)
	wantStatus(t, rec, http.StatusBadRequest)
	errs = nil
	decode(t, rec, &errs)
	for _, field := range []string{"username", "email", "role"} {
		if len(errs[field]) == 0 {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}
}

func TestUsersGetUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	target := env.newUser(t, models.RoleUser)

	rec := call(t, env.UserAPI.Get, http.MethodGet, "/", nil, admin, "username", target.Username)
	wantStatus(t, rec, http.StatusOK)

	rec = call(t, env.UserAPI.Update, http.MethodPatch, "/", map[string]string{"role": "moderator", "last_name": "L"}, admin, "username", target.Username)
	wantStatus(t, rec, http.StatusOK)
	var got userJSON
	decode(t, rec, &got)
	if got.Role != models.RoleModerator || got.LastName != "L" || got.Email != target.Email {
		t.Errorf("patched: got %+v", got)
	}

	stored, err := env.Users.FindByID(context.Background(), target.ID)
	if err != nil || stored == nil {
		t.Fatalf("FindByID: %v, %v", stored, err)
	}
	if stored.Role != models.RoleModerator {
		t.Errorf("stored role: got %q", stored.Role)
	}

	rec = call(t, env.UserAPI.Update, http.MethodPut, "/", map[string]string{"bio": "only bio"}, admin, "username", target.Username)
	wantStatus(t, rec, http.StatusBadRequest)

	rec = call(t, env.UserAPI.Delete, http.MethodDelete, "/", nil, admin, "username", target.Username)
	wantStatus(t, rec, http.StatusNoContent)

	rec = call(t, env.UserAPI.Get, http.MethodGet, "/", nil, admin, "username", target.Username)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestUsersMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.newUser(t, models.RoleUser)

	rec := call(t, env.UserAPI.Me, http.MethodGet, "/api/v1/users/me/", nil, nil)
	wantStatus(t, rec, http.StatusUnauthorized)

	rec = call(t, env.UserAPI.Me, http.MethodGet, "/api/v1/users/me/", nil, user)
	wantStatus(t, rec, http.StatusOK)
	var got userJSON
	decode(t, rec, &got)
	if got.Username != user.Username {
		t.Errorf("me: got %+v", got)
	}

	// Role and email are ignored on self-update.
	rec = call(t, env.UserAPI.UpdateMe, http.MethodPatch, "/api/v1/users/me/", map[string]string{
		"role":  "admin",
		"email": "changed@users-test.local",
		"bio":   "About me",
	}, user)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &got)
	if got.Role != models.RoleUser || got.Email != user.Email || got.Bio != "About me" {
		t.Errorf("updated me: got %+v", got)
	}

	rec = call(t, env.UserAPI.UpdateMe, http.MethodPatch, "/api/v1/users/me/", map[string]string{"username": "me"}, user)
	wantStatus(t, rec, http.StatusBadRequest)

	rec = call(t, env.UserAPI.UpdateMe, http.MethodPatch, "/api/v1/users/me/", map[string]string{"bio": "x"}, nil)
	wantStatus(t, rec, http.StatusUnauthorized)
}
