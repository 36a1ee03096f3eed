// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"yamdb/internal/access"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/store"
)

// Users groups the user administration and profile handlers.
type Users struct {
	users *store.UserStore
	pager paginator
}

// NewUsers creates a new Users handler group.
func NewUsers(users *store.UserStore, pageSize int) *Users {
	return &Users{users: users, pager: newPaginator(pageSize)}
}

// requireStaff enforces StaffOrSuper and returns the acting user.
func requireStaff(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.UserFromCtx(r.Context())
	if d := access.StaffOrSuper(user); !d.Allowed() {
		deny(w, d)
		return nil, false
	}
	return user, true
}

// userInput is a parsed user write.
type userInput struct {
	fields map[string]string
}

// parseUser reads the writable profile fields. allowed names the fields the
// caller may change; others in the payload are ignored. required fields
// must be present unless partial is set.
func parseUser(p payload, allowed []string, required []string, partial bool) (userInput, fieldErrors) {
	errs := fieldErrors{}
	in := userInput{fields: map[string]string{}}

	for _, field := range allowed {
		val, ok := p.str(field, errs)
		if !ok {
			continue
		}
		switch field {
		case "username":
			errs.addAll(field, validateUsername(val))
		case "email":
			errs.addAll(field, validateEmail(val))
		case "first_name", "last_name":
			errs.addAll(field, validateOptional(val, maxPersonLen))
		case "bio":
			errs.addAll(field, validateOptional(val, maxBioLen))
		case "role":
			errs.addAll(field, validateRole(val))
		}
		in.fields[field] = val
	}

	if !partial {
		for _, field := range required {
			if !p.has(field) {
				errs.add(field, msgRequired)
			}
		}
	}
	return in, errs
}

// apply copies the parsed fields onto u.
func (in userInput) apply(u *models.User) {
	for field, val := range in.fields {
		switch field {
		case "username":
			u.Username = val
		case "email":
			u.Email = val
		case "first_name":
			u.FirstName = val
		case "last_name":
			u.LastName = val
		case "bio":
			u.Bio = val
		case "role":
			u.Role = models.Role(val)
		}
	}
}

var (
	adminUserFields    = []string{"username", "email", "first_name", "last_name", "bio", "role"}
	requiredUserFields = []string{"username", "email"}
	// Role and email are not editable through /users/me/.
	selfUserFields = []string{"username", "first_name", "last_name", "bio"}
)

// List returns users ordered by id. ?search= matches a username exactly.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	number, page, ok := h.pager.page(w, r)
	if !ok {
		return
	}

	users, total, err := h.users.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		serverError(w, "list users failed", err)
		return
	}
	results := make([]userJSON, 0, len(users))
	for i := range users {
		results = append(results, newUserJSON(&users[i]))
	}
	h.pager.write(w, r, number, total, results)
}

// Create adds a user. The new user obtains a token through signup with the
// same username and email.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireStaff(w, r)
	if !ok {
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	in, errs := parseUser(p, adminUserFields, requiredUserFields, false)
	if errs.any() {
		badRequest(w, errs)
		return
	}

	u := &models.User{Role: models.RoleUser}
	in.apply(u)
	created, err := h.users.Create(r.Context(), u)
	if err != nil {
		writeStoreError(w, "create user failed", err)
		return
	}

	slog.Info("user created", "admin", admin.Username, "new_user", created.Username, "role", created.Role)
	writeJSON(w, http.StatusCreated, newUserJSON(created))
}

// lookup resolves {username}, writing a 404 when it does not exist.
func (h *Users) lookup(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		serverError(w, "get user failed", err)
		return nil, false
	}
	if u == nil {
		notFound(w)
		return nil, false
	}
	return u, true
}

// Get returns one user by username.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newUserJSON(u))
}

// Update handles PUT and PATCH of any user by an admin.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireStaff(w, r); !ok {
		return
	}
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.save(w, r, u, adminUserFields, r.Method == http.MethodPatch)
}

// Delete removes a user with their reviews and comments.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireStaff(w, r)
	if !ok {
		return
	}
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), u.ID); err != nil {
		serverError(w, "delete user failed", err)
		return
	}
	slog.Info("user deleted", "admin", admin.Username, "user", u.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the requester's own profile.
func (h *Users) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, newUserJSON(u))
}

// UpdateMe applies a partial update to the requester's profile. Role and
// email in the payload are ignored.
func (h *Users) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromCtx(r.Context())
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}
	cp := *u
	h.save(w, r, &cp, selfUserFields, true)
}

// save parses a user write restricted to allowed, stores it and echoes
// the result.
func (h *Users) save(w http.ResponseWriter, r *http.Request, u *models.User, allowed []string, partial bool) {
	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	in, errs := parseUser(p, allowed, requiredUserFields, partial)
	if errs.any() {
		badRequest(w, errs)
		return
	}

	in.apply(u)
	if err := h.users.Update(r.Context(), u); err != nil {
		writeStoreError(w, "update user failed", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserJSON(u))
}
