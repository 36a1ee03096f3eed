// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access holds the permission predicates consulted by every
// mutating endpoint. Each predicate is a pure function of the acting user
// (nil for anonymous requests), the HTTP method and, for object-level
// checks, the object's author.
package access

import (
	"net/http"

	"yamdb/internal/models"
)

// Decision is the outcome of a permission check.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// Unauthenticated means the request needs credentials (401).
	Unauthenticated
	// Forbidden means the authenticated actor lacks the required role (403).
	Forbidden
)

// Allowed reports whether the decision permits the request.
func (d Decision) Allowed() bool {
	return d == Allow
}

// IsSafe reports whether the method only reads state.
func IsSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// deny picks 401 for anonymous actors and 403 for everyone else.
func deny(actor *models.User) Decision {
	if actor == nil {
		return Unauthenticated
	}
	return Forbidden
}

// AuthorOrStaffOrReadOnly is the collection-level check for reviews and
// comments: anyone may read, any authenticated user may write.
func AuthorOrStaffOrReadOnly(actor *models.User, method string) Decision {
	if IsSafe(method) || actor != nil {
		return Allow
	}
	return Unauthenticated
}

// AuthorOrStaffOrReadOnlyObject is the object-level check for reviews and
// comments: mutation is reserved to the author and to moderators, admins
// and superusers.
func AuthorOrStaffOrReadOnlyObject(actor *models.User, method string, authorID int64) Decision {
	if IsSafe(method) {
		return Allow
	}
	if actor == nil {
		return Unauthenticated
	}
	if actor.ID == authorID || actor.CanModerate() {
		return Allow
	}
	return Forbidden
}

// StaffOrSuper gates user management: admins and superusers only, for
// reads as well as writes.
func StaffOrSuper(actor *models.User) Decision {
	if actor != nil && actor.IsStaff() {
		return Allow
	}
	return deny(actor)
}

// SuperOrReadOnly guards categories, genres and titles: anyone may read,
// only admins and superusers may write.
func SuperOrReadOnly(actor *models.User, method string) Decision {
	if IsSafe(method) {
		return Allow
	}
	if actor != nil && actor.IsStaff() {
		return Allow
	}
	return deny(actor)
}
