// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// ReservedUsername cannot be registered: it names the self-profile endpoint.
const ReservedUsername = "me"

// User is a registered account. There is no password: users authenticate by
// exchanging an emailed confirmation code for a bearer token.
type User struct {
	ID          int64      `db:"id"`
	Username    string     `db:"username"`
	Email       string     `db:"email"`
	FirstName   string     `db:"first_name"`
	LastName    string     `db:"last_name"`
	Bio         string     `db:"bio"`
	Role        Role       `db:"role"`
	IsSuperuser bool       `db:"is_superuser"`
	Confirmed   bool       `db:"confirmed"`
	LastLogin   *time.Time `db:"last_login"`
	DateJoined  time.Time  `db:"date_joined"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator returns true if the user has the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// IsStaff returns true for admins and superusers.
func (u *User) IsStaff() bool {
	return u.IsAdmin() || u.IsSuperuser
}

// CanModerate returns true if the user may edit or delete content written
// by someone else.
func (u *User) CanModerate() bool {
	return u.IsStaff() || u.IsModerator()
}
