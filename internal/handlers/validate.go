// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb/internal/models"
	"yamdb/internal/slug"
)

// Field limits.
const (
	maxUsernameLen  = 150
	maxEmailLen     = 254
	maxPersonLen    = 150 // first_name, last_name
	maxBioLen       = 500
	maxTermNameLen  = 256 // category and genre names
	maxTitleNameLen = 200
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

func tooLong(max int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", max)
}

// validateUsername returns the problems with a username, if any.
func validateUsername(s string) []string {
	var msgs []string
	switch {
	case s == "":
		return []string{msgBlank}
	case utf8.RuneCountInString(s) > maxUsernameLen:
		msgs = append(msgs, tooLong(maxUsernameLen))
	}
	if !usernameRe.MatchString(s) {
		msgs = append(msgs, "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	if s == models.ReservedUsername {
		msgs = append(msgs, `The username "me" is reserved.`)
	}
	return msgs
}

// validateEmail accepts a bare address such as ada@example.com.
func validateEmail(s string) []string {
	if s == "" {
		return []string{msgBlank}
	}
	if utf8.RuneCountInString(s) > maxEmailLen {
		return []string{tooLong(maxEmailLen)}
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return []string{"Enter a valid email address."}
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return []string{"Enter a valid email address."}
	}
	return nil
}

// validateSlug checks a category or genre slug.
func validateSlug(s string) []string {
	if s == "" {
		return []string{msgBlank}
	}
	var msgs []string
	if utf8.RuneCountInString(s) > slug.MaxLen {
		msgs = append(msgs, tooLong(slug.MaxLen))
	}
	if !slug.Valid(s) && len(msgs) == 0 {
		msgs = append(msgs, "Enter a valid slug consisting of letters, numbers, underscores or hyphens.")
	}
	return msgs
}

// validateText checks a required free-text field with an optional limit
// (max <= 0 means unlimited).
func validateText(s string, max int) []string {
	if strings.TrimSpace(s) == "" {
		return []string{msgBlank}
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return []string{tooLong(max)}
	}
	return nil
}

// validateOptional checks the length of a field that may be blank.
func validateOptional(s string, max int) []string {
	if utf8.RuneCountInString(s) > max {
		return []string{tooLong(max)}
	}
	return nil
}

// validateYear rejects years in the future relative to now.
func validateYear(year int, now time.Time) []string {
	if year > now.Year() {
		return []string{fmt.Sprintf("Year %d is later than the current year.", year)}
	}
	return nil
}

// validateScore accepts integers from models.MinScore to models.MaxScore.
func validateScore(score int) []string {
	if score < models.MinScore || score > models.MaxScore {
		return []string{fmt.Sprintf("Score must be between %d and %d.", models.MinScore, models.MaxScore)}
	}
	return nil
}

func validateRole(s string) []string {
	if !models.Role(s).Valid() {
		return []string{fmt.Sprintf("%q is not a valid choice.", s)}
	}
	return nil
}
