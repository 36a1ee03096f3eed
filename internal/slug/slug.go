// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug validates and derives the slugs that identify categories
// and genres in URLs.
package slug

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLen is the longest slug accepted.
const MaxLen = 50

var (
	// valid is the accepted alphabet: ASCII letters, digits, '-' and '_'.
	valid = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	// nonSlug matches anything Generate drops.
	nonSlug = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Valid reports whether s is a non-empty slug of at most MaxLen
// characters.
func Valid(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= MaxLen && valid.MatchString(s)
}

// Generate derives a slug from a display name.
// Example: "Science Fiction!" → "science-fiction"
func Generate(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	result = nonSlug.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLen {
		result = strings.TrimRight(result[:MaxLen], "-")
	}
	return result
}
