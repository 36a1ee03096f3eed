// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"testing"
	"time"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid", "ada", false},
		{"allowed punctuation", "ada.l@x+y-z_", false},
		{"empty", "", true},
		{"reserved", "me", true},
		{"space", "ada lovelace", true},
		{"slash", "ada/l", true},
		{"max length", strings.Repeat("a", 150), false},
		{"too long", strings.Repeat("a", 151), true},
		{"Me is not reserved", "Me", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := validateUsername(tt.input)
			if tt.wantError && len(msgs) == 0 {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && len(msgs) > 0 {
				t.Errorf("unexpected errors: %v", msgs)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		input     string
		wantError bool
	}{
		{"ada@example.com", false},
		{"a.b+c@mail.example.org", false},
		{"", true},
		{"ada", true},
		{"ada@", true},
		{"ada@localhost", true},
		{"Ada <ada@example.com>", true},
		{"ada@example.com.", true},
		{strings.Repeat("a", 250) + "@x.io", true},
	}

	for _, tt := range tests {
		msgs := validateEmail(tt.input)
		if tt.wantError != (len(msgs) > 0) {
			t.Errorf("validateEmail(%q) = %v, wantError %v", tt.input, msgs, tt.wantError)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		input     string
		wantError bool
	}{
		{"sci-fi", false},
		{"under_score9", false},
		{"", true},
		{"with space", true},
		{"ümlaut", true},
		{strings.Repeat("s", 50), false},
		{strings.Repeat("s", 51), true},
	}

	for _, tt := range tests {
		msgs := validateSlug(tt.input)
		if tt.wantError != (len(msgs) > 0) {
			t.Errorf("validateSlug(%q) = %v, wantError %v", tt.input, msgs, tt.wantError)
		}
	}
}

func TestValidateText(t *testing.T) {
	if msgs := validateText("   ", 0); len(msgs) != 1 || msgs[0] != msgBlank {
		t.Errorf("blank: got %v", msgs)
	}
	if msgs := validateText(strings.Repeat("x", 10_000), 0); len(msgs) != 0 {
		t.Errorf("unlimited: got %v", msgs)
	}
	if msgs := validateText("abcd", 3); len(msgs) != 1 {
		t.Errorf("over limit: got %v", msgs)
	}
	// Limits count characters, not bytes.
	if msgs := validateText("äöü", 3); len(msgs) != 0 {
		t.Errorf("multibyte: got %v", msgs)
	}
}

func TestValidateOptional(t *testing.T) {
	if msgs := validateOptional("", maxBioLen); len(msgs) != 0 {
		t.Errorf("empty bio: got %v", msgs)
	}
	if msgs := validateOptional(strings.Repeat("b", maxBioLen+1), maxBioLen); len(msgs) != 1 {
		t.Errorf("long bio: got %v", msgs)
	}
}

func TestValidateYear(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	if msgs := validateYear(2026, now); len(msgs) != 0 {
		t.Errorf("current year rejected: %v", msgs)
	}
	if msgs := validateYear(-500, now); len(msgs) != 0 {
		t.Errorf("ancient year rejected: %v", msgs)
	}
	if msgs := validateYear(2027, now); len(msgs) != 1 {
		t.Errorf("future year accepted: %v", msgs)
	}
}

func TestValidateScore(t *testing.T) {
	for _, score := range []int{1, 5, 10} {
		if msgs := validateScore(score); len(msgs) != 0 {
			t.Errorf("score %d rejected: %v", score, msgs)
		}
	}
	for _, score := range []int{0, 11, -1} {
		if msgs := validateScore(score); len(msgs) == 0 {
			t.Errorf("score %d accepted", score)
		}
	}
}

func TestValidateRole(t *testing.T) {
	for _, role := range []string{"user", "moderator", "admin"} {
		if msgs := validateRole(role); len(msgs) != 0 {
			t.Errorf("role %q rejected", role)
		}
	}
	for _, role := range []string{"", "Admin", "superuser"} {
		if msgs := validateRole(role); len(msgs) == 0 {
			t.Errorf("role %q accepted", role)
		}
	}
}
