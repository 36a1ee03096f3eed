// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements passwordless authentication: confirmation codes
// mailed at signup, and bearer tokens issued in exchange for them.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key derivation labels. Each purpose gets its own key so a confirmation
// code secret can never be used to sign a token and vice versa.
const (
	codeKeyLabel  = "yamdb confirmation code"
	tokenKeyLabel = "yamdb access token"
)

const keySize = 32

// deriveKey expands the application secret into a purpose-bound key.
func deriveKey(secret, label string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("derive key: empty secret")
	}
	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(label)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
