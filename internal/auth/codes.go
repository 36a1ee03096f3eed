// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"yamdb/internal/models"
)

// Codes issues and checks confirmation codes. A code is a TOTP value whose
// secret is derived from the user's current state, so any change to that
// state (confirming, logging in, changing email) invalidates outstanding
// codes without storing them.
type Codes struct {
	key  []byte
	opts totp.ValidateOpts
}

// NewCodes creates a code issuer keyed by secret. Codes stay valid for
// roughly one ttl either side of issue.
func NewCodes(secret string, ttl time.Duration) (*Codes, error) {
	key, err := deriveKey(secret, codeKeyLabel)
	if err != nil {
		return nil, err
	}
	period := uint(ttl / time.Second)
	if period == 0 {
		period = 1
	}
	return &Codes{
		key: key,
		opts: totp.ValidateOpts{
			Period:    period,
			Skew:      1,
			Digits:    otp.DigitsEight,
			Algorithm: otp.AlgorithmSHA1,
		},
	}, nil
}

// secretFor returns the base32 TOTP secret bound to u's state.
func (c *Codes) secretFor(u *models.User) string {
	var lastLogin int64
	if u.LastLogin != nil {
		lastLogin = u.LastLogin.UnixMicro()
	}

	mac := hmac.New(sha256.New, c.key)
	fmt.Fprintf(mac, "%d\x00%s\x00%s\x00%t\x00%d", u.ID, u.Username, u.Email, u.Confirmed, lastLogin)
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}

// Generate returns the code for u at time now.
func (c *Codes) Generate(u *models.User, now time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(c.secretFor(u), now, c.opts)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return code, nil
}

// Validate reports whether code is a current code for u.
func (c *Codes) Validate(u *models.User, code string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, c.secretFor(u), now, c.opts)
	return err == nil && ok
}
