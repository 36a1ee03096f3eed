// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"yamdb/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Field error messages.
const (
	msgRequired   = "This field is required."
	msgNotNull    = "This field may not be null."
	msgBlank      = "This field may not be blank."
	msgNotString  = "Not a valid string."
	msgNotInteger = "A valid integer is required."
	msgNotList    = "Expected a list of items."
)

// payload is a decoded JSON object body. Fields are decoded one at a time
// so that presence, null and type errors can be reported per field.
type payload map[string]json.RawMessage

// readPayload decodes the request body into a payload. An empty body is
// an empty object. On failure the error response is written and ok is
// false.
func readPayload(w http.ResponseWriter, r *http.Request) (p payload, ok bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return nil, false
		}
		writeDetail(w, http.StatusBadRequest, "Could not read request body.")
		return nil, false
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return payload{}, true
	}
	if body[0] != '{' {
		if !json.Valid(body) {
			writeDetail(w, http.StatusBadRequest, "JSON parse error.")
			return nil, false
		}
		badRequest(w, fieldErrors{store.NonFieldErrors: {"Invalid data. Expected a dictionary."}})
		return nil, false
	}

	if err := json.Unmarshal(body, &p); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return nil, false
	}
	return p, true
}

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p payload) isNull(key string) bool {
	raw, ok := p[key]
	return ok && string(raw) == "null"
}

// str reads a non-null string field. present is false when the key is
// absent or the value is invalid (an error is then recorded).
func (p payload) str(key string, errs fieldErrors) (val string, present bool) {
	raw, ok := p[key]
	if !ok {
		return "", false
	}
	if string(raw) == "null" {
		errs.add(key, msgNotNull)
		return "", false
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		// Numbers and booleans are accepted as their text, as form input is.
		if !isScalar(raw) {
			errs.add(key, msgNotString)
			return "", false
		}
		val = string(raw)
	}
	return val, true
}

// optStr reads a nullable string field. A null value yields (nil, true).
func (p payload) optStr(key string, errs fieldErrors) (val *string, present bool) {
	if p.isNull(key) {
		return nil, true
	}
	s, ok := p.str(key, errs)
	if !ok {
		return nil, false
	}
	return &s, true
}

// integer reads an integer field given as a JSON number or a numeric string.
func (p payload) integer(key string, errs fieldErrors) (val int, present bool) {
	raw, ok := p[key]
	if !ok {
		return 0, false
	}
	if string(raw) == "null" {
		errs.add(key, msgNotNull)
		return 0, false
	}

	text := string(raw)
	var s string
	if json.Unmarshal(raw, &s) == nil {
		text = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		errs.add(key, msgNotInteger)
		return 0, false
	}
	return int(f), true
}

// strList reads a list of strings.
func (p payload) strList(key string, errs fieldErrors) (val []string, present bool) {
	raw, ok := p[key]
	if !ok {
		return nil, false
	}
	if string(raw) == "null" {
		errs.add(key, msgNotNull)
		return nil, false
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		errs.add(key, msgNotList)
		return nil, false
	}
	if val == nil {
		val = []string{}
	}
	return val, true
}

func isScalar(raw json.RawMessage) bool {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch v.(type) {
	case float64, bool:
		return true
	}
	return false
}
