// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"yamdb/internal/store"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

const msgInvalidPage = "Invalid page."

// pageBody is the envelope of every paginated list response.
type pageBody struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// paginator implements page-number pagination with ?page=N.
type paginator struct {
	size int
}

func newPaginator(size int) paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return paginator{size: size}
}

// page parses ?page=N. It writes a 404 and returns ok=false for values
// that are not positive integers.
func (p paginator) page(w http.ResponseWriter, r *http.Request) (number int, window store.Page, ok bool) {
	number = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeDetail(w, http.StatusNotFound, msgInvalidPage)
			return 0, store.Page{}, false
		}
		number = n
	}
	return number, store.Page{Limit: p.size, Offset: (number - 1) * p.size}, true
}

// write sends one page of results. Pages past the end are a 404, except
// the first page which is always valid, even when empty.
func (p paginator) write(w http.ResponseWriter, r *http.Request, number, count int, results any) {
	if number > 1 && (number-1)*p.size >= count {
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	}

	body := pageBody{Count: count, Results: results}
	if number*p.size < count {
		body.Next = pageURL(r, number+1)
	}
	if number > 1 {
		body.Previous = pageURL(r, number-1)
	}
	writeJSON(w, http.StatusOK, body)
}

// pageURL builds the absolute URL of another page of the current request.
// Page 1 is linked without a page parameter.
func pageURL(r *http.Request, number int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}

	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}
