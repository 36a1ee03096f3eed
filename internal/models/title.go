// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Title is a reviewable work: a book, film, song and so on.
type Title struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Year        int     `db:"year"`
	Description *string `db:"description"`
	CategoryID  *int64  `db:"category_id"`

	// Populated by store reads. Rating is the mean review score computed
	// per query; it is nil when the title has no reviews and is never stored.
	Category *Category `db:"-"`
	Genres   []Genre   `db:"-"`
	Rating   *float64  `db:"-"`
}

// GenreSlugs returns the slugs of the title's genres in order.
func (t *Title) GenreSlugs() []string {
	slugs := make([]string, 0, len(t.Genres))
	for _, g := range t.Genres {
		slugs = append(slugs, g.Slug)
	}
	return slugs
}
