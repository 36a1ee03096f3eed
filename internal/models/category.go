// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category groups titles ("Books", "Films"). Titles keep existing when
// their category is deleted.
type Category struct {
	ID   int64  `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// Genre is attached to titles through the genre_titles join table.
type Genre struct {
	ID   int64  `db:"id" json:"-"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}
