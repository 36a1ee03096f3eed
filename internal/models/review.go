// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Score bounds for a review.
const (
	MinScore = 1
	MaxScore = 10
)

// Review is a user's scored opinion of a title. A user reviews a title at
// most once.
type Review struct {
	ID       int64     `db:"id"`
	AuthorID int64     `db:"author_id"`
	Author   string    `db:"author"` // username, joined on read
	TitleID  int64     `db:"title_id"`
	Text     string    `db:"text"`
	Score    int       `db:"score"`
	PubDate  time.Time `db:"pub_date"`
}

// Comment is a reply to a review.
type Comment struct {
	ID       int64     `db:"id"`
	AuthorID int64     `db:"author_id"`
	Author   string    `db:"author"`
	ReviewID int64     `db:"review_id"`
	Text     string    `db:"text"`
	PubDate  time.Time `db:"pub_date"`
}
