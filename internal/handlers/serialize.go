// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"time"

	"yamdb/internal/models"
)

// JSON shapes of API resources.

type termJSON struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type titleJSON struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Year        int        `json:"year"`
	Rating      *float64   `json:"rating"`
	Description *string    `json:"description"`
	Genre       []termJSON `json:"genre"`
	Category    *termJSON  `json:"category"`
}

// titleWriteJSON echoes a title write: genres and category by slug.
type titleWriteJSON struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

type reviewJSON struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Title   int64     `json:"title"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type commentJSON struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Review  int64     `json:"review"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

type userJSON struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func newTermJSON(name, slug string) termJSON {
	return termJSON{Name: name, Slug: slug}
}

func newTitleJSON(t *models.Title) titleJSON {
	out := titleJSON{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]termJSON, 0, len(t.Genres)),
	}
	for _, g := range t.Genres {
		out.Genre = append(out.Genre, newTermJSON(g.Name, g.Slug))
	}
	if t.Category != nil {
		c := newTermJSON(t.Category.Name, t.Category.Slug)
		out.Category = &c
	}
	return out
}

func newTitleWriteJSON(t *models.Title) titleWriteJSON {
	out := titleWriteJSON{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Genre:       t.GenreSlugs(),
	}
	if t.Category != nil {
		out.Category = &t.Category.Slug
	}
	return out
}

func newReviewJSON(r *models.Review) reviewJSON {
	return reviewJSON{
		ID:      r.ID,
		Author:  r.Author,
		Title:   r.TitleID,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}

func newCommentJSON(c *models.Comment) commentJSON {
	return commentJSON{
		ID:      c.ID,
		Author:  c.Author,
		Review:  c.ReviewID,
		Text:    c.Text,
		PubDate: c.PubDate,
	}
}

func newUserJSON(u *models.User) userJSON {
	return userJSON{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
