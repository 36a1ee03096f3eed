// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"yamdb/internal/access"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/store"
)

// Catalog groups the category, genre and title handlers.
type Catalog struct {
	categories *store.CategoryStore
	genres     *store.GenreStore
	titles     *store.TitleStore
	pager      paginator
	now        func() time.Time
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(categories *store.CategoryStore, genres *store.GenreStore, titles *store.TitleStore, pageSize int) *Catalog {
	return &Catalog{
		categories: categories,
		genres:     genres,
		titles:     titles,
		pager:      newPaginator(pageSize),
		now:        time.Now,
	}
}

// --- Categories and genres ---

// termStore is the part of CategoryStore and GenreStore the handlers use.
type termStore[T any] interface {
	List(ctx context.Context, search string, page store.Page) ([]T, int, error)
	Create(ctx context.Context, name, slug string) (*T, error)
	Delete(ctx context.Context, slug string) (bool, error)
}

func listTerms[T any](w http.ResponseWriter, r *http.Request, pager paginator, s termStore[T], toJSON func(*T) termJSON) {
	number, page, ok := pager.page(w, r)
	if !ok {
		return
	}

	items, total, err := s.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		serverError(w, "list terms failed", err)
		return
	}

	results := make([]termJSON, 0, len(items))
	for i := range items {
		results = append(results, toJSON(&items[i]))
	}
	pager.write(w, r, number, total, results)
}

func createTerm[T any](w http.ResponseWriter, r *http.Request, s termStore[T], toJSON func(*T) termJSON) {
	if d := access.SuperOrReadOnly(middleware.UserFromCtx(r.Context()), r.Method); !d.Allowed() {
		deny(w, d)
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}

	errs := fieldErrors{}
	name, hasName := p.str("name", errs)
	slug, hasSlug := p.str("slug", errs)
	if !p.has("name") {
		errs.add("name", msgRequired)
	} else if hasName {
		errs.addAll("name", validateText(name, maxTermNameLen))
	}
	if !p.has("slug") {
		errs.add("slug", msgRequired)
	} else if hasSlug {
		errs.addAll("slug", validateSlug(slug))
	}
	if errs.any() {
		badRequest(w, errs)
		return
	}

	item, err := s.Create(r.Context(), name, slug)
	if err != nil {
		writeStoreError(w, "create term failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toJSON(item))
}

type termDeleter interface {
	Delete(ctx context.Context, slug string) (bool, error)
}

func deleteTerm(w http.ResponseWriter, r *http.Request, s termDeleter) {
	if d := access.SuperOrReadOnly(middleware.UserFromCtx(r.Context()), r.Method); !d.Allowed() {
		deny(w, d)
		return
	}

	ok, err := s.Delete(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		serverError(w, "delete term failed", err)
		return
	}
	if !ok {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func categoryJSON(c *models.Category) termJSON { return newTermJSON(c.Name, c.Slug) }
func genreJSON(g *models.Genre) termJSON       { return newTermJSON(g.Name, g.Slug) }

// ListCategories returns categories ordered by name. ?search= filters by
// name.
func (c *Catalog) ListCategories(w http.ResponseWriter, r *http.Request) {
	listTerms(w, r, c.pager, c.categories, categoryJSON)
}

// CreateCategory adds a category. Admins and superusers only.
func (c *Catalog) CreateCategory(w http.ResponseWriter, r *http.Request) {
	createTerm(w, r, c.categories, categoryJSON)
}

// DeleteCategory removes a category by slug. Its titles are kept.
func (c *Catalog) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	deleteTerm(w, r, c.categories)
}

// ListGenres returns genres ordered by name.
func (c *Catalog) ListGenres(w http.ResponseWriter, r *http.Request) {
	listTerms(w, r, c.pager, c.genres, genreJSON)
}

// CreateGenre adds a genre.
func (c *Catalog) CreateGenre(w http.ResponseWriter, r *http.Request) {
	createTerm(w, r, c.genres, genreJSON)
}

// DeleteGenre removes a genre by slug.
func (c *Catalog) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	deleteTerm(w, r, c.genres)
}

// --- Titles ---

// pathID parses an integer path parameter. Malformed ids are treated as
// not found.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id < 1 {
		notFound(w)
		return 0, false
	}
	return id, true
}

// ListTitles returns titles ordered by name. Filters: genre and category
// (slugs), year, and name (case-insensitive substring).
func (c *Catalog) ListTitles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TitleFilter{
		Genre:    q.Get("genre"),
		Category: q.Get("category"),
		Name:     q.Get("name"),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, fieldErrors{"year": {"Enter a number."}})
			return
		}
		filter.Year = &year
	}

	number, page, ok := c.pager.page(w, r)
	if !ok {
		return
	}

	titles, total, err := c.titles.List(r.Context(), filter, page)
	if err != nil {
		serverError(w, "list titles failed", err)
		return
	}

	results := make([]titleJSON, 0, len(titles))
	for i := range titles {
		results = append(results, newTitleJSON(&titles[i]))
	}
	c.pager.write(w, r, number, total, results)
}

// GetTitle returns one title with its rating.
func (c *Catalog) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}

	title, err := c.titles.FindByID(r.Context(), id)
	if err != nil {
		serverError(w, "get title failed", err)
		return
	}
	if title == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, newTitleJSON(title))
}

// titleInput is a parsed title write. Set flags record which fields the
// request carried so PATCH can leave the rest untouched.
type titleInput struct {
	name        string
	nameSet     bool
	year        int
	yearSet     bool
	description *string
	descSet     bool
	genres      []string
	genresSet   bool
	category    *string
	categorySet bool
}

// parseTitle reads a title write payload. With partial set, absent fields
// are allowed.
func (c *Catalog) parseTitle(p payload, partial bool) (titleInput, fieldErrors) {
	errs := fieldErrors{}
	var in titleInput

	in.name, in.nameSet = p.str("name", errs)
	if in.nameSet {
		errs.addAll("name", validateText(in.name, maxTitleNameLen))
	}

	in.year, in.yearSet = p.integer("year", errs)
	if in.yearSet {
		errs.addAll("year", validateYear(in.year, c.now()))
	}

	in.description, in.descSet = p.optStr("description", errs)
	in.genres, in.genresSet = p.strList("genre", errs)
	in.category, in.categorySet = p.optStr("category", errs)

	if !partial {
		for _, field := range []string{"name", "year", "genre", "category"} {
			if !p.has(field) {
				errs.add(field, msgRequired)
			}
		}
	}
	return in, errs
}

func slugMissing(slug string) string {
	return fmt.Sprintf("Object with slug=%s does not exist.", slug)
}

// resolveRefs looks up the category and genre slugs of in. Unknown slugs
// are recorded in errs.
func (c *Catalog) resolveRefs(ctx context.Context, in titleInput, errs fieldErrors) (categoryID *int64, genreIDs []int64, err error) {
	if in.categorySet && in.category != nil {
		cat, err := c.categories.FindBySlug(ctx, *in.category)
		if err != nil {
			return nil, nil, err
		}
		if cat == nil {
			errs.add("category", slugMissing(*in.category))
		} else {
			categoryID = &cat.ID
		}
	}

	if in.genresSet {
		found, err := c.genres.FindBySlugs(ctx, in.genres)
		if err != nil {
			return nil, nil, err
		}
		bySlug := make(map[string]int64, len(found))
		for _, g := range found {
			bySlug[g.Slug] = g.ID
		}
		seen := make(map[int64]bool, len(found))
		for _, slug := range in.genres {
			id, ok := bySlug[slug]
			if !ok {
				errs.add("genre", slugMissing(slug))
				continue
			}
			if !seen[id] {
				seen[id] = true
				genreIDs = append(genreIDs, id)
			}
		}
	}
	return categoryID, genreIDs, nil
}

// CreateTitle adds a title. Admins and superusers only.
func (c *Catalog) CreateTitle(w http.ResponseWriter, r *http.Request) {
	if d := access.SuperOrReadOnly(middleware.UserFromCtx(r.Context()), r.Method); !d.Allowed() {
		deny(w, d)
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	in, errs := c.parseTitle(p, false)
	categoryID, genreIDs, err := c.resolveRefs(r.Context(), in, errs)
	if err != nil {
		serverError(w, "resolve title references failed", err)
		return
	}
	if errs.any() {
		badRequest(w, errs)
		return
	}

	created, err := c.titles.Create(r.Context(), &models.Title{
		Name:        in.name,
		Year:        in.year,
		Description: in.description,
		CategoryID:  categoryID,
	}, genreIDs)
	if err != nil {
		writeStoreError(w, "create title failed", err)
		return
	}
	writeTitle(w, http.StatusCreated, created, nil)
}

// UpdateTitle handles PUT (full) and PATCH (partial) updates.
func (c *Catalog) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	if d := access.SuperOrReadOnly(middleware.UserFromCtx(r.Context()), r.Method); !d.Allowed() {
		deny(w, d)
		return
	}

	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}
	title, err := c.titles.FindByID(r.Context(), id)
	if err != nil {
		serverError(w, "get title failed", err)
		return
	}
	if title == nil {
		notFound(w)
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	in, errs := c.parseTitle(p, r.Method == http.MethodPatch)
	categoryID, genreIDs, err := c.resolveRefs(r.Context(), in, errs)
	if err != nil {
		serverError(w, "resolve title references failed", err)
		return
	}
	if errs.any() {
		badRequest(w, errs)
		return
	}

	if in.nameSet {
		title.Name = in.name
	}
	if in.yearSet {
		title.Year = in.year
	}
	if in.descSet {
		title.Description = in.description
	}
	if in.categorySet {
		title.CategoryID = categoryID
	}

	if err := c.titles.Update(r.Context(), title, genreIDs, in.genresSet); err != nil {
		writeStoreError(w, "update title failed", err)
		return
	}

	updated, err := c.titles.FindByID(r.Context(), id)
	writeTitle(w, http.StatusOK, updated, err)
}

// writeTitle answers a title write with the stored row. A title deleted
// before it could be read back is a 404.
func writeTitle(w http.ResponseWriter, status int, t *models.Title, err error) {
	switch {
	case err != nil:
		serverError(w, "reload title failed", err)
	case t == nil:
		notFound(w)
	default:
		writeJSON(w, status, newTitleWriteJSON(t))
	}
}

// DeleteTitle removes a title with its reviews and comments.
func (c *Catalog) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	if d := access.SuperOrReadOnly(middleware.UserFromCtx(r.Context()), r.Method); !d.Allowed() {
		deny(w, d)
		return
	}

	id, ok := pathID(w, r, "title_id")
	if !ok {
		return
	}
	deleted, err := c.titles.Delete(r.Context(), id)
	if err != nil {
		serverError(w, "delete title failed", err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
