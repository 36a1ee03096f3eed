// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"yamdb/internal/access"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/store"
)

// Reviews groups the review and comment handlers. Both resources are
// nested under a title; comments additionally under a review of it.
type Reviews struct {
	titles   *store.TitleStore
	reviews  *store.ReviewStore
	comments *store.CommentStore
	pager    paginator
}

// NewReviews creates a new Reviews handler group.
func NewReviews(titles *store.TitleStore, reviews *store.ReviewStore, comments *store.CommentStore, pageSize int) *Reviews {
	return &Reviews{
		titles:   titles,
		reviews:  reviews,
		comments: comments,
		pager:    newPaginator(pageSize),
	}
}

// checkWrite applies the collection-level rule: reads are open, writes
// need an authenticated user. It writes the denial and returns false.
func checkWrite(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.UserFromCtx(r.Context())
	if d := access.AuthorOrStaffOrReadOnly(user, r.Method); !d.Allowed() {
		deny(w, d)
		return nil, false
	}
	return user, true
}

// checkObject applies the object-level rule for content by authorID.
func checkObject(w http.ResponseWriter, r *http.Request, authorID int64) bool {
	d := access.AuthorOrStaffOrReadOnlyObject(middleware.UserFromCtx(r.Context()), r.Method, authorID)
	if !d.Allowed() {
		deny(w, d)
		return false
	}
	return true
}

// titleScope resolves {title_id}, writing a 404 when it does not exist.
func (h *Reviews) titleScope(w http.ResponseWriter, r *http.Request) (int64, bool) {
	titleID, ok := pathID(w, r, "title_id")
	if !ok {
		return 0, false
	}
	exists, err := h.titles.Exists(r.Context(), titleID)
	if err != nil {
		serverError(w, "check title failed", err)
		return 0, false
	}
	if !exists {
		notFound(w)
		return 0, false
	}
	return titleID, true
}

// reviewScope resolves {title_id}/{review_id} with one combined lookup:
// the review must belong to the title.
func (h *Reviews) reviewScope(w http.ResponseWriter, r *http.Request) (*models.Review, bool) {
	titleID, ok := pathID(w, r, "title_id")
	if !ok {
		return nil, false
	}
	reviewID, ok := pathID(w, r, "review_id")
	if !ok {
		return nil, false
	}
	review, err := h.reviews.Find(r.Context(), titleID, reviewID)
	if err != nil {
		serverError(w, "get review failed", err)
		return nil, false
	}
	if review == nil {
		notFound(w)
		return nil, false
	}
	return review, true
}

// parseReview reads text and score. With partial set, absent fields are
// allowed.
func parseReview(p payload, partial bool) (text string, textSet bool, score int, scoreSet bool, errs fieldErrors) {
	errs = fieldErrors{}
	text, textSet = p.str("text", errs)
	if textSet {
		errs.addAll("text", validateText(text, 0))
	}
	score, scoreSet = p.integer("score", errs)
	if scoreSet {
		errs.addAll("score", validateScore(score))
	}
	if !partial {
		for _, field := range []string{"text", "score"} {
			if !p.has(field) {
				errs.add(field, msgRequired)
			}
		}
	}
	return text, textSet, score, scoreSet, errs
}

// --- Reviews ---

// ListReviews returns a title's reviews ordered by id.
func (h *Reviews) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := h.titleScope(w, r)
	if !ok {
		return
	}
	number, page, ok := h.pager.page(w, r)
	if !ok {
		return
	}

	reviews, total, err := h.reviews.List(r.Context(), titleID, page)
	if err != nil {
		serverError(w, "list reviews failed", err)
		return
	}
	results := make([]reviewJSON, 0, len(reviews))
	for i := range reviews {
		results = append(results, newReviewJSON(&reviews[i]))
	}
	h.pager.write(w, r, number, total, results)
}

// CreateReview adds the requester's review of a title. A second review of
// the same title by the same user is rejected.
func (h *Reviews) CreateReview(w http.ResponseWriter, r *http.Request) {
	user, ok := checkWrite(w, r)
	if !ok {
		return
	}
	titleID, ok := h.titleScope(w, r)
	if !ok {
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	text, _, score, _, errs := parseReview(p, false)
	if errs.any() {
		badRequest(w, errs)
		return
	}

	exists, err := h.reviews.ExistsFor(r.Context(), titleID, user.ID)
	if err != nil {
		serverError(w, "check review failed", err)
		return
	}
	if exists {
		badRequest(w, fieldErrors{store.NonFieldErrors: {conflictMessages["reviews_author_title_key"]}})
		return
	}

	review, err := h.reviews.Create(r.Context(), &models.Review{
		AuthorID: user.ID,
		TitleID:  titleID,
		Text:     text,
		Score:    score,
	})
	if err != nil {
		writeStoreError(w, "create review failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, newReviewJSON(review))
}

// GetReview returns one review of a title.
func (h *Reviews) GetReview(w http.ResponseWriter, r *http.Request) {
	review, ok := h.reviewScope(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newReviewJSON(review))
}

// UpdateReview handles PUT and PATCH by the author or a moderator.
func (h *Reviews) UpdateReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := checkWrite(w, r); !ok {
		return
	}
	review, ok := h.reviewScope(w, r)
	if !ok {
		return
	}
	if !checkObject(w, r, review.AuthorID) {
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	text, textSet, score, scoreSet, errs := parseReview(p, r.Method == http.MethodPatch)
	if errs.any() {
		badRequest(w, errs)
		return
	}
	if textSet {
		review.Text = text
	}
	if scoreSet {
		review.Score = score
	}

	if err := h.reviews.Update(r.Context(), review); err != nil {
		serverError(w, "update review failed", err)
		return
	}
	writeJSON(w, http.StatusOK, newReviewJSON(review))
}

// DeleteReview removes a review and its comments.
func (h *Reviews) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := checkWrite(w, r); !ok {
		return
	}
	review, ok := h.reviewScope(w, r)
	if !ok {
		return
	}
	if !checkObject(w, r, review.AuthorID) {
		return
	}

	if err := h.reviews.Delete(r.Context(), review.ID); err != nil {
		serverError(w, "delete review failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comments ---

// parseComment reads the comment text, which is always required.
func parseComment(p payload, partial bool) (text string, textSet bool, errs fieldErrors) {
	errs = fieldErrors{}
	text, textSet = p.str("text", errs)
	if textSet {
		errs.addAll("text", validateText(text, 0))
	}
	if !partial && !p.has("text") {
		errs.add("text", msgRequired)
	}
	return text, textSet, errs
}

// commentScope resolves the review scope and then {comment_id} within it.
func (h *Reviews) commentScope(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	review, ok := h.reviewScope(w, r)
	if !ok {
		return nil, false
	}
	commentID, ok := pathID(w, r, "comment_id")
	if !ok {
		return nil, false
	}
	comment, err := h.comments.Find(r.Context(), review.ID, commentID)
	if err != nil {
		serverError(w, "get comment failed", err)
		return nil, false
	}
	if comment == nil {
		notFound(w)
		return nil, false
	}
	return comment, true
}

// ListComments returns a review's comments, newest first.
func (h *Reviews) ListComments(w http.ResponseWriter, r *http.Request) {
	review, ok := h.reviewScope(w, r)
	if !ok {
		return
	}
	number, page, ok := h.pager.page(w, r)
	if !ok {
		return
	}

	comments, total, err := h.comments.List(r.Context(), review.ID, page)
	if err != nil {
		serverError(w, "list comments failed", err)
		return
	}
	results := make([]commentJSON, 0, len(comments))
	for i := range comments {
		results = append(results, newCommentJSON(&comments[i]))
	}
	h.pager.write(w, r, number, total, results)
}

// CreateComment adds the requester's comment to a review.
func (h *Reviews) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := checkWrite(w, r)
	if !ok {
		return
	}
	review, ok := h.reviewScope(w, r)
	if !ok {
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	text, _, errs := parseComment(p, false)
	if errs.any() {
		badRequest(w, errs)
		return
	}

	comment, err := h.comments.Create(r.Context(), &models.Comment{
		AuthorID: user.ID,
		ReviewID: review.ID,
		Text:     text,
	})
	if err != nil {
		writeStoreError(w, "create comment failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, newCommentJSON(comment))
}

// GetComment returns one comment.
func (h *Reviews) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.commentScope(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCommentJSON(comment))
}

// UpdateComment handles PUT and PATCH by the author or a moderator.
func (h *Reviews) UpdateComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := checkWrite(w, r); !ok {
		return
	}
	comment, ok := h.commentScope(w, r)
	if !ok {
		return
	}
	if !checkObject(w, r, comment.AuthorID) {
		return
	}

	p, ok := readPayload(w, r)
	if !ok {
		return
	}
	text, textSet, errs := parseComment(p, r.Method == http.MethodPatch)
	if errs.any() {
		badRequest(w, errs)
		return
	}
	if textSet {
		comment.Text = text
	}

	if err := h.comments.Update(r.Context(), comment); err != nil {
		serverError(w, "update comment failed", err)
		return
	}
	writeJSON(w, http.StatusOK, newCommentJSON(comment))
}

// DeleteComment removes a comment.
func (h *Reviews) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if _, ok := checkWrite(w, r); !ok {
		return
	}
	comment, ok := h.commentScope(w, r)
	if !ok {
		return
	}
	if !checkObject(w, r, comment.AuthorID) {
		return
	}

	if err := h.comments.Delete(r.Context(), comment.ID); err != nil {
		serverError(w, "delete comment failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
