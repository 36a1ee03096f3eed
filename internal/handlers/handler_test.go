// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"yamdb/internal/auth"
	"yamdb/internal/database"
	"yamdb/internal/mail"
	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/store"
	"yamdb/internal/testdb"
)

// outbox is a mail.Sender that keeps messages in memory.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m)
	return nil
}

// lastCode returns the confirmation code of the newest message to addr.
func (o *outbox) lastCode(t *testing.T, addr string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == addr {
			code, ok := strings.CutPrefix(o.sent[i].Body, "Confirmation code: ")
			if !ok {
				t.Fatalf("unexpected mail body %q", o.sent[i].Body)
			}
			return strings.TrimSpace(code)
		}
	}
	t.Fatalf("no mail sent to %s", addr)
	return ""
}

// testDB opens the test database and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db := testdb.Open(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Users      *store.UserStore
	Categories *store.CategoryStore
	Genres     *store.GenreStore
	Titles     *store.TitleStore
	ReviewDB   *store.ReviewStore
	Comments   *store.CommentStore
	Outbox     *outbox
	Service    *auth.Service

	Auth    *Auth
	Catalog *Catalog
	Reviews *Reviews
	UserAPI *Users
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	genres := store.NewGenreStore(db)
	titles := store.NewTitleStore(db)
	reviews := store.NewReviewStore(db)
	comments := store.NewCommentStore(db)

	codes, err := auth.NewCodes("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodes: %v", err)
	}
	tokens, err := auth.NewTokens("handler-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	box := &outbox{}
	service := auth.NewService(users, box, codes, tokens)

	return &testEnv{
		DB:         db,
		Users:      users,
		Categories: categories,
		Genres:     genres,
		Titles:     titles,
		ReviewDB:   reviews,
		Comments:   comments,
		Outbox:     box,
		Service:    service,
		Auth:       NewAuth(service),
		Catalog:    NewCatalog(categories, genres, titles, 2),
		Reviews:    NewReviews(titles, reviews, comments, 2),
		UserAPI:    NewUsers(users, 2),
	}
}

var seq atomic.Int64

// uniq returns a name unique to this test run.
func uniq(prefix string) string {
	return fmt.Sprintf("%s%d%d", prefix, time.Now().UnixNano()%1e9, seq.Add(1))
}

// newUser inserts a user with the given role and removes it afterwards.
func (e *testEnv) newUser(t *testing.T, role models.Role) *models.User {
	t.Helper()

	name := uniq("h")
	u, err := e.Users.Create(context.Background(), &models.User{
		Username: name,
		Email:    name + "@handler-test.local",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec(`DELETE FROM users WHERE id = $1`, u.ID) })
	return u
}

// newTitle inserts a title without category or genres.
func (e *testEnv) newTitle(t *testing.T) *models.Title {
	t.Helper()

	title, err := e.Titles.Create(context.Background(), &models.Title{Name: uniq("Title "), Year: 1999}, nil)
	if err != nil {
		t.Fatalf("create title: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec(`DELETE FROM titles WHERE id = $1`, title.ID) })
	return title
}

// newReview inserts a review of title by author.
func (e *testEnv) newReview(t *testing.T, title *models.Title, author *models.User, score int) *models.Review {
	t.Helper()

	rv, err := e.ReviewDB.Create(context.Background(), &models.Review{
		AuthorID: author.ID,
		TitleID:  title.ID,
		Text:     "review text",
		Score:    score,
	})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}
	return rv
}

// call runs h against a request built from the arguments. body is encoded
// as JSON unless it is nil or a string. params are chi URL parameters as
// key, value pairs. A nil user makes an anonymous request.
func call(t *testing.T, h http.HandlerFunc, method, target string, body any, user *models.User, params ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if user != nil {
		ctx = middleware.WithUser(ctx, user)
	}

	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))
	return rec
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// wantStatus fails the test when the recorder has another status.
func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func idStr(v int64) string {
	return fmt.Sprint(v)
}
