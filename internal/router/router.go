// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// YaMDb API. Every API route lives under /api/v1 and accepts paths with or
// without a trailing slash.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yamdb/internal/handlers"
	"yamdb/internal/middleware"
)

// Deps are the handler groups and collaborators the router mounts.
type Deps struct {
	Auth    *handlers.Auth
	Catalog *handlers.Catalog
	Reviews *handlers.Reviews
	Users   *handlers.Users

	Tokens    middleware.TokenVerifier
	UserStore middleware.UserFinder

	// AuthLimiter throttles signup and token exchange. Nil disables it.
	AuthLimiter *middleware.RateLimiter

	// TrustProxy rewrites RemoteAddr from forwarded headers.
	TrustProxy bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)
	r.Use(chimw.StripSlashes)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens, d.UserStore))

		r.Route("/auth", func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware)
			}
			r.Post("/signup", d.Auth.Signup)
			r.Post("/token", d.Auth.Token)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Catalog.ListCategories)
			r.Post("/", d.Catalog.CreateCategory)
			r.Delete("/{slug}", d.Catalog.DeleteCategory)
		})

		r.Route("/genres", func(r chi.Router) {
			r.Get("/", d.Catalog.ListGenres)
			r.Post("/", d.Catalog.CreateGenre)
			r.Delete("/{slug}", d.Catalog.DeleteGenre)
		})

		r.Route("/titles", func(r chi.Router) {
			r.Get("/", d.Catalog.ListTitles)
			r.Post("/", d.Catalog.CreateTitle)

			r.Route("/{title_id}", func(r chi.Router) {
				r.Get("/", d.Catalog.GetTitle)
				r.Put("/", d.Catalog.UpdateTitle)
				r.Patch("/", d.Catalog.UpdateTitle)
				r.Delete("/", d.Catalog.DeleteTitle)

				r.Route("/reviews", func(r chi.Router) {
					r.Get("/", d.Reviews.ListReviews)
					r.Post("/", d.Reviews.CreateReview)

					r.Route("/{review_id}", func(r chi.Router) {
						r.Get("/", d.Reviews.GetReview)
						r.Put("/", d.Reviews.UpdateReview)
						r.Patch("/", d.Reviews.UpdateReview)
						r.Delete("/", d.Reviews.DeleteReview)

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", d.Reviews.ListComments)
							r.Post("/", d.Reviews.CreateComment)
							r.Get("/{comment_id}", d.Reviews.GetComment)
							r.Put("/{comment_id}", d.Reviews.UpdateComment)
							r.Patch("/{comment_id}", d.Reviews.UpdateComment)
							r.Delete("/{comment_id}", d.Reviews.DeleteComment)
						})
					})
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", d.Users.List)
			r.Post("/", d.Users.Create)
			r.Get("/me", d.Users.Me)
			r.Patch("/me", d.Users.UpdateMe)
			r.Get("/{username}", d.Users.Get)
			r.Put("/{username}", d.Users.Update)
			r.Patch("/{username}", d.Users.Update)
			r.Delete("/{username}", d.Users.Delete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
