// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces rate limit counters in Valkey.
const keyPrefix = "ratelimit:"

// RateLimiter provides per-IP fixed-window rate limiting with counters
// kept in Valkey, so the limit holds across server instances.
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int           // max requests per window
	window time.Duration // window length
	now    func() time.Time
}

// NewRateLimiter creates a rate limiter that allows limit requests per
// window for each client IP. scope separates independent limiters that
// share one Valkey.
func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// allow counts a request for key and reports whether it is within the
// limit, along with the time left in the current window.
func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := rl.now()
	slot := now.UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%s:%d", keyPrefix, rl.scope, key, slot)
	remaining := time.Duration((slot+1)*int64(rl.window) - now.UnixNano())

	n, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			return true, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(rl.limit), remaining, nil
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
// When Valkey is unavailable requests are let through and a warning is
// logged.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry, err := rl.allow(r.Context(), clientIP(r))
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err, "scope", rl.scope)
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeDetail(w, http.StatusTooManyRequests, "Request was throttled.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address the limiter keys on. Only RemoteAddr is
// used; forwarded headers count only after chi's RealIP middleware has
// rewritten RemoteAddr behind a trusted proxy. Anything that is not an IP
// shares one bucket so the key length stays bounded.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return "unknown"
}
