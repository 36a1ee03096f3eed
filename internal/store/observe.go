// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "yamdb/internal/store"

// slowQuery is the duration above which a store operation is logged.
const slowQuery = 200 * time.Millisecond

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	queryDuration, _ = meter.Float64Histogram("yamdb.store.duration",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500),
	)
	queryErrors, _ = meter.Int64Counter("yamdb.store.errors",
		metric.WithDescription("Store operations that returned an error"),
		metric.WithUnit("{error}"),
	)
)

// observe starts a span for a store operation. The returned function ends
// the span and records metrics; call it with the operation's final error:
//
//	ctx, done := observe(ctx, "titles.list")
//	defer func() { done(err) }()
func observe(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.system", "postgresql")),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		attrs := metric.WithAttributes(attribute.String("db.operation", op))
		queryDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

		if err != nil {
			queryErrors.Add(ctx, 1, attrs)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if elapsed > slowQuery {
			slog.Warn("slow store operation", "op", op, "duration", elapsed.String())
		}
		span.End()
	}
}
