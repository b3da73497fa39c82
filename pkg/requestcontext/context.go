// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and audit code read them without
// importing net/http. Tests inject them directly:
//
//	ctx = requestcontext.WithActorID(ctx, "clerk-17")
//	ctx = requestcontext.WithRequestID(ctx, "req-abc")
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	actorIDKey     struct{}
	requestTimeKey struct{}
)

// WithRequestID attaches the correlation ID assigned by the request-id
// middleware.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithActorID attaches the authenticated human actor (clerk) performing the
// request. Used by the HITL override audit trail.
func WithActorID(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actor)
}

// ActorID returns the authenticated actor, or "" when the request was not
// clerk-authenticated.
func ActorID(ctx context.Context) string {
	actor, _ := ctx.Value(actorIDKey{}).(string)
	return actor
}

// WithTime pins the request time; tests use it to make timestamps
// deterministic.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
