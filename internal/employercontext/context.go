package employercontext

import (
	"context"
	"strings"
)

type employerKey struct{}
type actorKey struct{}

// ActorTypeEmployer and ActorTypeSystem are the audit actor kinds.
const (
	ActorTypeEmployer = "employer"
	ActorTypeSystem   = "system"
)

// WithEmployerID scopes the request to an employer.
func WithEmployerID(ctx context.Context, employerID string) context.Context {
	return context.WithValue(ctx, employerKey{}, strings.TrimSpace(employerID))
}

// EmployerIDFromContext returns the scoped employer id, if set.
func EmployerIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(employerKey{}).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// WithActorID records the acting principal.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, strings.TrimSpace(actorID))
}

func ActorIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(actorKey{}).(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
