package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const actorIDKey contextKey = "actorID"

// ContextWithActorID returns a new context that carries the authenticated actor.
func ContextWithActorID(ctx context.Context, id uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorIDKey, id)
}

// ActorIDFromContext retrieves the authenticated actor from the context, if any.
func ActorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	value := ctx.Value(actorIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ActorHeader carries the current actor identity, forwarded by the auth
// collaborator after it has verified the session token upstream.
const ActorHeader = "X-Actor-Id"

// Middleware copies the forwarded actor identity into the request context. A
// missing or malformed header means an anonymous request, never an error.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(ActorHeader))
		if raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(ContextWithActorID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
