package history

import (
	"context"
	"errors"
	"log"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/middleware"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/google/uuid"
)

// Resolver performs the best-effort directory lookups that denormalize
// identity data onto history entries. A failed or missed lookup degrades to
// empty values and is logged; it never blocks recording history, since
// unresolvable identities (guests, deleted accounts) are valid and common.
type Resolver struct {
	users repository.UserRepository
}

// NewResolver creates a resolver backed by the user directory.
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// ResolveActor returns the actor's display name and email, or empty strings
// when the id is absent or the lookup errors or misses.
func (r *Resolver) ResolveActor(ctx context.Context, actorID *uuid.UUID) (string, string) {
	if actorID == nil {
		return "", ""
	}

	user, found, err := r.lookup(ctx, *actorID)
	if err != nil {
		log.Printf("[HISTORY] Error fetching creator info: %v", err)
		return "", ""
	}
	if !found {
		return "", ""
	}
	return user.Name, user.Email
}

// ResolveSubject interprets profileID as a directory key and returns the
// owner's id, name, and email. A profile id that is not a directory key, or a
// failed lookup, yields a nil id and empty strings.
func (r *Resolver) ResolveSubject(ctx context.Context, profileID string) (*uuid.UUID, string, string) {
	id, err := uuid.Parse(profileID)
	if err != nil {
		return nil, "", ""
	}

	user, found, err := r.lookup(ctx, id)
	if err != nil {
		log.Printf("[HISTORY] Error fetching profile owner info: %v", err)
		return nil, "", ""
	}
	if !found {
		return nil, "", ""
	}
	return &user.ID, user.Name, user.Email
}

// lookup goes through the request-scoped batch loader when one is attached,
// falling back to the repository directly.
func (r *Resolver) lookup(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	if loader := middleware.UserLoaderFromContext(ctx); loader != nil {
		return loader.Load(ctx, id)
	}

	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return user, true, nil
}
