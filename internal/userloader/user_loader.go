package userloader

import (
	"context"
	"fmt"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

// UserLoader batches directory lookups issued while assembling history
// entries, so a burst of ingests against the same few users costs one query.
type UserLoader struct {
	Loader *dataloader.Loader
}

// New creates a loader backed by the user repository.
func New(repo repository.UserRepository) *UserLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		// One result per key, in key order. A key that fails to parse gets its
		// own error and never blocks the rest of the batch.
		results := make([]*dataloader.Result, len(keys))

		ids := make([]uuid.UUID, 0, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid UUID: %w", err)}
				continue
			}
			ids = append(ids, id)
		}

		// Fetch users in batch
		users, err := repo.GetByIDs(ctx, ids)
		if err != nil {
			for i := range results {
				if results[i] == nil {
					results[i] = &dataloader.Result{Error: err}
				}
			}
			return results
		}

		// Map UUID -> user for ordering
		userMap := make(map[uuid.UUID]domain.User)
		for _, u := range users {
			userMap[u.ID] = u
		}

		for i, k := range keys {
			if results[i] != nil {
				continue
			}
			id, _ := uuid.Parse(k.String())
			if u, ok := userMap[id]; ok {
				results[i] = &dataloader.Result{Data: u}
			} else {
				results[i] = &dataloader.Result{Data: nil}
			}
		}

		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &UserLoader{Loader: loader}
}

// Load fetches one user through the batch window. The boolean is false when
// the id matched no directory entry.
func (l *UserLoader) Load(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	thunk := l.Loader.Load(ctx, dataloader.StringKey(id.String()))
	data, err := thunk()
	if err != nil {
		return domain.User{}, false, err
	}
	user, ok := data.(domain.User)
	if !ok {
		return domain.User{}, false, nil
	}
	return user, true, nil
}
