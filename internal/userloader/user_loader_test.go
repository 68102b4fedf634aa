package userloader

import (
	"context"
	"testing"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"
)

type stubUserRepo struct {
	users map[uuid.UUID]domain.User
	calls int
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return domain.User{}, repository.ErrNotFound
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	s.calls++
	var out []domain.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *stubUserRepo) FindMatching(ctx context.Context, query domain.UserQuery) ([]domain.User, error) {
	return nil, nil
}

func TestLoadBatchesLookups(t *testing.T) {
	known := domain.User{ID: uuid.New(), Name: "Dana", Email: "dana@example.com"}
	repo := &stubUserRepo{users: map[uuid.UUID]domain.User{known.ID: known}}
	loader := New(repo)

	ctx := context.Background()
	knownThunk := loader.Loader.Load(ctx, dataloader.StringKey(known.ID.String()))
	missThunk := loader.Loader.Load(ctx, dataloader.StringKey(uuid.New().String()))

	user, found, err := resolveThunk(knownThunk)
	if err != nil || !found || user.Name != "Dana" {
		t.Fatalf("known user not resolved: %+v %v %v", user, found, err)
	}
	_, found, err = resolveThunk(missThunk)
	if err != nil || found {
		t.Fatalf("miss should resolve to not-found, got found=%v err=%v", found, err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one batched fetch, got %d", repo.calls)
	}
}

func TestBatchIsolatesUnparsableKey(t *testing.T) {
	known := domain.User{ID: uuid.New(), Name: "Dana"}
	repo := &stubUserRepo{users: map[uuid.UUID]domain.User{known.ID: known}}
	loader := New(repo)

	ctx := context.Background()
	badThunk := loader.Loader.Load(ctx, dataloader.StringKey("not-a-uuid"))
	goodThunk := loader.Loader.Load(ctx, dataloader.StringKey(known.ID.String()))

	if _, err := badThunk(); err == nil {
		t.Fatalf("unparsable key should error")
	}
	user, found, err := resolveThunk(goodThunk)
	if err != nil || !found || user.ID != known.ID {
		t.Fatalf("good key in the same batch must still resolve: %+v %v %v", user, found, err)
	}
}

func TestLoadReturnsNotFoundForUnknownID(t *testing.T) {
	repo := &stubUserRepo{users: map[uuid.UUID]domain.User{}}
	loader := New(repo)

	_, found, err := loader.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("miss is not an error: %v", err)
	}
	if found {
		t.Fatalf("unknown id should report not found")
	}
}

func resolveThunk(thunk dataloader.Thunk) (domain.User, bool, error) {
	data, err := thunk()
	if err != nil {
		return domain.User{}, false, err
	}
	user, ok := data.(domain.User)
	return user, ok, nil
}
