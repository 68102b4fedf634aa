package repository

import (
	"context"
	"errors"

	"github.com/JaceG/dealbreaker-backend/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// HistoryRepository is the history store gateway. Entries are append-only;
// AppendAttachment is the single permitted mutation and touches nothing but
// the attachments column.
type HistoryRepository interface {
	Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.HistoryEntry, error)
	ListByFlag(ctx context.Context, profileID, flagID string) ([]domain.HistoryEntry, error)
	Query(ctx context.Context, clauses []domain.FilterClause) ([]domain.HistoryEntry, error)
	AppendAttachment(ctx context.Context, id uuid.UUID, attachment string) (domain.HistoryEntry, error)
}

// UserRepository is the user directory collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	FindMatching(ctx context.Context, query domain.UserQuery) ([]domain.User, error)
}
