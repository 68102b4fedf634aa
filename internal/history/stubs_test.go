package history

import (
	"context"
	"errors"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/google/uuid"
)

type stubHistoryRepo struct {
	appended    []domain.HistoryEntry
	queries     [][]domain.FilterClause
	byFlag      []domain.HistoryEntry
	queryResult []domain.HistoryEntry
	appendErr   error
	failOn      func(entry domain.HistoryEntry) error
}

func (s *stubHistoryRepo) Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	if s.appendErr != nil {
		return domain.HistoryEntry{}, s.appendErr
	}
	if s.failOn != nil {
		if err := s.failOn(entry); err != nil {
			return domain.HistoryEntry{}, err
		}
	}
	s.appended = append(s.appended, entry)
	return entry, nil
}

func (s *stubHistoryRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.HistoryEntry, error) {
	for _, entry := range s.appended {
		if entry.ID == id {
			return entry, nil
		}
	}
	return domain.HistoryEntry{}, repository.ErrNotFound
}

func (s *stubHistoryRepo) ListByFlag(ctx context.Context, profileID, flagID string) ([]domain.HistoryEntry, error) {
	return s.byFlag, nil
}

func (s *stubHistoryRepo) Query(ctx context.Context, clauses []domain.FilterClause) ([]domain.HistoryEntry, error) {
	s.queries = append(s.queries, clauses)
	return s.queryResult, nil
}

func (s *stubHistoryRepo) AppendAttachment(ctx context.Context, id uuid.UUID, attachment string) (domain.HistoryEntry, error) {
	for i, entry := range s.appended {
		if entry.ID == id {
			s.appended[i].Attachments = append(s.appended[i].Attachments, attachment)
			return s.appended[i], nil
		}
	}
	return domain.HistoryEntry{}, repository.ErrNotFound
}

type stubUserRepo struct {
	users    map[uuid.UUID]domain.User
	matching []domain.User
	findErr  error
	getErr   error
	lookups  int
	finds    int
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	s.lookups++
	if s.getErr != nil {
		return domain.User{}, s.getErr
	}
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	var out []domain.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *stubUserRepo) FindMatching(ctx context.Context, query domain.UserQuery) ([]domain.User, error) {
	s.finds++
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.matching, nil
}

var errBoom = errors.New("boom")
