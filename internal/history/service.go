package history

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/auth"
	"github.com/JaceG/dealbreaker-backend/internal/domain"
	"github.com/JaceG/dealbreaker-backend/internal/repository"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a history entry id matches nothing.
var ErrNotFound = errors.New("history entry not found")

// SyncAction is the change tag the sync path recognizes. Items carrying any
// other tag are silently skipped.
const SyncAction = "addFlagHistory"

// Service is the history reconciliation and query engine. Every operation is
// a self-contained unit of work; the repositories are the only shared state.
type Service struct {
	histories repository.HistoryRepository
	users     repository.UserRepository
	resolver  *Resolver
	now       func() time.Time
}

// NewService creates the engine over the injected store and directory.
func NewService(histories repository.HistoryRepository, users repository.UserRepository) *Service {
	return &Service{
		histories: histories,
		users:     users,
		resolver:  NewResolver(users),
		now:       time.Now,
	}
}

// Ingest validates one change payload, resolves identities, classifies the
// card type transition, and appends the canonical entry. The creator is the
// payload's creatorId when present, otherwise the authenticated actor from
// the context. Exactly one append happens on success, none on any failure.
func (s *Service) Ingest(ctx context.Context, raw RawChange) (domain.HistoryEntry, error) {
	return s.ingestAt(ctx, raw, nil)
}

func (s *Service) ingestAt(ctx context.Context, raw RawChange, timestamp *time.Time) (domain.HistoryEntry, error) {
	canonical, err := Normalize(raw)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	creatorID := canonical.CreatorID
	if creatorID == nil {
		if actorID, ok := auth.ActorIDFromContext(ctx); ok {
			creatorID = &actorID
		}
	}

	creatorName, creatorEmail := s.resolver.ResolveActor(ctx, creatorID)
	userID, userFullName, userEmail := s.resolver.ResolveSubject(ctx, canonical.ProfileID)

	entry := domain.HistoryEntry{
		ID:               uuid.New(),
		ProfileID:        canonical.ProfileID,
		ProfileName:      canonical.ProfileName,
		FlagID:           canonical.FlagID,
		FlagTitle:        canonical.FlagTitle,
		PreviousStatus:   canonical.PreviousStatus,
		NewStatus:        canonical.NewStatus,
		PreviousCardType: canonical.PreviousCardType,
		NewCardType:      canonical.NewCardType,
		CardTypeChange:   domain.Classify(canonical.PreviousCardType, canonical.NewCardType),
		Reason:           canonical.Reason,
		Attachments:      canonical.Attachments,
		CreatorID:        creatorID,
		CreatorName:      creatorName,
		CreatorEmail:     creatorEmail,
		UserID:           userID,
		UserFullName:     userFullName,
		UserEmail:        userEmail,
		Timestamp:        s.now().UTC(),
	}
	if timestamp != nil {
		entry.Timestamp = *timestamp
	}

	saved, err := s.histories.Append(ctx, entry)
	if err != nil {
		return domain.HistoryEntry{}, &StorageError{Err: err}
	}
	return saved, nil
}

// SyncOutcomeStatus labels what happened to one batch item.
type SyncOutcomeStatus string

const (
	SyncWritten SyncOutcomeStatus = "written"
	SyncSkipped SyncOutcomeStatus = "skipped"
	SyncFailed  SyncOutcomeStatus = "failed"
)

// SyncOutcome records the fate of one item, in input order. The public sync
// response only exposes the written entries; the outcome list keeps the
// skipped/failed distinction visible to operators and callers inside the
// process.
type SyncOutcome struct {
	Index  int
	Status SyncOutcomeStatus
	Reason string
	Entry  *domain.HistoryEntry
}

// SyncResult aggregates a replayed batch.
type SyncResult struct {
	Count    int
	Entries  []domain.HistoryEntry
	Outcomes []SyncOutcome
}

// Sync replays an ordered batch of queued changes, applying single-entry
// ingest to each recognized item. Items are processed sequentially in input
// order. A failure on one item is caught and logged; it never aborts the
// batch, and there is no cross-item transaction: partial application is an
// accepted outcome.
func (s *Service) Sync(ctx context.Context, changes any) (SyncResult, error) {
	items, ok := changes.([]any)
	if !ok {
		return SyncResult{}, &InvalidRequestError{Message: "changes must be an array"}
	}

	result := SyncResult{Entries: []domain.HistoryEntry{}}
	if len(items) == 0 {
		return result, nil
	}

	for index, item := range items {
		change, ok := item.(map[string]any)
		if !ok {
			log.Printf("[SYNC] Skipping item %d: not an object", index)
			result.Outcomes = append(result.Outcomes, SyncOutcome{Index: index, Status: SyncSkipped, Reason: "not an object"})
			continue
		}

		action, _ := change["action"].(string)
		if action != SyncAction {
			log.Printf("[SYNC] Skipping item %d: unrecognized action %q", index, action)
			result.Outcomes = append(result.Outcomes, SyncOutcome{Index: index, Status: SyncSkipped, Reason: "unrecognized action"})
			continue
		}

		raw := RawChange{}
		if data, ok := change["data"].(map[string]any); ok {
			raw = RawChange(data)
		}

		var timestamp *time.Time
		if ts, ok := ParseTimestamp(raw["timestamp"]); ok {
			timestamp = &ts
		}

		entry, err := s.ingestAt(ctx, ApplySyncDefaults(raw), timestamp)
		if err != nil {
			log.Printf("[SYNC] Error saving history entry %d: %v", index, err)
			result.Outcomes = append(result.Outcomes, SyncOutcome{Index: index, Status: SyncFailed, Reason: err.Error()})
			continue
		}

		result.Entries = append(result.Entries, entry)
		result.Outcomes = append(result.Outcomes, SyncOutcome{Index: index, Status: SyncWritten, Entry: &entry})
	}

	result.Count = len(result.Entries)
	log.Printf("[SYNC] Successfully processed %d of %d changes", result.Count, len(items))
	return result, nil
}

// ListByFlag returns every entry for one flag on one profile, newest first.
func (s *Service) ListByFlag(ctx context.Context, profileID, flagID string) ([]domain.HistoryEntry, error) {
	entries, err := s.histories.ListByFlag(ctx, profileID, flagID)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return entries, nil
}

// AppendAttachment appends one attachment reference to an existing entry.
// Every other field is left untouched.
func (s *Service) AppendAttachment(ctx context.Context, id uuid.UUID, attachment string) (domain.HistoryEntry, error) {
	entry, err := s.histories.AppendAttachment(ctx, id, attachment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.HistoryEntry{}, ErrNotFound
		}
		return domain.HistoryEntry{}, &StorageError{Err: err}
	}
	return entry, nil
}

// FilterByUser resolves directory users matching the query and returns the
// entries where a resolved user appears in the requested role. Zero criteria
// is rejected before any store contact to prevent an unbounded read.
func (s *Service) FilterByUser(ctx context.Context, query domain.UserQuery, role domain.HistoryRole) ([]domain.HistoryEntry, error) {
	if query.Empty() {
		return nil, &InvalidRequestError{
			Message: "At least one filter criteria (userId, name, or email) is required",
		}
	}

	users, err := s.users.FindMatching(ctx, query)
	if err != nil {
		return nil, &StorageError{Err: fmt.Errorf("failed to resolve users: %w", err)}
	}
	if len(users) == 0 {
		return []domain.HistoryEntry{}, nil
	}

	ids := make([]uuid.UUID, len(users))
	for i, user := range users {
		ids[i] = user.ID
	}

	entries, err := s.histories.Query(ctx, domain.UserScopeClauses(ids, role))
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return entries, nil
}

// FilterAdvanced runs the multi-criteria query. An empty result set is a
// valid, non-error outcome.
func (s *Service) FilterAdvanced(ctx context.Context, filter domain.AdvancedHistoryFilter) ([]domain.HistoryEntry, error) {
	entries, err := s.histories.Query(ctx, filter.Clauses())
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return entries, nil
}
