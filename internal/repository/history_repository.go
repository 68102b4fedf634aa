package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
)

const historyColumns = `id, profile_id, profile_name, flag_id, flag_title,
	previous_status, new_status, previous_card_type, new_card_type, card_type_change,
	reason, attachments, creator_id, creator_name, creator_email,
	user_id, user_full_name, user_email, timestamp`

// historyRepository implements HistoryRepository over Postgres.
type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

// Append inserts a new history entry. Entries are never updated afterwards
// except through AppendAttachment.
func (r *historyRepository) Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	attachments := entry.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to marshal attachments: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO flag_history (
			id, profile_id, profile_name, flag_id, flag_title,
			previous_status, new_status, previous_card_type, new_card_type, card_type_change,
			reason, attachments, creator_id, creator_name, creator_email,
			user_id, user_full_name, user_email, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING `+historyColumns,
		entry.ID, entry.ProfileID, entry.ProfileName, entry.FlagID, entry.FlagTitle,
		string(entry.PreviousStatus), string(entry.NewStatus),
		string(entry.PreviousCardType), string(entry.NewCardType), string(entry.CardTypeChange),
		entry.Reason, attachmentsJSON, entry.CreatorID, entry.CreatorName, entry.CreatorEmail,
		entry.UserID, entry.UserFullName, entry.UserEmail, entry.Timestamp,
	)

	saved, err := scanHistoryRow(row)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to append history entry: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a history entry by id.
func (r *historyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.HistoryEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+historyColumns+` FROM flag_history WHERE id = $1`, id)

	entry, err := scanHistoryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, ErrNotFound
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to get history entry: %w", err)
	}
	return entry, nil
}

// ListByFlag retrieves every entry for one flag on one profile, newest first.
func (r *historyRepository) ListByFlag(ctx context.Context, profileID, flagID string) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+historyColumns+` FROM flag_history
		 WHERE profile_id = $1 AND flag_id = $2
		 ORDER BY timestamp DESC`, profileID, flagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	return collectHistoryRows(rows)
}

// Query compiles the clause list into one retrieval request, newest first.
// Directory joins are added only when a clause touches a joined column.
func (r *historyRepository) Query(ctx context.Context, clauses []domain.FilterClause) ([]domain.HistoryEntry, error) {
	compiled, err := compileClauses(clauses)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + prefixColumns("h.") + ` FROM flag_history h`
	if compiled.JoinOwner {
		query += ` LEFT JOIN users owner ON owner.id = h.user_id`
	}
	if compiled.JoinCreator {
		query += ` LEFT JOIN users creator ON creator.id = h.creator_id`
	}
	if compiled.Where != "" {
		query += ` WHERE ` + compiled.Where
	}
	query += ` ORDER BY h.timestamp DESC`

	rows, err := r.pool.Query(ctx, query, compiled.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history entries: %w", err)
	}
	defer rows.Close()

	return collectHistoryRows(rows)
}

// AppendAttachment appends one attachment reference, leaving every other
// column untouched.
func (r *historyRepository) AppendAttachment(ctx context.Context, id uuid.UUID, attachment string) (domain.HistoryEntry, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE flag_history
		SET attachments = attachments || to_jsonb($2::text)
		WHERE id = $1
		RETURNING `+historyColumns,
		id, attachment,
	)

	entry, err := scanHistoryRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, ErrNotFound
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to append attachment: %w", err)
	}
	return entry, nil
}

func prefixColumns(prefix string) string {
	return prefix + `id, ` + prefix + `profile_id, ` + prefix + `profile_name, ` +
		prefix + `flag_id, ` + prefix + `flag_title, ` +
		prefix + `previous_status, ` + prefix + `new_status, ` +
		prefix + `previous_card_type, ` + prefix + `new_card_type, ` + prefix + `card_type_change, ` +
		prefix + `reason, ` + prefix + `attachments, ` +
		prefix + `creator_id, ` + prefix + `creator_name, ` + prefix + `creator_email, ` +
		prefix + `user_id, ` + prefix + `user_full_name, ` + prefix + `user_email, ` +
		prefix + `timestamp`
}

func scanHistoryRow(row pgx.Row) (domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var previousStatus, newStatus, previousCardType, newCardType, cardTypeChange string
	var attachmentsJSON []byte

	err := row.Scan(
		&entry.ID, &entry.ProfileID, &entry.ProfileName, &entry.FlagID, &entry.FlagTitle,
		&previousStatus, &newStatus, &previousCardType, &newCardType, &cardTypeChange,
		&entry.Reason, &attachmentsJSON, &entry.CreatorID, &entry.CreatorName, &entry.CreatorEmail,
		&entry.UserID, &entry.UserFullName, &entry.UserEmail, &entry.Timestamp,
	)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	entry.PreviousStatus = domain.Severity(previousStatus)
	entry.NewStatus = domain.Severity(newStatus)
	entry.PreviousCardType = domain.CardType(previousCardType)
	entry.NewCardType = domain.CardType(newCardType)
	entry.CardTypeChange = domain.CardTypeChange(cardTypeChange)

	entry.Attachments = []string{}
	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &entry.Attachments); err != nil {
			return domain.HistoryEntry{}, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
	}

	return entry, nil
}

func collectHistoryRows(rows pgx.Rows) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	return entries, nil
}
