package domain

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the tri-state status recorded on each side of a change.
type Severity string

const (
	SeverityWhite  Severity = "white"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
)

// ValidSeverity reports whether value is one of the canonical severities.
// Callers are expected to lower-case input before checking.
func ValidSeverity(value string) bool {
	switch Severity(value) {
	case SeverityWhite, SeverityYellow, SeverityRed:
		return true
	}
	return false
}

// CardType tracks whether the item is a flag, a dealbreaker, or unclassified.
type CardType string

const (
	CardTypeFlag        CardType = "flag"
	CardTypeDealbreaker CardType = "dealbreaker"
	CardTypeNone        CardType = "none"
)

// ValidCardType reports whether value is one of the canonical card types.
func ValidCardType(value string) bool {
	switch CardType(value) {
	case CardTypeFlag, CardTypeDealbreaker, CardTypeNone:
		return true
	}
	return false
}

// CardTypeChange is derived from the previous/new card type pair and is never
// supplied by callers.
type CardTypeChange string

const (
	CardTypeChangeNone              CardTypeChange = "none"
	CardTypeChangeFlagToDealbreaker CardTypeChange = "flag-to-dealbreaker"
	CardTypeChangeDealbreakerToFlag CardTypeChange = "dealbreaker-to-flag"
)

// Classify maps a card type transition to its change marker. Only the two
// reclassification pairs are significant; every other combination is none.
func Classify(previous, next CardType) CardTypeChange {
	switch {
	case previous == CardTypeFlag && next == CardTypeDealbreaker:
		return CardTypeChangeFlagToDealbreaker
	case previous == CardTypeDealbreaker && next == CardTypeFlag:
		return CardTypeChangeDealbreakerToFlag
	default:
		return CardTypeChangeNone
	}
}

// HistoryEntry is one immutable audit record of a status or classification
// change. Once written, only the attachments list may grow; every other field
// is fixed. The creator/user name and email columns are denormalized snapshots
// taken at ingest time and are allowed to go stale relative to the user
// directory.
type HistoryEntry struct {
	ID               uuid.UUID      `json:"id"`
	ProfileID        string         `json:"profileId"`
	ProfileName      string         `json:"profileName"`
	FlagID           string         `json:"flagId"`
	FlagTitle        string         `json:"flagTitle"`
	PreviousStatus   Severity       `json:"previousStatus"`
	NewStatus        Severity       `json:"newStatus"`
	PreviousCardType CardType       `json:"previousCardType"`
	NewCardType      CardType       `json:"newCardType"`
	CardTypeChange   CardTypeChange `json:"cardTypeChange"`
	Reason           string         `json:"reason"`
	Attachments      []string       `json:"attachments"`
	CreatorID        *uuid.UUID     `json:"creatorId"`
	CreatorName      string         `json:"creatorName"`
	CreatorEmail     string         `json:"creatorEmail"`
	UserID           *uuid.UUID     `json:"userId"`
	UserFullName     string         `json:"userFullName"`
	UserEmail        string         `json:"userEmail"`
	Timestamp        time.Time      `json:"timestamp"`
}
