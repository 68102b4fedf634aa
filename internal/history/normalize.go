package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/domain"

	"github.com/google/uuid"
)

// RawChange is one loosely-typed change payload as decoded from JSON. Fields
// may be missing, wrongly cased, or the wrong type; unknown fields are
// ignored.
type RawChange map[string]any

// CanonicalChange is a validated payload ready for identity resolution and
// classification.
type CanonicalChange struct {
	ProfileID        string
	ProfileName      string
	FlagID           string
	FlagTitle        string
	PreviousStatus   domain.Severity
	NewStatus        domain.Severity
	PreviousCardType domain.CardType
	NewCardType      domain.CardType
	Reason           string
	Attachments      []string
	CreatorID        *uuid.UUID
}

var severityValues = []string{"white", "yellow", "red"}
var cardTypeValues = []string{"flag", "dealbreaker", "none"}

// timeLayouts are the formats accepted for caller-supplied timestamps on the
// sync path.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalize validates and coerces one raw payload. It is the single source of
// truth for required-field and enum-membership rules: required fields are
// checked in order (first failure wins), severities are lower-cased before the
// membership check, and card types default to none. Invalid enum values are
// rejected, never silently coerced.
func Normalize(raw RawChange) (CanonicalChange, error) {
	var canonical CanonicalChange

	canonical.ProfileID = coerceString(raw["profileId"])
	canonical.ProfileName = coerceString(raw["profileName"])
	canonical.FlagID = coerceString(raw["flagId"])
	canonical.FlagTitle = coerceString(raw["flagTitle"])

	for _, required := range []struct {
		name  string
		value string
	}{
		{"profileId", canonical.ProfileID},
		{"profileName", canonical.ProfileName},
		{"flagId", canonical.FlagID},
		{"flagTitle", canonical.FlagTitle},
	} {
		if required.value == "" {
			return CanonicalChange{}, &MissingFieldError{Field: required.name}
		}
	}

	previousStatus := strings.ToLower(coerceString(raw["previousStatus"]))
	if !domain.ValidSeverity(previousStatus) {
		return CanonicalChange{}, &InvalidEnumError{
			Field:    "previousStatus",
			Received: coerceString(raw["previousStatus"]),
			Allowed:  severityValues,
		}
	}
	canonical.PreviousStatus = domain.Severity(previousStatus)

	newStatus := strings.ToLower(coerceString(raw["newStatus"]))
	if !domain.ValidSeverity(newStatus) {
		return CanonicalChange{}, &InvalidEnumError{
			Field:    "newStatus",
			Received: coerceString(raw["newStatus"]),
			Allowed:  severityValues,
		}
	}
	canonical.NewStatus = domain.Severity(newStatus)

	previousCardType, err := normalizeCardType("previousCardType", raw["previousCardType"])
	if err != nil {
		return CanonicalChange{}, err
	}
	canonical.PreviousCardType = previousCardType

	newCardType, err := normalizeCardType("newCardType", raw["newCardType"])
	if err != nil {
		return CanonicalChange{}, err
	}
	canonical.NewCardType = newCardType

	canonical.Reason = coerceString(raw["reason"])
	canonical.Attachments = coerceStringSlice(raw["attachments"])

	if creatorRaw, ok := raw["creatorId"]; ok {
		creator := coerceString(creatorRaw)
		if creator != "" {
			id, err := uuid.Parse(creator)
			if err != nil {
				return CanonicalChange{}, &InvalidRequestError{Message: "creatorId must be a valid user id"}
			}
			canonical.CreatorID = &id
		}
	}

	return canonical, nil
}

// ApplySyncDefaults returns a copy of the raw payload with the sync path's
// permissive fallbacks applied, so a queued offline item missing cosmetic
// fields is not lost. The result still goes through Normalize.
func ApplySyncDefaults(raw RawChange) RawChange {
	patched := make(RawChange, len(raw))
	for key, value := range raw {
		patched[key] = value
	}

	flagID := coerceString(patched["flagId"])

	if coerceString(patched["flagTitle"]) == "" {
		if title := coerceString(patched["title"]); title != "" {
			patched["flagTitle"] = title
		} else if flagID != "" {
			patched["flagTitle"] = "Flag " + flagID
		}
	}
	if coerceString(patched["profileName"]) == "" {
		patched["profileName"] = "Unknown Profile"
	}
	if coerceString(patched["previousStatus"]) == "" {
		patched["previousStatus"] = "white"
	}
	if coerceString(patched["newStatus"]) == "" {
		patched["newStatus"] = "white"
	}

	return patched
}

// coerceString renders any JSON scalar the way the API historically did:
// non-strings become their printed form rather than an error.
func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// coerceStringSlice coerces attachments to a sequence, degrading to empty
// when the caller sent something else.
func coerceStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, coerceString(item))
	}
	return out
}

func normalizeCardType(field string, value any) (domain.CardType, error) {
	raw := coerceString(value)
	if raw == "" {
		return domain.CardTypeNone, nil
	}
	if !domain.ValidCardType(raw) {
		return "", &InvalidEnumError{Field: field, Received: raw, Allowed: cardTypeValues}
	}
	return domain.CardType(raw), nil
}

// ParseTimestamp interprets a caller-supplied timestamp from a sync item:
// either epoch milliseconds or one of the accepted string layouts.
func ParseTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case string:
		raw := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
