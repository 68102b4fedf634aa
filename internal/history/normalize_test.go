package history

import (
	"errors"
	"testing"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
)

func validRaw() RawChange {
	return RawChange{
		"profileId":      "profile-1",
		"profileName":    "Alex",
		"flagId":         "flag-1",
		"flagTitle":      "Leaves dishes",
		"previousStatus": "white",
		"newStatus":      "red",
	}
}

func TestNormalizeLowercasesSeverities(t *testing.T) {
	raw := validRaw()
	raw["previousStatus"] = "WHITE"
	raw["newStatus"] = "Red"

	canonical, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if canonical.PreviousStatus != domain.SeverityWhite || canonical.NewStatus != domain.SeverityRed {
		t.Fatalf("severities not normalized: %+v", canonical)
	}
}

func TestNormalizeRequiredFieldOrder(t *testing.T) {
	cases := []struct {
		remove []string
		want   string
	}{
		{[]string{"profileId", "flagTitle"}, "profileId"},
		{[]string{"profileName", "flagId"}, "profileName"},
		{[]string{"flagId"}, "flagId"},
		{[]string{"flagTitle"}, "flagTitle"},
	}

	for _, tc := range cases {
		raw := validRaw()
		for _, field := range tc.remove {
			delete(raw, field)
		}

		_, err := Normalize(raw)
		var missing *MissingFieldError
		if !errors.As(err, &missing) {
			t.Fatalf("expected MissingFieldError removing %v, got %v", tc.remove, err)
		}
		if missing.Field != tc.want {
			t.Fatalf("first-failure-wins violated: removed %v, reported %q", tc.remove, missing.Field)
		}
	}
}

func TestNormalizeRejectsInvalidSeverity(t *testing.T) {
	raw := validRaw()
	raw["previousStatus"] = "PURPLE"

	_, err := Normalize(raw)
	var invalid *InvalidEnumError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidEnumError, got %v", err)
	}
	if invalid.Field != "previousStatus" || invalid.Received != "PURPLE" {
		t.Fatalf("unexpected error detail: %+v", invalid)
	}
}

func TestNormalizeRejectsInvalidCardType(t *testing.T) {
	raw := validRaw()
	raw["newCardType"] = "card"

	_, err := Normalize(raw)
	var invalid *InvalidEnumError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidEnumError, got %v", err)
	}
	if invalid.Field != "newCardType" {
		t.Fatalf("unexpected field: %+v", invalid)
	}
}

func TestNormalizeDefaultsCardTypesToNone(t *testing.T) {
	canonical, err := Normalize(validRaw())
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if canonical.PreviousCardType != domain.CardTypeNone || canonical.NewCardType != domain.CardTypeNone {
		t.Fatalf("card types should default to none: %+v", canonical)
	}
}

func TestNormalizeCoercesNonStringFields(t *testing.T) {
	raw := validRaw()
	raw["profileId"] = float64(42)
	raw["reason"] = true

	canonical, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if canonical.ProfileID != "42" {
		t.Fatalf("numeric profileId not coerced: %q", canonical.ProfileID)
	}
	if canonical.Reason != "true" {
		t.Fatalf("boolean reason not coerced: %q", canonical.Reason)
	}
}

func TestNormalizeCoercesAttachments(t *testing.T) {
	raw := validRaw()
	raw["attachments"] = "not-a-list"

	canonical, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if canonical.Attachments == nil || len(canonical.Attachments) != 0 {
		t.Fatalf("attachments should coerce to empty slice: %#v", canonical.Attachments)
	}

	raw["attachments"] = []any{"a.png", float64(7)}
	canonical, err = Normalize(raw)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if len(canonical.Attachments) != 2 || canonical.Attachments[1] != "7" {
		t.Fatalf("attachment elements not coerced: %#v", canonical.Attachments)
	}
}

func TestNormalizeIgnoresUnknownFields(t *testing.T) {
	raw := validRaw()
	raw["somethingNew"] = map[string]any{"nested": true}

	if _, err := Normalize(raw); err != nil {
		t.Fatalf("unknown fields should be ignored: %v", err)
	}
}

func TestNormalizeRejectsMalformedCreatorID(t *testing.T) {
	raw := validRaw()
	raw["creatorId"] = "not-a-uuid"

	_, err := Normalize(raw)
	var invalid *InvalidRequestError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}
}

func TestApplySyncDefaults(t *testing.T) {
	raw := RawChange{
		"profileId": "profile-1",
		"flagId":    "flag-1",
		"title":     "Old title field",
	}

	patched := ApplySyncDefaults(raw)
	if patched["flagTitle"] != "Old title field" {
		t.Fatalf("title fallback not applied: %v", patched["flagTitle"])
	}
	if patched["profileName"] != "Unknown Profile" {
		t.Fatalf("profileName default not applied: %v", patched["profileName"])
	}
	if patched["previousStatus"] != "white" || patched["newStatus"] != "white" {
		t.Fatalf("status defaults not applied: %+v", patched)
	}
	if _, ok := raw["flagTitle"]; ok {
		t.Fatalf("input payload mutated")
	}
}

func TestApplySyncDefaultsFlagTitleFromID(t *testing.T) {
	patched := ApplySyncDefaults(RawChange{"flagId": "flag-9"})
	if patched["flagTitle"] != "Flag flag-9" {
		t.Fatalf("flagId fallback not applied: %v", patched["flagTitle"])
	}
}

func TestApplySyncDefaultsKeepsExplicitValues(t *testing.T) {
	patched := ApplySyncDefaults(RawChange{
		"flagTitle":      "Kept",
		"profileName":    "Jo",
		"previousStatus": "yellow",
		"newStatus":      "red",
	})
	if patched["flagTitle"] != "Kept" || patched["profileName"] != "Jo" {
		t.Fatalf("explicit values overridden: %+v", patched)
	}
	if patched["previousStatus"] != "yellow" || patched["newStatus"] != "red" {
		t.Fatalf("explicit statuses overridden: %+v", patched)
	}
}

func TestParseTimestamp(t *testing.T) {
	if ts, ok := ParseTimestamp("2024-05-01T10:30:00Z"); !ok || ts.IsZero() {
		t.Fatalf("RFC3339 timestamp not parsed")
	}
	if ts, ok := ParseTimestamp(float64(1714558200000)); !ok || !ts.Equal(time.UnixMilli(1714558200000).UTC()) {
		t.Fatalf("epoch millis not parsed")
	}
	if _, ok := ParseTimestamp("not a date"); ok {
		t.Fatalf("garbage timestamp accepted")
	}
	if _, ok := ParseTimestamp(nil); ok {
		t.Fatalf("nil timestamp accepted")
	}
}
