package repository

import (
	"testing"
	"time"

	"github.com/JaceG/dealbreaker-backend/internal/domain"

	"github.com/google/uuid"
)

func TestCompileClausesConjunction(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)

	filter := domain.AdvancedHistoryFilter{
		UserID:    &userID,
		FlagID:    "flag-1",
		StartDate: &start,
		EndDate:   &end,
	}

	compiled, err := compileClauses(filter.Clauses())
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}

	want := "h.user_id = $1 AND h.flag_id = $2 AND h.timestamp >= $3 AND h.timestamp <= $4"
	if compiled.Where != want {
		t.Fatalf("unexpected where clause:\n got %q\nwant %q", compiled.Where, want)
	}
	if len(compiled.Args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(compiled.Args))
	}
	if compiled.Args[0] != userID || compiled.Args[1] != "flag-1" {
		t.Fatalf("unexpected args: %+v", compiled.Args)
	}
	if compiled.JoinOwner || compiled.JoinCreator {
		t.Fatalf("no directory joins expected for id/time filters")
	}
}

func TestCompileClausesNameMatchesEitherRole(t *testing.T) {
	filter := domain.AdvancedHistoryFilter{Name: "smith"}

	compiled, err := compileClauses(filter.Clauses())
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}

	want := "(owner.name ILIKE $1 OR creator.name ILIKE $2)"
	if compiled.Where != want {
		t.Fatalf("unexpected where clause: %q", compiled.Where)
	}
	if !compiled.JoinOwner || !compiled.JoinCreator {
		t.Fatalf("name filter must join both directory roles: %+v", compiled)
	}
	if compiled.Args[0] != "%smith%" || compiled.Args[1] != "%smith%" {
		t.Fatalf("unexpected args: %+v", compiled.Args)
	}
}

func TestCompileClausesNameAndEmailMatchEitherCriterion(t *testing.T) {
	filter := domain.AdvancedHistoryFilter{Name: "smith", Email: "jo"}

	compiled, err := compileClauses(filter.Clauses())
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}

	want := "(owner.name ILIKE $1 OR creator.name ILIKE $2 OR owner.email ILIKE $3 OR creator.email ILIKE $4)"
	if compiled.Where != want {
		t.Fatalf("name and email must qualify an entry independently:\n got %q\nwant %q", compiled.Where, want)
	}
	if compiled.Args[1] != "%smith%" || compiled.Args[3] != "%jo%" {
		t.Fatalf("unexpected args: %+v", compiled.Args)
	}
}

func TestCompileClausesEscapesLikeWildcards(t *testing.T) {
	filter := domain.AdvancedHistoryFilter{Email: "50%_off"}

	compiled, err := compileClauses(filter.Clauses())
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}
	if compiled.Args[0] != `%50\%\_off%` {
		t.Fatalf("wildcards not escaped: %q", compiled.Args[0])
	}
}

func TestCompileClausesUserScope(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	compiled, err := compileClauses(domain.UserScopeClauses(ids, domain.RoleAny))
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}
	want := "(h.creator_id = ANY($1) OR h.user_id = ANY($2))"
	if compiled.Where != want {
		t.Fatalf("unexpected where clause: %q", compiled.Where)
	}

	compiled, err = compileClauses(domain.UserScopeClauses(ids, domain.RoleCreator))
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}
	if compiled.Where != "h.creator_id = ANY($1)" {
		t.Fatalf("unexpected creator scope: %q", compiled.Where)
	}
}

func TestCompileClausesEmpty(t *testing.T) {
	compiled, err := compileClauses(nil)
	if err != nil {
		t.Fatalf("compile returned error: %v", err)
	}
	if compiled.Where != "" || len(compiled.Args) != 0 {
		t.Fatalf("empty clause list should compile to nothing: %+v", compiled)
	}
}

func TestCompileClausesRejectsUnknownField(t *testing.T) {
	_, err := compileClauses([]domain.FilterClause{{Field: "password", Op: domain.FilterOpEq, Value: "x"}})
	if err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}
