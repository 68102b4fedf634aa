package repository

import (
	"fmt"
	"strings"

	"github.com/JaceG/dealbreaker-backend/internal/domain"
)

// compiledQuery is the store-native form of an ordered clause list: a
// parameterized WHERE fragment plus the directory joins the clauses touch.
type compiledQuery struct {
	JoinOwner   bool
	JoinCreator bool
	Where       string
	Args        []any
}

// columnFor maps logical filter fields to SQL columns. The owner/creator
// aliases refer to the users table joined on user_id and creator_id.
var columnFor = map[string]string{
	domain.FieldUserID:       "h.user_id",
	domain.FieldCreatorID:    "h.creator_id",
	domain.FieldFlagID:       "h.flag_id",
	domain.FieldTimestamp:    "h.timestamp",
	domain.FieldOwnerName:    "owner.name",
	domain.FieldOwnerEmail:   "owner.email",
	domain.FieldCreatorName:  "creator.name",
	domain.FieldCreatorEmail: "creator.email",
}

// compileClauses turns the ordered predicate list into a conjunction of SQL
// conditions. Clause order is preserved so the emitted SQL is deterministic.
func compileClauses(clauses []domain.FilterClause) (compiledQuery, error) {
	var compiled compiledQuery
	var conditions []string

	for _, clause := range clauses {
		condition, err := compileClause(clause, &compiled)
		if err != nil {
			return compiledQuery{}, err
		}
		conditions = append(conditions, condition)
	}

	compiled.Where = strings.Join(conditions, " AND ")
	return compiled, nil
}

func compileClause(clause domain.FilterClause, compiled *compiledQuery) (string, error) {
	if len(clause.Or) > 0 {
		parts := make([]string, 0, len(clause.Or))
		for _, sub := range clause.Or {
			part, err := compileClause(sub, compiled)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}

	column, ok := columnFor[clause.Field]
	if !ok {
		return "", fmt.Errorf("unknown filter field %q", clause.Field)
	}

	switch clause.Field {
	case domain.FieldOwnerName, domain.FieldOwnerEmail:
		compiled.JoinOwner = true
	case domain.FieldCreatorName, domain.FieldCreatorEmail:
		compiled.JoinCreator = true
	}

	switch clause.Op {
	case domain.FilterOpEq:
		compiled.Args = append(compiled.Args, clause.Value)
		return fmt.Sprintf("%s = $%d", column, len(compiled.Args)), nil
	case domain.FilterOpIn:
		compiled.Args = append(compiled.Args, clause.Value)
		return fmt.Sprintf("%s = ANY($%d)", column, len(compiled.Args)), nil
	case domain.FilterOpSubstring:
		value, ok := clause.Value.(string)
		if !ok {
			return "", fmt.Errorf("substring filter on %q requires a string value", clause.Field)
		}
		compiled.Args = append(compiled.Args, "%"+escapeLike(value)+"%")
		return fmt.Sprintf("%s ILIKE $%d", column, len(compiled.Args)), nil
	case domain.FilterOpGTE:
		compiled.Args = append(compiled.Args, clause.Value)
		return fmt.Sprintf("%s >= $%d", column, len(compiled.Args)), nil
	case domain.FilterOpLTE:
		compiled.Args = append(compiled.Args, clause.Value)
		return fmt.Sprintf("%s <= $%d", column, len(compiled.Args)), nil
	default:
		return "", fmt.Errorf("unknown filter op %q", clause.Op)
	}
}

func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)
	return value
}
