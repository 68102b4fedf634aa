package domain

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRole selects which identity column a user-scoped history query
// matches against.
type HistoryRole string

const (
	// RoleCreator matches entries the user wrote.
	RoleCreator HistoryRole = "creator"
	// RoleSubject matches entries about profiles the user owns.
	RoleSubject HistoryRole = "subject"
	// RoleAny matches either column.
	RoleAny HistoryRole = "any"
)

// UserQuery carries the optional criteria used to resolve directory users.
// Name and email are case-insensitive substring matches.
type UserQuery struct {
	ID    *uuid.UUID
	Name  string
	Email string
}

// Empty reports whether no criteria were supplied.
func (q UserQuery) Empty() bool {
	return q.ID == nil && q.Name == "" && q.Email == ""
}

// FilterOp identifies how a clause compares its field to its value.
type FilterOp string

const (
	FilterOpEq        FilterOp = "eq"
	FilterOpIn        FilterOp = "in"
	FilterOpSubstring FilterOp = "substring"
	FilterOpGTE       FilterOp = "gte"
	FilterOpLTE       FilterOp = "lte"
)

// FilterClause is one typed predicate against a logical history field. When Or
// is non-empty the clause is a disjunction of its sub-clauses and the other
// members are ignored. Clauses compose conjunctively in order.
type FilterClause struct {
	Field string
	Op    FilterOp
	Value any
	Or    []FilterClause
}

// Logical field names understood by the store-side compiler. The owner_* and
// creator_* fields refer to the joined directory rows, not the denormalized
// snapshot columns, so queries see current directory data.
const (
	FieldUserID       = "user_id"
	FieldCreatorID    = "creator_id"
	FieldFlagID       = "flag_id"
	FieldTimestamp    = "timestamp"
	FieldOwnerName    = "owner_name"
	FieldOwnerEmail   = "owner_email"
	FieldCreatorName  = "creator_name"
	FieldCreatorEmail = "creator_email"
)

// AdvancedHistoryFilter holds the independently-optional criteria of the
// advanced query mode. All criteria compose conjunctively except name and
// email, which share one disjunction across the owner and creator roles.
type AdvancedHistoryFilter struct {
	UserID    *uuid.UUID
	CreatorID *uuid.UUID
	Name      string
	Email     string
	FlagID    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Empty reports whether no criteria were supplied.
func (f AdvancedHistoryFilter) Empty() bool {
	return f.UserID == nil && f.CreatorID == nil && f.Name == "" &&
		f.Email == "" && f.FlagID == "" && f.StartDate == nil && f.EndDate == nil
}

// Clauses expands the filter into its ordered predicate list.
func (f AdvancedHistoryFilter) Clauses() []FilterClause {
	var clauses []FilterClause

	if f.UserID != nil {
		clauses = append(clauses, FilterClause{Field: FieldUserID, Op: FilterOpEq, Value: *f.UserID})
	}
	if f.CreatorID != nil {
		clauses = append(clauses, FilterClause{Field: FieldCreatorID, Op: FilterOpEq, Value: *f.CreatorID})
	}
	// Name and email share one disjunction group: an entry qualifies when any
	// of the supplied identity criteria matches either role.
	var identity []FilterClause
	if f.Name != "" {
		identity = append(identity,
			FilterClause{Field: FieldOwnerName, Op: FilterOpSubstring, Value: f.Name},
			FilterClause{Field: FieldCreatorName, Op: FilterOpSubstring, Value: f.Name},
		)
	}
	if f.Email != "" {
		identity = append(identity,
			FilterClause{Field: FieldOwnerEmail, Op: FilterOpSubstring, Value: f.Email},
			FilterClause{Field: FieldCreatorEmail, Op: FilterOpSubstring, Value: f.Email},
		)
	}
	if len(identity) > 0 {
		clauses = append(clauses, FilterClause{Or: identity})
	}
	if f.FlagID != "" {
		clauses = append(clauses, FilterClause{Field: FieldFlagID, Op: FilterOpEq, Value: f.FlagID})
	}
	if f.StartDate != nil {
		clauses = append(clauses, FilterClause{Field: FieldTimestamp, Op: FilterOpGTE, Value: *f.StartDate})
	}
	if f.EndDate != nil {
		clauses = append(clauses, FilterClause{Field: FieldTimestamp, Op: FilterOpLTE, Value: *f.EndDate})
	}

	return clauses
}

// UserScopeClauses builds the predicate list for an identity-scoped query over
// an already-resolved set of user ids.
func UserScopeClauses(userIDs []uuid.UUID, role HistoryRole) []FilterClause {
	ids := make([]uuid.UUID, len(userIDs))
	copy(ids, userIDs)

	switch role {
	case RoleCreator:
		return []FilterClause{{Field: FieldCreatorID, Op: FilterOpIn, Value: ids}}
	case RoleSubject:
		return []FilterClause{{Field: FieldUserID, Op: FilterOpIn, Value: ids}}
	default:
		return []FilterClause{{Or: []FilterClause{
			{Field: FieldCreatorID, Op: FilterOpIn, Value: ids},
			{Field: FieldUserID, Op: FilterOpIn, Value: ids},
		}}}
	}
}
