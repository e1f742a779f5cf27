package budget

import (
	"github.com/google/uuid"
)

// Role names come from the membership directory.
type Role string

const (
	RoleHoOC   Role = "hooc" // head of the organizing committee, sole reviewer
	RoleHoD    Role = "hod"  // head of department, owns the department's plans
	RoleMember Role = "member"
)

// Requester is the resolved identity acting on a plan, scoped to one event:
// memberships do not carry across events.
type Requester struct {
	UserID       string
	MemberID     uuid.UUID
	EventID      uuid.UUID
	Role         Role
	DepartmentID *uuid.UUID
}

func (r Requester) sameDepartment(target uuid.UUID) bool {
	return r.DepartmentID != nil && *r.DepartmentID == target
}

type deptScope int

const (
	scopeAny  deptScope = iota // role alone decides
	scopeSame                  // requester must belong to the target department
)

// matrix centralizes every role/ownership rule of the engine. An operation
// absent from a role's row is denied for that role.
var matrix = map[Role]map[Op]deptScope{
	RoleHoOC: {
		OpView:   scopeAny,
		OpReview: scopeAny,
	},
	RoleHoD: {
		OpView:             scopeAny,
		OpCreate:           scopeSame,
		OpUpdate:           scopeSame,
		OpSubmit:           scopeSame,
		OpRecall:           scopeSame,
		OpDelete:           scopeSame,
		OpUpdateCategories: scopeSame,
		OpUpdateVisibility: scopeSame,
		OpSendToMembers:    scopeSame,
		OpAssign:           scopeSame,
		OpReportExpense:    scopeSame,
		OpSubmitExpense:    scopeSame,
	},
	RoleMember: {
		OpView:          scopeAny,
		OpReportExpense: scopeSame,
		OpSubmitExpense: scopeSame,
	},
}

// Allowed answers the role/department half of authorization. Finer conditions
// (assignee equality, plan visibility) stay with the operation that owns them.
func Allowed(req Requester, targetDepartment uuid.UUID, op Op) bool {
	ops, ok := matrix[req.Role]
	if !ok {
		return false
	}
	scope, ok := ops[op]
	if !ok {
		return false
	}
	if scope == scopeSame {
		return req.sameDepartment(targetDepartment)
	}
	return true
}
