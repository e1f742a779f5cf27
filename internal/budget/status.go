package budget

import (
	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
)

// PlanStatus is the lifecycle state of a whole budget plan.
type PlanStatus string

const (
	StatusDraft            PlanStatus = "draft"
	StatusSubmitted        PlanStatus = "submitted"
	StatusChangesRequested PlanStatus = "changes_requested"
	StatusApproved         PlanStatus = "approved"
	StatusSentToMembers    PlanStatus = "sent_to_members"
	// StatusLocked has no entry transition in this service; plans arrive in it
	// only through operations outside this core, but every guard must still
	// account for it.
	StatusLocked PlanStatus = "locked"
)

func (s PlanStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusChangesRequested,
		StatusApproved, StatusSentToMembers, StatusLocked:
		return true
	}
	return false
}

// ItemStatus is the review state of a single budget item.
type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemApproved ItemStatus = "approved"
	ItemRejected ItemStatus = "rejected"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemApproved, ItemRejected:
		return true
	}
	return false
}

// Op names one engine operation, used by the transition table and by the
// permission matrix.
type Op string

const (
	OpView             Op = "view"
	OpCreate           Op = "create"
	OpUpdate           Op = "update"
	OpSubmit           Op = "submit"
	OpRecall           Op = "recall"
	OpDelete           Op = "delete"
	OpReview           Op = "review"
	OpUpdateCategories Op = "update_categories"
	OpUpdateVisibility Op = "update_visibility"
	OpSendToMembers    Op = "send_to_members"
	OpAssign           Op = "assign"
	OpReportExpense    Op = "report_expense"
	OpSubmitExpense    Op = "submit_expense"
)

// Transition is the single source of truth for status changes: given the
// plan's current status and the operation, it returns the next status or an
// InvalidState error. Review keeps the current status here; the aggregate
// rule applied to the merged items decides the real outcome.
func Transition(current PlanStatus, op Op) (PlanStatus, error) {
	switch op {
	case OpSubmit:
		switch current {
		case StatusDraft, StatusChangesRequested, StatusSubmitted:
			return StatusSubmitted, nil
		case StatusApproved, StatusSentToMembers, StatusLocked:
			return current, apperror.InvalidState("budget cannot be submitted from status " + string(current))
		}
	case OpRecall:
		switch current {
		case StatusSubmitted:
			return StatusDraft, nil
		case StatusDraft, StatusChangesRequested, StatusApproved, StatusSentToMembers, StatusLocked:
			return current, apperror.InvalidState("only a submitted budget can be recalled")
		}
	case OpReview:
		switch current {
		case StatusSubmitted, StatusChangesRequested:
			return current, nil
		case StatusDraft, StatusApproved, StatusSentToMembers, StatusLocked:
			return current, apperror.InvalidState("budget is not under review")
		}
	case OpSendToMembers:
		switch current {
		case StatusApproved:
			return StatusSentToMembers, nil
		case StatusDraft, StatusSubmitted, StatusChangesRequested, StatusSentToMembers, StatusLocked:
			return current, apperror.InvalidState("only an approved budget can be sent to members")
		}
	}
	return current, apperror.InvalidState("unsupported transition " + string(op))
}

// DeleteGuard is a denylist rather than an allowlist: the failure message
// distinguishes a budget still awaiting approval from one already decided.
func DeleteGuard(current PlanStatus) error {
	switch current {
	case StatusDraft, StatusChangesRequested:
		return nil
	case StatusSubmitted:
		return apperror.InvalidState("budget is awaiting approval and cannot be deleted")
	case StatusApproved, StatusSentToMembers, StatusLocked:
		return apperror.InvalidState("budget has already been decided and cannot be deleted")
	}
	return apperror.InvalidState("unknown budget status " + string(current))
}

// AggregateStatus derives the plan status from its items' review states.
// A single rejection downgrades the whole plan regardless of how many items
// were approved; full approval wins only when unanimous.
func AggregateStatus(items []BudgetItem) PlanStatus {
	anyRejected := false
	allApproved := len(items) > 0
	for i := range items {
		switch items[i].Status {
		case ItemRejected:
			anyRejected = true
			allApproved = false
		case ItemPending:
			allApproved = false
		}
	}
	if anyRejected {
		return StatusChangesRequested
	}
	if allApproved {
		return StatusApproved
	}
	return StatusSubmitted
}
