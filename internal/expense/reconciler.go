package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
	"github.com/minhdangfptu/myFEvent-sub001/internal/notify"
)

// Reconciler records actual spend against approved budget items and walks a
// member's expense report through draft and submitted.
type Reconciler struct {
	Expenses Store
	Budgets  budget.Store
	Notify   notify.Sink
}

// ReportInput applies only the fields present in the payload; nil means
// leave unchanged.
type ReportInput struct {
	ActualAmount *decimal.Decimal  `json:"actual_amount"`
	Evidence     []budget.Evidence `json:"evidence"`
	MemberNote   *string           `json:"member_note"`
	IsPaid       *bool             `json:"is_paid"`
}

func (rc *Reconciler) planFor(planID uuid.UUID, req budget.Requester) (*budget.BudgetPlan, error) {
	plan, err := rc.Budgets.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan.EventID != req.EventID {
		return nil, apperror.NotFound("budget not found")
	}
	return plan, nil
}

// authorizeReporter decides who may touch the expense record of an item. The
// department head always may; a member must be the assignee, except that an
// item still unassigned after send-to-members is open for anyone in the
// department to claim by reporting.
func authorizeReporter(plan *budget.BudgetPlan, item *budget.BudgetItem, req budget.Requester) error {
	if !budget.Allowed(req, plan.DepartmentID, budget.OpReportExpense) {
		return apperror.Forbidden("you cannot report expenses for this department")
	}
	if req.Role == budget.RoleHoD {
		return nil
	}
	if item.AssignedTo != nil {
		if *item.AssignedTo != req.MemberID {
			return apperror.Forbidden("only the assigned member can report this expense")
		}
		return nil
	}
	if plan.Status == budget.StatusApproved {
		return apperror.Forbidden("this item has not been assigned yet")
	}
	// sent_to_members: unassigned items are claimable by reporting.
	return nil
}

// persist re-derives the comparison and saves; comparison is never stored as
// anything but a function of the two amounts.
func (rc *Reconciler) persist(record *Record) error {
	record.Comparison = Compare(record.ActualAmount, record.EstimatedTotal)
	return rc.Expenses.Save(record)
}

// Report creates or updates the expense record for one item.
func (rc *Reconciler) Report(planID, itemID uuid.UUID, in ReportInput, req budget.Requester) (*Record, error) {
	plan, err := rc.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if plan.Status != budget.StatusApproved && plan.Status != budget.StatusSentToMembers {
		return nil, apperror.InvalidState("expenses can only be reported after the budget is approved")
	}
	item := plan.Item(itemID)
	if item == nil {
		return nil, apperror.NotFound("item not found in budget")
	}
	if err := authorizeReporter(plan, item, req); err != nil {
		return nil, err
	}

	record, err := rc.Expenses.Find(planID, itemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &Record{
			ID:           uuid.New(),
			PlanID:       planID,
			ItemID:       itemID,
			SubmitStatus: SubmitDraft,
		}
	}

	if in.ActualAmount != nil {
		if in.ActualAmount.Sign() < 0 {
			return nil, apperror.Validation("actual amount cannot be negative")
		}
		record.ActualAmount = *in.ActualAmount
	}
	if in.Evidence != nil {
		record.Evidence = budget.SanitizeEvidence(in.Evidence)
	}
	if in.MemberNote != nil {
		record.MemberNote = *in.MemberNote
	}
	if in.IsPaid != nil {
		record.IsPaid = *in.IsPaid
	}

	// The estimate snapshot always tracks the item's current total.
	record.EstimatedTotal = item.Total
	record.ReportedBy = req.MemberID
	record.ReportedAt = time.Now()

	if err := rc.persist(record); err != nil {
		return nil, err
	}
	rc.Notify.ExpenseReported(plan.EventID, plan.DepartmentID, planID, itemID)
	return record, nil
}

// TogglePaid flips the paid flag on an already-reported expense.
func (rc *Reconciler) TogglePaid(planID, itemID uuid.UUID, req budget.Requester) (*Record, error) {
	plan, err := rc.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	item := plan.Item(itemID)
	if item == nil {
		return nil, apperror.NotFound("item not found in budget")
	}
	if err := authorizeReporter(plan, item, req); err != nil {
		return nil, err
	}

	record, err := rc.Expenses.Find(planID, itemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NotFound("no expense has been reported for this item yet")
	}

	record.IsPaid = !record.IsPaid
	if err := rc.persist(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Submit turns the assignee's draft report in. The report must carry either
// an actual amount or at least one evidence entry.
func (rc *Reconciler) Submit(planID, itemID uuid.UUID, req budget.Requester) (*Record, error) {
	plan, err := rc.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	item := plan.Item(itemID)
	if item == nil {
		return nil, apperror.NotFound("item not found in budget")
	}
	if item.AssignedTo == nil {
		return nil, apperror.InvalidState("item has not been assigned to a member")
	}
	if *item.AssignedTo != req.MemberID {
		return nil, apperror.Forbidden("only the assigned member can submit this expense report")
	}

	record, err := rc.Expenses.Find(planID, itemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NotFound("no expense has been reported for this item yet")
	}
	if record.ActualAmount.Sign() <= 0 && len(record.Evidence) == 0 {
		return nil, apperror.Validation("an actual amount or at least one evidence entry is required before submitting")
	}

	record.SubmitStatus = SubmitSubmitted
	if err := rc.persist(record); err != nil {
		return nil, err
	}
	rc.Notify.ExpenseSubmitted(plan.EventID, plan.DepartmentID, planID, itemID)
	return record, nil
}

// UndoSubmit reopens a submitted report for editing.
func (rc *Reconciler) UndoSubmit(planID, itemID uuid.UUID, req budget.Requester) (*Record, error) {
	plan, err := rc.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	item := plan.Item(itemID)
	if item == nil {
		return nil, apperror.NotFound("item not found in budget")
	}
	if item.AssignedTo == nil || *item.AssignedTo != req.MemberID {
		return nil, apperror.Forbidden("only the assigned member can reopen this expense report")
	}

	record, err := rc.Expenses.Find(planID, itemID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.NotFound("no expense has been reported for this item yet")
	}
	if record.SubmitStatus != SubmitSubmitted {
		return nil, apperror.InvalidState("expense report has not been submitted")
	}

	record.SubmitStatus = SubmitDraft
	if err := rc.persist(record); err != nil {
		return nil, err
	}
	return record, nil
}
