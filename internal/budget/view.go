package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
)

// AssigneeInfo is a resolved member identity for display.
type AssigneeInfo struct {
	MemberID uuid.UUID `json:"memberId"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// ItemView merges one item with its expense record, if any. The department
// head's evidence and the member's evidence stay separate lists: provenance
// matters during reconciliation.
type ItemView struct {
	ItemID         uuid.UUID       `json:"itemId"`
	Category       string          `json:"category"`
	Name           string          `json:"name"`
	Unit           string          `json:"unit"`
	Qty            decimal.Decimal `json:"qty"`
	UnitCost       decimal.Decimal `json:"unitCost"`
	Total          decimal.Decimal `json:"total"`
	Status         ItemStatus      `json:"status"`
	Feedback       string          `json:"feedback,omitempty"`
	HodEvidence    []Evidence      `json:"hodEvidence"`
	AssignedTo     *uuid.UUID      `json:"assignedTo,omitempty"`
	AssignedToInfo *AssigneeInfo   `json:"assignedToInfo,omitempty"`

	ActualAmount    decimal.Decimal `json:"actualAmount"`
	MemberEvidence  []Evidence      `json:"memberEvidence"`
	MemberNote      string          `json:"memberNote,omitempty"`
	IsPaid          bool            `json:"isPaid"`
	Comparison      string          `json:"comparison,omitempty"`
	SubmittedStatus string          `json:"submittedStatus"`
	ReportedBy      *uuid.UUID      `json:"reportedBy,omitempty"`
	ReportedAt      *time.Time      `json:"reportedAt,omitempty"`
}

// PlanView is the display shape of a plan: items joined with actuals plus the
// running variance between estimate and spend.
type PlanView struct {
	ID             uuid.UUID       `json:"id"`
	EventID        uuid.UUID       `json:"eventId"`
	DepartmentID   uuid.UUID       `json:"departmentId"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	IsPublic       bool            `json:"isPublic"`
	Status         PlanStatus      `json:"status"`
	Version        int             `json:"version"`
	Categories     []string        `json:"categories"`
	SubmittedAt    *time.Time      `json:"submittedAt,omitempty"`
	CreatedBy      string          `json:"createdBy"`
	Items          []ItemView      `json:"items"`
	Audit          []AuditEntry    `json:"audit,omitempty"`
	TotalEstimated decimal.Decimal `json:"totalEstimated"`
	TotalActual    decimal.Decimal `json:"totalActual"`
	Variance       decimal.Decimal `json:"variance"`
}

// BuildPlanView assembles the projection from already-loaded pieces. Pure
// read: it tolerates a missing expense record per item and performs no store
// writes.
func BuildPlanView(plan *BudgetPlan, expenses map[uuid.UUID]ExpenseInfo, members map[uuid.UUID]directory.Member) *PlanView {
	view := &PlanView{
		ID:             plan.ID,
		EventID:        plan.EventID,
		DepartmentID:   plan.DepartmentID,
		Name:           plan.Name,
		Currency:       plan.Currency,
		IsPublic:       plan.IsPublic,
		Status:         plan.Status,
		Version:        plan.Version,
		Categories:     plan.Categories,
		SubmittedAt:    plan.SubmittedAt,
		CreatedBy:      plan.CreatedBy,
		Audit:          plan.Audit,
		TotalEstimated: decimal.Zero,
		TotalActual:    decimal.Zero,
	}

	for i := range plan.Items {
		item := &plan.Items[i]
		iv := ItemView{
			ItemID:          item.ItemID,
			Category:        item.Category,
			Name:            item.Name,
			Unit:            item.Unit,
			Qty:             item.Qty,
			UnitCost:        item.UnitCost,
			Total:           item.Total,
			Status:          item.Status,
			Feedback:        item.Feedback,
			HodEvidence:     item.Evidence,
			AssignedTo:      item.AssignedTo,
			ActualAmount:    decimal.Zero,
			MemberEvidence:  []Evidence{},
			SubmittedStatus: "draft",
		}
		if iv.HodEvidence == nil {
			iv.HodEvidence = []Evidence{}
		}
		if item.AssignedTo != nil {
			if member, ok := members[*item.AssignedTo]; ok {
				iv.AssignedToInfo = &AssigneeInfo{
					MemberID: member.ID,
					FullName: member.FullName,
					Email:    member.Email,
				}
			}
		}
		if exp, ok := expenses[item.ItemID]; ok {
			iv.ActualAmount = exp.ActualAmount
			iv.MemberEvidence = exp.Evidence
			if iv.MemberEvidence == nil {
				iv.MemberEvidence = []Evidence{}
			}
			iv.MemberNote = exp.MemberNote
			iv.IsPaid = exp.IsPaid
			iv.Comparison = exp.Comparison
			iv.SubmittedStatus = exp.SubmittedStatus
			iv.ReportedBy = exp.ReportedBy
			iv.ReportedAt = exp.ReportedAt
		}

		view.TotalEstimated = view.TotalEstimated.Add(item.Total)
		view.TotalActual = view.TotalActual.Add(iv.ActualAmount)
		view.Items = append(view.Items, iv)
	}

	view.Variance = view.TotalActual.Sub(view.TotalEstimated)
	return view
}

// GetView loads a plan and assembles its display projection for the requester.
func (w *Workflow) GetView(planID uuid.UUID, req Requester) (*PlanView, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if req.Role != RoleHoOC && !plan.IsPublic && !req.sameDepartment(plan.DepartmentID) {
		return nil, apperror.Forbidden("this budget is not visible to members outside its department")
	}

	var expenses map[uuid.UUID]ExpenseInfo
	if w.Expenses != nil {
		expenses, err = w.Expenses.ForPlan(planID)
		if err != nil {
			return nil, err
		}
	}

	var assigneeIDs []uuid.UUID
	for i := range plan.Items {
		if plan.Items[i].AssignedTo != nil {
			assigneeIDs = append(assigneeIDs, *plan.Items[i].AssignedTo)
		}
	}
	members, err := w.Members.MembersByID(plan.EventID, assigneeIDs)
	if err != nil {
		return nil, err
	}

	return BuildPlanView(plan, expenses, members), nil
}
