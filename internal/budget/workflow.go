package budget

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
	"github.com/minhdangfptu/myFEvent-sub001/internal/notify"
)

// ExpenseLookup is the read-only bridge to the expense module: actuals are
// merged into plan views but never stored alongside the plan. The expense
// module plugs its implementation in at startup.
type ExpenseLookup interface {
	ForPlan(planID uuid.UUID) (map[uuid.UUID]ExpenseInfo, error)
}

// ExpenseInfo is the per-item slice of an expense record a projection needs.
type ExpenseInfo struct {
	ActualAmount    decimal.Decimal
	EstimatedTotal  decimal.Decimal
	Evidence        EvidenceList
	MemberNote      string
	IsPaid          bool
	Comparison      string
	SubmittedStatus string
	ReportedBy      *uuid.UUID
	ReportedAt      *time.Time
}

// Workflow drives the budget lifecycle: authoring, submission, review,
// assignment and the transitions between them.
type Workflow struct {
	Store    Store
	Events   directory.EventDirectory
	Members  directory.MembershipDirectory
	Expenses ExpenseLookup
	Notify   notify.Sink
}

// ItemInput is one item as supplied by the client.
type ItemInput struct {
	ItemID   *uuid.UUID      `json:"item_id,omitempty"`
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Qty      decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Total    decimal.Decimal `json:"total"`
	Status   ItemStatus      `json:"status"`
	Feedback string          `json:"feedback"`
	Evidence []Evidence      `json:"evidence"`
}

// PlanInput carries a create or update payload. Nil slices and pointers mean
// "leave unchanged" on update.
type PlanInput struct {
	Name       string      `json:"name"`
	Currency   string      `json:"currency"`
	IsPublic   *bool       `json:"is_public"`
	Categories []string    `json:"categories"`
	Items      []ItemInput `json:"items"`
}

// ReviewDecision is the reviewer's verdict on one item.
type ReviewDecision struct {
	ItemID   uuid.UUID  `json:"item_id"`
	Status   ItemStatus `json:"status"`
	Feedback string     `json:"feedback"`
}

// planFor loads a plan and pins it to the requester's event; a plan id from
// another event reads as absent rather than leaking its existence.
func (w *Workflow) planFor(planID uuid.UUID, req Requester) (*BudgetPlan, error) {
	plan, err := w.Store.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan.EventID != req.EventID {
		return nil, apperror.NotFound("budget not found")
	}
	return plan, nil
}

func buildItem(planID uuid.UUID, in ItemInput) (BudgetItem, error) {
	status := in.Status
	if status == "" {
		status = ItemPending
	}
	if !status.Valid() {
		return BudgetItem{}, apperror.Validationf("invalid item status %q", in.Status)
	}
	// Approval only ever comes out of the review merge; incoming items cannot
	// carry it.
	if status == ItemApproved {
		status = ItemPending
	}
	if in.Qty.Sign() < 0 || in.UnitCost.Sign() < 0 || in.Total.Sign() < 0 {
		return BudgetItem{}, apperror.Validation("monetary values cannot be negative")
	}

	id := uuid.New()
	if in.ItemID != nil && *in.ItemID != uuid.Nil {
		id = *in.ItemID
	}

	item := BudgetItem{
		ItemID:   id,
		PlanID:   planID,
		Category: strings.TrimSpace(in.Category),
		Name:     strings.TrimSpace(in.Name),
		Unit:     strings.TrimSpace(in.Unit),
		Qty:      in.Qty,
		UnitCost: in.UnitCost,
		Total:    in.Total,
		Status:   status,
		Feedback: in.Feedback,
		Evidence: SanitizeEvidence(in.Evidence),
	}
	item.RecomputeTotal()
	return item, nil
}

// Create opens a new plan in draft for the requester's department.
func (w *Workflow) Create(eventID, departmentID uuid.UUID, req Requester, in PlanInput) (*BudgetPlan, error) {
	exists, err := w.Events.Exists(eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("event not found")
	}
	dept, err := w.Events.DepartmentInEvent(eventID, departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperror.NotFound("department not found in this event")
	}
	if !Allowed(req, departmentID, OpCreate) {
		return nil, apperror.Forbidden("only the head of this department can create its budget")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("budget name is required")
	}
	if len(in.Items) == 0 {
		return nil, apperror.Validation("a budget needs at least one item")
	}

	plan := &BudgetPlan{
		ID:           uuid.New(),
		EventID:      eventID,
		DepartmentID: departmentID,
		Name:         name,
		Currency:     strings.TrimSpace(in.Currency),
		Status:       StatusDraft,
		Categories:   in.Categories,
		CreatedBy:    req.UserID,
	}
	if plan.Currency == "" {
		plan.Currency = "VND"
	}
	if in.IsPublic != nil {
		plan.IsPublic = *in.IsPublic
	}

	for _, itemIn := range in.Items {
		item, err := buildItem(plan.ID, itemIn)
		if err != nil {
			return nil, err
		}
		plan.Items = append(plan.Items, item)
	}

	plan.AppendAudit(req.UserID, "created", "")
	if err := w.Store.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Update rewrites a plan's editable fields while it is still in the author's
// hands. The item array is replaced wholesale here; every other write path
// mutates items by id.
func (w *Workflow) Update(planID uuid.UUID, req Requester, in PlanInput) (*BudgetPlan, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpUpdate) {
		return nil, apperror.Forbidden("only the head of this department can edit its budget")
	}
	if plan.Status != StatusDraft && plan.Status != StatusChangesRequested {
		return nil, apperror.InvalidState("only a draft or changes-requested budget can be edited")
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		plan.Name = name
	}
	if currency := strings.TrimSpace(in.Currency); currency != "" {
		plan.Currency = currency
	}
	if in.IsPublic != nil {
		plan.IsPublic = *in.IsPublic
	}
	if in.Categories != nil {
		plan.Categories = in.Categories
	}
	if in.Items != nil {
		if len(in.Items) == 0 {
			return nil, apperror.Validation("a budget needs at least one item")
		}
		items := make([]BudgetItem, 0, len(in.Items))
		for _, itemIn := range in.Items {
			item, err := buildItem(plan.ID, itemIn)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		plan.Items = items
	}

	plan.AppendAudit(req.UserID, "updated", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Submit moves the plan to the reviewer's queue. Approvals granted in an
// earlier review round survive a resubmission; every other item starts over
// as pending with its feedback cleared, and no item may arrive pre-approved.
func (w *Workflow) Submit(planID uuid.UUID, req Requester) (*BudgetPlan, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpSubmit) {
		return nil, apperror.Forbidden("only the head of this department can submit its budget")
	}
	next, err := Transition(plan.Status, OpSubmit)
	if err != nil {
		return nil, err
	}

	switch {
	case plan.Status == StatusChangesRequested:
		for i := range plan.Items {
			if plan.Items[i].Status != ItemApproved {
				plan.Items[i].Status = ItemPending
				plan.Items[i].Feedback = ""
			}
		}
	case plan.Status != StatusApproved && plan.Status != StatusSentToMembers:
		// Items cannot self-declare approval before the plan has been reviewed.
		for i := range plan.Items {
			if plan.Items[i].Status == ItemApproved {
				plan.Items[i].Status = ItemPending
			}
		}
	}

	named := 0
	for i := range plan.Items {
		plan.Items[i].Evidence = SanitizeEvidence(plan.Items[i].Evidence)
		plan.Items[i].RecomputeTotal()
		if strings.TrimSpace(plan.Items[i].Name) != "" {
			named++
		}
	}
	if named == 0 {
		return nil, apperror.Validation("budget needs at least one named item before submitting")
	}

	now := time.Now()
	plan.Status = next
	plan.SubmittedAt = &now
	plan.AppendAudit(req.UserID, "submitted", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	w.Notify.Submitted(plan.EventID, plan.DepartmentID, plan.ID)
	return plan, nil
}

// Recall pulls a submitted plan back to draft before the review concludes.
func (w *Workflow) Recall(planID uuid.UUID, req Requester) (*BudgetPlan, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpRecall) {
		return nil, apperror.Forbidden("only the head of this department can recall its budget")
	}
	next, err := Transition(plan.Status, OpRecall)
	if err != nil {
		return nil, err
	}

	plan.Status = next
	plan.AppendAudit(req.UserID, "recalled", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (w *Workflow) review(planID uuid.UUID, req Requester, decisions []ReviewDecision, comment string, final bool) (*BudgetPlan, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpReview) {
		return nil, apperror.Forbidden("only the organizing committee head can review budgets")
	}
	if _, err := Transition(plan.Status, OpReview); err != nil {
		return nil, err
	}
	if final && len(decisions) == 0 {
		return nil, apperror.Validation("review decisions are required")
	}

	for _, decision := range decisions {
		item := plan.Item(decision.ItemID)
		if item == nil {
			return nil, apperror.NotFound("item not found in budget")
		}
		if !decision.Status.Valid() {
			return nil, apperror.Validationf("invalid review status %q", decision.Status)
		}
		item.Status = decision.Status
		item.Feedback = decision.Feedback
	}

	plan.Status = AggregateStatus(plan.Items)

	action := "review_draft_saved"
	if final {
		action = "review_completed"
	}
	plan.AppendAudit(req.UserID, action, comment)
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}

	if final {
		switch plan.Status {
		case StatusApproved:
			w.Notify.Approved(plan.EventID, plan.DepartmentID, plan.ID)
		case StatusChangesRequested:
			w.Notify.Rejected(plan.EventID, plan.DepartmentID, plan.ID)
		}
	}
	return plan, nil
}

// SaveReviewDraft lets the reviewer record partial decisions without closing
// the review round.
func (w *Workflow) SaveReviewDraft(planID uuid.UUID, req Requester, decisions []ReviewDecision) (*BudgetPlan, error) {
	return w.review(planID, req, decisions, "", false)
}

// CompleteReview merges the reviewer's decisions and settles the plan status
// by the aggregate rule: one rejection requests changes, unanimous approval
// approves, anything still pending keeps the plan in the queue.
func (w *Workflow) CompleteReview(planID uuid.UUID, req Requester, decisions []ReviewDecision, comment string) (*BudgetPlan, error) {
	return w.review(planID, req, decisions, comment, true)
}

// SendToMembers hands an approved plan to its assignees for execution. Every
// item must already be assigned; assignment itself happens in AssignItem.
func (w *Workflow) SendToMembers(planID uuid.UUID, req Requester) (*BudgetPlan, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpSendToMembers) {
		return nil, apperror.Forbidden("only the head of this department can send its budget to members")
	}
	next, err := Transition(plan.Status, OpSendToMembers)
	if err != nil {
		return nil, err
	}
	for i := range plan.Items {
		if plan.Items[i].AssignedTo == nil {
			return nil, apperror.Validation("every item must be assigned to a member before sending")
		}
	}

	plan.Status = next
	plan.AppendAudit(req.UserID, "sent_to_members", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	w.Notify.SentToMembers(plan.EventID, plan.DepartmentID, plan.ID)
	return plan, nil
}

// Delete removes a plan that never left the author's hands.
func (w *Workflow) Delete(planID uuid.UUID, req Requester) error {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return err
	}
	if !Allowed(req, plan.DepartmentID, OpDelete) {
		return apperror.Forbidden("only the head of this department can delete its budget")
	}
	if err := DeleteGuard(plan.Status); err != nil {
		return err
	}
	return w.Store.Delete(planID)
}

// UpdateCategories replaces the plan's category list.
func (w *Workflow) UpdateCategories(planID uuid.UUID, req Requester, categories []string) (*BudgetPlan, error) {
	if categories == nil {
		return nil, apperror.Validation("categories must be an array")
	}
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpUpdateCategories) {
		return nil, apperror.Forbidden("only the head of this department can edit its budget categories")
	}

	plan.Categories = categories
	plan.AppendAudit(req.UserID, "categories_updated", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdateVisibility flips whether members outside the owning department can
// see the plan.
func (w *Workflow) UpdateVisibility(planID uuid.UUID, req Requester, isPublic *bool) (*BudgetPlan, error) {
	if isPublic == nil {
		return nil, apperror.Validation("is_public must be a boolean")
	}
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if !Allowed(req, plan.DepartmentID, OpUpdateVisibility) {
		return nil, apperror.Forbidden("only the head of this department can change its budget visibility")
	}

	plan.IsPublic = *isPublic
	plan.AppendAudit(req.UserID, "visibility_updated", "")
	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ListForDepartment returns the department's plans visible to the requester.
func (w *Workflow) ListForDepartment(eventID, departmentID uuid.UUID, req Requester) ([]BudgetPlan, error) {
	dept, err := w.Events.DepartmentInEvent(eventID, departmentID)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, apperror.NotFound("department not found in this event")
	}
	plans, err := w.Store.ByDepartment(eventID, departmentID)
	if err != nil {
		return nil, err
	}
	return filterVisible(plans, req), nil
}

// ListForEvent returns every plan of the event the requester may see.
func (w *Workflow) ListForEvent(eventID uuid.UUID, req Requester) ([]BudgetPlan, error) {
	exists, err := w.Events.Exists(eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("event not found")
	}
	plans, err := w.Store.ByEvent(eventID)
	if err != nil {
		return nil, err
	}
	return filterVisible(plans, req), nil
}

// filterVisible hides non-public plans from everyone outside the owning
// department except the reviewer.
func filterVisible(plans []BudgetPlan, req Requester) []BudgetPlan {
	if req.Role == RoleHoOC {
		return plans
	}
	visible := make([]BudgetPlan, 0, len(plans))
	for _, plan := range plans {
		if plan.IsPublic || req.sameDepartment(plan.DepartmentID) {
			visible = append(visible, plan)
		}
	}
	return visible
}
