package budget

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
)

// AssignItem hands one approved item to a member of the owning department, or
// clears the assignment when assignee is nil. This is the only place the
// assignment fields are written; SendToMembers merely reads them.
func (w *Workflow) AssignItem(planID, itemID uuid.UUID, assignee *uuid.UUID, req Requester) (*BudgetItem, error) {
	plan, err := w.planFor(planID, req)
	if err != nil {
		return nil, err
	}
	if plan.Status != StatusApproved {
		return nil, apperror.InvalidState("items can only be assigned while the budget is approved")
	}
	if !Allowed(req, plan.DepartmentID, OpAssign) {
		return nil, apperror.Forbidden("only the head of this department can assign its budget items")
	}

	item := plan.Item(itemID)
	if item == nil {
		return nil, apperror.NotFound("item not found in budget")
	}

	if assignee == nil {
		item.AssignedTo = nil
		item.AssignedAt = nil
		item.AssignedBy = ""
		plan.AppendAudit(req.UserID, "item_unassigned", item.Name)
	} else {
		member, err := w.Members.ResolveMember(*assignee, plan.EventID, plan.DepartmentID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, apperror.Validation("assignee is not an active member of this department")
		}
		now := time.Now()
		item.AssignedTo = assignee
		item.AssignedAt = &now
		item.AssignedBy = req.UserID
		plan.AppendAudit(req.UserID, "item_assigned", item.Name)
	}

	if err := w.Store.Save(plan); err != nil {
		return nil, err
	}
	if assignee != nil {
		w.Notify.ItemAssigned(plan.EventID, plan.DepartmentID, plan.ID, itemID, *assignee)
	}
	return item, nil
}
