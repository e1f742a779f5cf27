package budget

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/utils"
)

// Engine is wired by Init and shared by every handler in this package.
var Engine *Workflow

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validationf("invalid %s", what)
	}
	return id, nil
}

// RequesterFrom resolves the session user into their membership for the
// event named in the URL. Shared with the expense module's handlers.
func RequesterFrom(r *http.Request) (Requester, error) {
	eventID, err := parseID(chi.URLParam(r, "event_id"), "event id")
	if err != nil {
		return Requester{}, err
	}
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return Requester{}, apperror.Forbidden("missing user identity")
	}
	membership, err := Engine.Members.MembershipOf(eventID, userID)
	if err != nil {
		return Requester{}, err
	}
	if membership == nil {
		return Requester{}, apperror.Forbidden("you are not an active member of this event")
	}
	return Requester{
		UserID:       userID,
		MemberID:     membership.MemberID,
		EventID:      eventID,
		Role:         Role(membership.Role),
		DepartmentID: membership.DepartmentID,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ListEventBudgets returns every plan of the event visible to the requester.
func ListEventBudgets(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	plans, err := Engine.ListForEvent(req.EventID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// ListDepartmentBudgets returns one department's plans.
func ListDepartmentBudgets(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	deptID, err := parseID(chi.URLParam(r, "department_id"), "department id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	plans, err := Engine.ListForDepartment(req.EventID, deptID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// GetEventStatistics returns the event's budget dashboard numbers.
func GetEventStatistics(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	stats, err := Engine.Statistics(req.EventID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateBudget opens a draft plan for a department.
func CreateBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	deptID, err := parseID(chi.URLParam(r, "department_id"), "department id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var in PlanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	plan, err := Engine.Create(req.EventID, deptID, req, in)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// GetBudget returns the merged plan view (items joined with actuals).
func GetBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	view, err := Engine.GetView(planID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateBudget rewrites an editable plan.
func UpdateBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var in PlanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	plan, err := Engine.Update(planID, req, in)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeleteBudget removes a plan still in the author's hands.
func DeleteBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := Engine.Delete(planID, req); err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted"})
}

// SubmitBudget sends the plan to review.
func SubmitBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	plan, err := Engine.Submit(planID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// RecallBudget pulls a submitted plan back to draft.
func RecallBudget(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	plan, err := Engine.Recall(planID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type reviewPayload struct {
	Items   []ReviewDecision `json:"items"`
	Comment string           `json:"comment"`
}

// SaveReviewDraft records partial reviewer decisions.
func SaveReviewDraft(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var payload reviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	plan, err := Engine.SaveReviewDraft(planID, req, payload.Items)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// CompleteReview settles the review round.
func CompleteReview(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var payload reviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	plan, err := Engine.CompleteReview(planID, req, payload.Items, payload.Comment)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// UpdateCategories replaces the plan's category list.
func UpdateCategories(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var payload struct {
		Categories []string `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	plan, err := Engine.UpdateCategories(planID, req, payload.Categories)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// UpdateVisibility toggles whether outsiders can see the plan.
func UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var payload struct {
		IsPublic *bool `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperror.Write(w, apperror.Validation("is_public must be a boolean"))
		return
	}
	plan, err := Engine.UpdateVisibility(planID, req, payload.IsPublic)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// SendToMembers releases an approved plan to its assignees.
func SendToMembers(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	plan, err := Engine.SendToMembers(planID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// AssignBudgetItem sets or clears one item's assignee.
func AssignBudgetItem(w http.ResponseWriter, r *http.Request) {
	req, err := RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, err := parseID(chi.URLParam(r, "plan_id"), "budget id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	itemID, err := parseID(chi.URLParam(r, "item_id"), "item id")
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var payload struct {
		AssignedTo *string `json:"assigned_to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	var assignee *uuid.UUID
	if payload.AssignedTo != nil {
		id, err := parseID(*payload.AssignedTo, "member id")
		if err != nil {
			apperror.Write(w, err)
			return
		}
		assignee = &id
	}
	item, err := Engine.AssignItem(planID, itemID, assignee, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
