package expense

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
)

// Engine is wired by Init and shared by every handler in this package.
var Engine *Reconciler

func ids(r *http.Request) (planID, itemID uuid.UUID, err error) {
	planID, err = uuid.Parse(chi.URLParam(r, "plan_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("invalid budget id")
	}
	itemID, err = uuid.Parse(chi.URLParam(r, "item_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.Validation("invalid item id")
	}
	return planID, itemID, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ReportExpense creates or updates the expense record for one item.
func ReportExpense(w http.ResponseWriter, r *http.Request) {
	req, err := budget.RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, itemID, err := ids(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var in ReportInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, apperror.Validation("Invalid request body"))
		return
	}
	record, err := Engine.Report(planID, itemID, in, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// TogglePaid flips the paid flag on an existing record.
func TogglePaid(w http.ResponseWriter, r *http.Request) {
	req, err := budget.RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, itemID, err := ids(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	record, err := Engine.TogglePaid(planID, itemID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// SubmitExpense turns the assignee's draft report in.
func SubmitExpense(w http.ResponseWriter, r *http.Request) {
	req, err := budget.RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, itemID, err := ids(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	record, err := Engine.Submit(planID, itemID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// UndoSubmitExpense reopens a submitted report.
func UndoSubmitExpense(w http.ResponseWriter, r *http.Request) {
	req, err := budget.RequesterFrom(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	planID, itemID, err := ids(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	record, err := Engine.UndoSubmit(planID, itemID, req)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
