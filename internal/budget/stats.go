package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
)

// DepartmentStats aggregates one department's plans for the event dashboard.
type DepartmentStats struct {
	DepartmentID   uuid.UUID       `json:"departmentId"`
	Plans          int             `json:"plans"`
	TotalEstimated decimal.Decimal `json:"totalEstimated"`
	TotalActual    decimal.Decimal `json:"totalActual"`
}

// EventStats summarizes an event's budget activity.
type EventStats struct {
	EventID        uuid.UUID          `json:"eventId"`
	TotalPlans     int                `json:"totalPlans"`
	ByStatus       map[PlanStatus]int `json:"byStatus"`
	TotalEstimated decimal.Decimal    `json:"totalEstimated"`
	TotalActual    decimal.Decimal    `json:"totalActual"`
	Variance       decimal.Decimal    `json:"variance"`
	ByDepartment   []DepartmentStats  `json:"byDepartment"`
}

// Statistics computes per-event totals by joining plans with their reported
// actuals. Read-only; visible to any event member.
func (w *Workflow) Statistics(eventID uuid.UUID) (*EventStats, error) {
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

	stats := &EventStats{
		EventID:        eventID,
		TotalPlans:     len(plans),
		ByStatus:       make(map[PlanStatus]int),
		TotalEstimated: decimal.Zero,
		TotalActual:    decimal.Zero,
	}
	perDept := make(map[uuid.UUID]*DepartmentStats)

	for i := range plans {
		plan := &plans[i]
		stats.ByStatus[plan.Status]++

		dept, ok := perDept[plan.DepartmentID]
		if !ok {
			dept = &DepartmentStats{
				DepartmentID:   plan.DepartmentID,
				TotalEstimated: decimal.Zero,
				TotalActual:    decimal.Zero,
			}
			perDept[plan.DepartmentID] = dept
		}
		dept.Plans++

		var expenses map[uuid.UUID]ExpenseInfo
		if w.Expenses != nil {
			expenses, err = w.Expenses.ForPlan(plan.ID)
			if err != nil {
				return nil, err
			}
		}
		for j := range plan.Items {
			item := &plan.Items[j]
			stats.TotalEstimated = stats.TotalEstimated.Add(item.Total)
			dept.TotalEstimated = dept.TotalEstimated.Add(item.Total)
			if exp, ok := expenses[item.ItemID]; ok {
				stats.TotalActual = stats.TotalActual.Add(exp.ActualAmount)
				dept.TotalActual = dept.TotalActual.Add(exp.ActualAmount)
			}
		}
	}

	for _, dept := range perDept {
		stats.ByDepartment = append(stats.ByDepartment, *dept)
	}
	stats.Variance = stats.TotalActual.Sub(stats.TotalEstimated)
	return stats, nil
}
