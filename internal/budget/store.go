package budget

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

// Store is the persistence boundary for budget plans. It carries no business
// rules beyond the optimistic version check on Save.
type Store interface {
	Create(plan *BudgetPlan) error
	Get(planID uuid.UUID) (*BudgetPlan, error)
	ByDepartment(eventID, departmentID uuid.UUID) ([]BudgetPlan, error)
	ByEvent(eventID uuid.UUID) ([]BudgetPlan, error)
	// Save compare-and-swaps on the version read at load time; a concurrent
	// writer surfaces as a Conflict error and the caller retries.
	Save(plan *BudgetPlan) error
	Delete(planID uuid.UUID) error
}

type GormStore struct{}

func NewGormStore() *GormStore { return &GormStore{} }

func (s *GormStore) Create(plan *BudgetPlan) error {
	pending := plan.drainPendingAudit()
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		if len(pending) > 0 {
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) Get(planID uuid.UUID) (*BudgetPlan, error) {
	var plan BudgetPlan
	err := db.DB.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Audit", func(tx *gorm.DB) *gorm.DB { return tx.Order("at ASC") }).
		First(&plan, "id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("budget not found")
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *GormStore) ByDepartment(eventID, departmentID uuid.UUID) ([]BudgetPlan, error) {
	var plans []BudgetPlan
	err := db.DB.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Where("event_id = ? AND department_id = ?", eventID, departmentID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (s *GormStore) ByEvent(eventID uuid.UUID) ([]BudgetPlan, error) {
	var plans []BudgetPlan
	err := db.DB.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (s *GormStore) Save(plan *BudgetPlan) error {
	pending := plan.drainPendingAudit()
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&BudgetPlan{}).
			Where("id = ? AND version = ?", plan.ID, plan.Version).
			Updates(map[string]interface{}{
				"name":         plan.Name,
				"currency":     plan.Currency,
				"is_public":    plan.IsPublic,
				"status":       plan.Status,
				"categories":   plan.Categories,
				"submitted_at": plan.SubmittedAt,
				"version":      plan.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("budget was modified concurrently, reload and retry")
		}

		// Drop item rows removed from the aggregate, then upsert the rest.
		kept := make([]uuid.UUID, 0, len(plan.Items))
		for i := range plan.Items {
			plan.Items[i].PlanID = plan.ID
			kept = append(kept, plan.Items[i].ItemID)
		}
		itemScope := tx.Where("plan_id = ?", plan.ID)
		if len(kept) > 0 {
			itemScope = itemScope.Where("item_id NOT IN ?", kept)
		}
		if err := itemScope.Delete(&BudgetItem{}).Error; err != nil {
			return err
		}
		if len(plan.Items) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&plan.Items).Error; err != nil {
				return err
			}
		}

		if len(pending) > 0 {
			if err := tx.Create(&pending).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	plan.Version++
	return nil
}

func (s *GormStore) Delete(planID uuid.UUID) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", planID).Delete(&BudgetItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", planID).Delete(&AuditEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&BudgetPlan{}, "id = ?", planID).Error
	})
}
