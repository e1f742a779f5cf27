package expense

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

// Store is the persistence boundary for expense records.
type Store interface {
	// Find returns (nil, nil) when no record exists for the pair yet.
	Find(planID, itemID uuid.UUID) (*Record, error)
	ForPlan(planID uuid.UUID) ([]Record, error)
	// Save creates or replaces the record for its (plan, item) pair.
	Save(record *Record) error
}

type GormStore struct{}

func NewGormStore() *GormStore { return &GormStore{} }

func (s *GormStore) Find(planID, itemID uuid.UUID) (*Record, error) {
	var record Record
	err := db.DB.First(&record, "plan_id = ? AND item_id = ?", planID, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) ForPlan(planID uuid.UUID) ([]Record, error) {
	var records []Record
	err := db.DB.Where("plan_id = ?", planID).Find(&records).Error
	return records, err
}

func (s *GormStore) Save(record *Record) error {
	return db.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

// Lookup adapts the store to the budget module's read-side bridge.
type Lookup struct {
	Store Store
}

func (l Lookup) ForPlan(planID uuid.UUID) (map[uuid.UUID]budget.ExpenseInfo, error) {
	records, err := l.Store.ForPlan(planID)
	if err != nil {
		return nil, err
	}
	result := make(map[uuid.UUID]budget.ExpenseInfo, len(records))
	for i := range records {
		rec := records[i]
		reportedBy := rec.ReportedBy
		reportedAt := rec.ReportedAt
		result[rec.ItemID] = budget.ExpenseInfo{
			ActualAmount:    rec.ActualAmount,
			EstimatedTotal:  rec.EstimatedTotal,
			Evidence:        rec.Evidence,
			MemberNote:      rec.MemberNote,
			IsPaid:          rec.IsPaid,
			Comparison:      string(rec.Comparison),
			SubmittedStatus: string(rec.SubmitStatus),
			ReportedBy:      &reportedBy,
			ReportedAt:      &reportedAt,
		}
	}
	return result, nil
}
