package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
)

// SubmitStatus is the lifecycle of a member's expense report for one item.
type SubmitStatus string

const (
	SubmitDraft     SubmitStatus = "draft"
	SubmitSubmitted SubmitStatus = "submitted"
)

// Comparison relates actual spend to the estimate. It is always derived from
// the two amounts, never set directly; empty means no actual reported yet.
type Comparison string

const (
	ComparisonGreater Comparison = "greater"
	ComparisonLess    Comparison = "less"
	ComparisonEqual   Comparison = "equal"
	ComparisonNone    Comparison = ""
)

// Compare derives the comparison for an actual amount against the estimate.
func Compare(actual, estimated decimal.Decimal) Comparison {
	if actual.Sign() <= 0 {
		return ComparisonNone
	}
	switch actual.Cmp(estimated) {
	case 1:
		return ComparisonGreater
	case -1:
		return ComparisonLess
	}
	return ComparisonEqual
}

// Record is the single expense report for one budget item. It lives apart
// from the item: the plan aggregate never embeds it, views join the two.
type Record struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID         uuid.UUID           `gorm:"type:uuid;not null;index:idx_expense_plan_item,unique" json:"plan_id"`
	ItemID         uuid.UUID           `gorm:"type:uuid;not null;index:idx_expense_plan_item,unique" json:"item_id"`
	ActualAmount   decimal.Decimal     `gorm:"type:numeric(18,2);not null" json:"actual_amount"`
	EstimatedTotal decimal.Decimal     `gorm:"type:numeric(18,2);not null" json:"estimated_total"`
	Evidence       budget.EvidenceList `gorm:"type:jsonb" json:"evidence"`
	MemberNote     string              `json:"member_note"`
	IsPaid         bool                `gorm:"default:false" json:"is_paid"`
	Comparison     Comparison          `json:"comparison"`
	ReportedBy     uuid.UUID           `gorm:"type:uuid" json:"reported_by"`
	ReportedAt     time.Time           `json:"reported_at"`
	SubmitStatus   SubmitStatus        `gorm:"column:submitted_status;not null;default:'draft'" json:"submitted_status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func (Record) TableName() string { return "expense.records" }
