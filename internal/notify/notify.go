package notify

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

// Notification kinds mirror the budget lifecycle moments worth telling
// someone about. Delivery (push, email) is another service's job; this
// module only records the trigger.
const (
	KindSubmitted        = "budget_submitted"
	KindApproved         = "budget_approved"
	KindRejected         = "budget_rejected"
	KindSentToMembers    = "budget_sent_to_members"
	KindItemAssigned     = "budget_item_assigned"
	KindExpenseReported  = "expense_reported"
	KindExpenseSubmitted = "expense_submitted"
)

// Sink receives lifecycle triggers. Every call is fire-and-forget: a sink
// must never fail the operation that signalled it, so no method returns an
// error.
type Sink interface {
	Submitted(eventID, departmentID, planID uuid.UUID)
	Approved(eventID, departmentID, planID uuid.UUID)
	Rejected(eventID, departmentID, planID uuid.UUID)
	SentToMembers(eventID, departmentID, planID uuid.UUID)
	ItemAssigned(eventID, departmentID, planID, itemID, memberID uuid.UUID)
	ExpenseReported(eventID, departmentID, planID, itemID uuid.UUID)
	ExpenseSubmitted(eventID, departmentID, planID, itemID uuid.UUID)
}

// Notification is one outbox row for the delivery service to pick up.
type Notification struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	DepartmentID uuid.UUID  `gorm:"type:uuid;not null" json:"department_id"`
	PlanID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"plan_id"`
	ItemID       *uuid.UUID `gorm:"type:uuid" json:"item_id,omitempty"`
	Recipient    *uuid.UUID `gorm:"type:uuid" json:"recipient,omitempty"`
	Kind         string     `gorm:"not null" json:"kind"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Notification) TableName() string { return "notify.notifications" }

// Outbox persists notification triggers as rows. Insert failures are logged
// and swallowed.
type Outbox struct{}

func (Outbox) record(n Notification) {
	if err := db.DB.Create(&n).Error; err != nil {
		log.Println("notify: failed to record", n.Kind, "notification:", err)
	}
}

func (o Outbox) Submitted(eventID, departmentID, planID uuid.UUID) {
	o.record(Notification{EventID: eventID, DepartmentID: departmentID, PlanID: planID, Kind: KindSubmitted})
}

func (o Outbox) Approved(eventID, departmentID, planID uuid.UUID) {
	o.record(Notification{EventID: eventID, DepartmentID: departmentID, PlanID: planID, Kind: KindApproved})
}

func (o Outbox) Rejected(eventID, departmentID, planID uuid.UUID) {
	o.record(Notification{EventID: eventID, DepartmentID: departmentID, PlanID: planID, Kind: KindRejected})
}

func (o Outbox) SentToMembers(eventID, departmentID, planID uuid.UUID) {
	o.record(Notification{EventID: eventID, DepartmentID: departmentID, PlanID: planID, Kind: KindSentToMembers})
}

func (o Outbox) ItemAssigned(eventID, departmentID, planID, itemID, memberID uuid.UUID) {
	o.record(Notification{
		EventID: eventID, DepartmentID: departmentID, PlanID: planID,
		ItemID: &itemID, Recipient: &memberID, Kind: KindItemAssigned,
	})
}

func (o Outbox) ExpenseReported(eventID, departmentID, planID, itemID uuid.UUID) {
	o.record(Notification{
		EventID: eventID, DepartmentID: departmentID, PlanID: planID,
		ItemID: &itemID, Kind: KindExpenseReported,
	})
}

func (o Outbox) ExpenseSubmitted(eventID, departmentID, planID, itemID uuid.UUID) {
	o.record(Notification{
		EventID: eventID, DepartmentID: departmentID, PlanID: planID,
		ItemID: &itemID, Kind: KindExpenseSubmitted,
	})
}
