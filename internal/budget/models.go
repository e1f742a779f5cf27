package budget

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Evidence is one attachment descriptor backing a planned or actual expense.
type Evidence struct {
	Type string `json:"type"` // image, pdf, doc, link
	URL  string `json:"url"`
	Name string `json:"name"`
}

var evidenceTypes = map[string]struct{}{
	"image": {},
	"pdf":   {},
	"doc":   {},
	"link":  {},
}

// EvidenceList stores attachments as a jsonb column.
type EvidenceList []Evidence

func (e EvidenceList) Value() (driver.Value, error) {
	if e == nil {
		e = EvidenceList{}
	}
	return json.Marshal(e)
}

func (e *EvidenceList) Scan(value interface{}) error {
	if value == nil {
		*e = EvidenceList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("evidence: unsupported column type")
		}
	}
	return json.Unmarshal(bytes, e)
}

func (EvidenceList) GormDataType() string { return "jsonb" }

// SanitizeEvidence drops entries missing a url or a name and coerces unknown
// types to "link". Applied on every write path so malformed attachments never
// reach storage.
func SanitizeEvidence(in []Evidence) EvidenceList {
	out := make(EvidenceList, 0, len(in))
	for _, ev := range in {
		ev.URL = strings.TrimSpace(ev.URL)
		ev.Name = strings.TrimSpace(ev.Name)
		if ev.URL == "" || ev.Name == "" {
			continue
		}
		if _, ok := evidenceTypes[ev.Type]; !ok {
			ev.Type = "link"
		}
		out = append(out, ev)
	}
	return out
}

// BudgetPlan is one department's budget proposal for one event. A department
// may hold several plans per event; there is deliberately no unique index on
// (event_id, department_id).
type BudgetPlan struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_id"`
	DepartmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"department_id"`
	Name         string         `gorm:"not null" json:"name"`
	Currency     string         `gorm:"default:'VND'" json:"currency"`
	IsPublic     bool           `gorm:"default:false" json:"is_public"`
	Status       PlanStatus     `gorm:"not null;default:'draft'" json:"status"`
	Version      int            `gorm:"not null;default:0" json:"version"`
	Categories   pq.StringArray `gorm:"type:text[]" json:"categories"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	Items []BudgetItem `gorm:"foreignKey:PlanID" json:"items"`
	Audit []AuditEntry `gorm:"foreignKey:PlanID" json:"audit,omitempty"`

	// Audit entries appended during the current operation, drained by the
	// store on a successful save.
	pendingAudit []AuditEntry
}

func (BudgetPlan) TableName() string { return "budget.plans" }

// Item returns the embedded item with the given id, or nil. Mutations go
// through this accessor so items are always changed by key.
func (p *BudgetPlan) Item(itemID uuid.UUID) *BudgetItem {
	for i := range p.Items {
		if p.Items[i].ItemID == itemID {
			return &p.Items[i]
		}
	}
	return nil
}

// AppendAudit records who did what on the plan. The entry becomes durable
// together with the plan on the next save.
func (p *BudgetPlan) AppendAudit(by, action, comment string) {
	entry := AuditEntry{
		ID:      uuid.New(),
		PlanID:  p.ID,
		At:      time.Now(),
		By:      by,
		Action:  action,
		Comment: comment,
	}
	p.Audit = append(p.Audit, entry)
	p.pendingAudit = append(p.pendingAudit, entry)
}

func (p *BudgetPlan) drainPendingAudit() []AuditEntry {
	pending := p.pendingAudit
	p.pendingAudit = nil
	return pending
}

// BudgetItem is one planned purchase inside a plan.
type BudgetItem struct {
	ItemID   uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"item_id"`
	PlanID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"plan_id"`
	Category string          `json:"category"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Qty      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"qty"`
	UnitCost decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_cost"`
	Total    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total"`
	Status   ItemStatus      `gorm:"not null;default:'pending'" json:"status"`
	Feedback string          `json:"feedback"`
	Evidence EvidenceList    `gorm:"type:jsonb" json:"evidence"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	AssignedBy string     `json:"assigned_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BudgetItem) TableName() string { return "budget.items" }

// RecomputeTotal derives total from qty × unit cost whenever both are
// meaningful, keeping a caller-supplied total only as a fallback. Repeated
// recomputation is stable because the math stays in decimal space.
func (it *BudgetItem) RecomputeTotal() {
	computed := it.Qty.Mul(it.UnitCost)
	if computed.Sign() > 0 {
		it.Total = computed
	} else if it.Total.Sign() < 0 {
		it.Total = decimal.Zero
	}
}

// AuditEntry is one append-only line of a plan's action history.
type AuditEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID  uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	At      time.Time `gorm:"not null" json:"at"`
	By      string    `gorm:"not null" json:"by"`
	Action  string    `gorm:"not null" json:"action"`
	Comment string    `json:"comment,omitempty"`
}

func (AuditEntry) TableName() string { return "budget.audit_entries" }
