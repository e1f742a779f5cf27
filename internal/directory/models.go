package directory

import (
	"time"

	"github.com/google/uuid"
)

// Event is an organized event that owns departments and budget plans.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Event) TableName() string { return "directory.events" }

// Department groups members inside one event and owns budget proposals.
type Department struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Name       string    `gorm:"not null" json:"name"`
	HeadUserID string    `gorm:"index" json:"head_user_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Department) TableName() string { return "directory.departments" }

// Member is one user's membership in one event. The same user holds one
// membership per event; the membership id (not the user id) is what budget
// items are assigned to.
type Member struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID       string     `gorm:"not null;index" json:"user_id"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index" json:"department_id,omitempty"`
	Role         string     `gorm:"not null;default:'member'" json:"role"` // hooc, hod, member
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Member) TableName() string { return "directory.members" }

// Session rows are written by the auth service; this service only reads them.
type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}

func (Session) TableName() string { return "directory.sessions" }
