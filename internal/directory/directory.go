package directory

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

// Membership is the slice of a Member the budget engine needs to authorize a
// request: who they are inside the event, not who they are globally.
type Membership struct {
	MemberID     uuid.UUID
	Role         string
	DepartmentID *uuid.UUID
}

type EventDirectory interface {
	Exists(eventID uuid.UUID) (bool, error)
	// DepartmentInEvent returns nil (not an error) when the department does
	// not belong to the event.
	DepartmentInEvent(eventID, departmentID uuid.UUID) (*Department, error)
}

type MembershipDirectory interface {
	// MembershipOf returns nil when the user is not an active member of the event.
	MembershipOf(eventID uuid.UUID, userID string) (*Membership, error)
	// ResolveMember returns nil when the member does not exist, is deactivated,
	// or belongs to a different event/department.
	ResolveMember(memberID, eventID, departmentID uuid.UUID) (*Member, error)
	// MembersByID batch-resolves member identities for read-side projections.
	MembersByID(eventID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Member, error)
}

// Gorm implements both directory interfaces against the shared database.
type Gorm struct{}

func (Gorm) Exists(eventID uuid.UUID) (bool, error) {
	var count int64
	if err := db.DB.Model(&Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (Gorm) DepartmentInEvent(eventID, departmentID uuid.UUID) (*Department, error) {
	var dept Department
	err := db.DB.First(&dept, "id = ? AND event_id = ?", departmentID, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (Gorm) MembershipOf(eventID uuid.UUID, userID string) (*Membership, error) {
	var member Member
	err := db.DB.First(&member, "event_id = ? AND user_id = ? AND is_active = ?", eventID, userID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Membership{
		MemberID:     member.ID,
		Role:         member.Role,
		DepartmentID: member.DepartmentID,
	}, nil
}

func (Gorm) ResolveMember(memberID, eventID, departmentID uuid.UUID) (*Member, error) {
	var member Member
	err := db.DB.First(&member,
		"id = ? AND event_id = ? AND department_id = ? AND is_active = ?",
		memberID, eventID, departmentID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (Gorm) MembersByID(eventID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Member, error) {
	result := make(map[uuid.UUID]Member, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var members []Member
	if err := db.DB.Where("event_id = ? AND id IN ?", eventID, ids).Find(&members).Error; err != nil {
		return nil, err
	}
	for _, m := range members {
		result[m.ID] = m
	}
	return result, nil
}
