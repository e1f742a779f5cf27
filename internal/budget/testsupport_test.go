package budget

import (
	"github.com/google/uuid"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
)

// memStore keeps plans in a map and mimics the gorm store's contract,
// including the compare-and-swap on version, so engine tests run without a
// database.
type memStore struct {
	plans map[uuid.UUID]*BudgetPlan
}

func newMemStore() *memStore {
	return &memStore{plans: make(map[uuid.UUID]*BudgetPlan)}
}

func clonePlan(p *BudgetPlan) *BudgetPlan {
	cp := *p
	cp.pendingAudit = nil
	cp.Categories = append([]string(nil), p.Categories...)
	cp.Items = make([]BudgetItem, len(p.Items))
	for i := range p.Items {
		item := p.Items[i]
		item.Evidence = append(EvidenceList{}, p.Items[i].Evidence...)
		if p.Items[i].AssignedTo != nil {
			id := *p.Items[i].AssignedTo
			item.AssignedTo = &id
		}
		if p.Items[i].AssignedAt != nil {
			at := *p.Items[i].AssignedAt
			item.AssignedAt = &at
		}
		cp.Items[i] = item
	}
	cp.Audit = append([]AuditEntry(nil), p.Audit...)
	if p.SubmittedAt != nil {
		at := *p.SubmittedAt
		cp.SubmittedAt = &at
	}
	return &cp
}

func (s *memStore) Create(plan *BudgetPlan) error {
	plan.drainPendingAudit()
	s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s *memStore) Get(planID uuid.UUID) (*BudgetPlan, error) {
	plan, ok := s.plans[planID]
	if !ok {
		return nil, apperror.NotFound("budget not found")
	}
	return clonePlan(plan), nil
}

func (s *memStore) ByDepartment(eventID, departmentID uuid.UUID) ([]BudgetPlan, error) {
	var plans []BudgetPlan
	for _, plan := range s.plans {
		if plan.EventID == eventID && plan.DepartmentID == departmentID {
			plans = append(plans, *clonePlan(plan))
		}
	}
	return plans, nil
}

func (s *memStore) ByEvent(eventID uuid.UUID) ([]BudgetPlan, error) {
	var plans []BudgetPlan
	for _, plan := range s.plans {
		if plan.EventID == eventID {
			plans = append(plans, *clonePlan(plan))
		}
	}
	return plans, nil
}

func (s *memStore) Save(plan *BudgetPlan) error {
	existing, ok := s.plans[plan.ID]
	if !ok {
		return apperror.NotFound("budget not found")
	}
	if existing.Version != plan.Version {
		return apperror.Conflict("budget was modified concurrently, reload and retry")
	}
	plan.drainPendingAudit()
	plan.Version++
	s.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (s *memStore) Delete(planID uuid.UUID) error {
	delete(s.plans, planID)
	return nil
}

// fakeEvents answers event and department lookups from fixed maps.
type fakeEvents struct {
	events      map[uuid.UUID]bool
	departments map[uuid.UUID]directory.Department
}

func (f *fakeEvents) Exists(eventID uuid.UUID) (bool, error) {
	return f.events[eventID], nil
}

func (f *fakeEvents) DepartmentInEvent(eventID, departmentID uuid.UUID) (*directory.Department, error) {
	dept, ok := f.departments[departmentID]
	if !ok || dept.EventID != eventID {
		return nil, nil
	}
	return &dept, nil
}

// fakeMembers resolves memberships from a fixed member list.
type fakeMembers struct {
	members map[uuid.UUID]directory.Member
}

func (f *fakeMembers) MembershipOf(eventID uuid.UUID, userID string) (*directory.Membership, error) {
	for _, m := range f.members {
		if m.EventID == eventID && m.UserID == userID && m.IsActive {
			return &directory.Membership{MemberID: m.ID, Role: m.Role, DepartmentID: m.DepartmentID}, nil
		}
	}
	return nil, nil
}

func (f *fakeMembers) ResolveMember(memberID, eventID, departmentID uuid.UUID) (*directory.Member, error) {
	m, ok := f.members[memberID]
	if !ok || !m.IsActive || m.EventID != eventID {
		return nil, nil
	}
	if m.DepartmentID == nil || *m.DepartmentID != departmentID {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMembers) MembersByID(eventID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]directory.Member, error) {
	result := make(map[uuid.UUID]directory.Member)
	for _, id := range ids {
		if m, ok := f.members[id]; ok && m.EventID == eventID {
			result[id] = m
		}
	}
	return result, nil
}

// recordingSink captures notification kinds in order.
type recordingSink struct {
	kinds []string
}

func (r *recordingSink) Submitted(_, _, _ uuid.UUID)        { r.kinds = append(r.kinds, "submitted") }
func (r *recordingSink) Approved(_, _, _ uuid.UUID)         { r.kinds = append(r.kinds, "approved") }
func (r *recordingSink) Rejected(_, _, _ uuid.UUID)         { r.kinds = append(r.kinds, "rejected") }
func (r *recordingSink) SentToMembers(_, _, _ uuid.UUID)    { r.kinds = append(r.kinds, "sent_to_members") }
func (r *recordingSink) ItemAssigned(_, _, _, _, _ uuid.UUID) {
	r.kinds = append(r.kinds, "item_assigned")
}
func (r *recordingSink) ExpenseReported(_, _, _, _ uuid.UUID) {
	r.kinds = append(r.kinds, "expense_reported")
}
func (r *recordingSink) ExpenseSubmitted(_, _, _, _ uuid.UUID) {
	r.kinds = append(r.kinds, "expense_submitted")
}

// fixture bundles a wired workflow with one event, two departments and the
// usual cast of requesters.
type fixture struct {
	workflow *Workflow
	store    *memStore
	members  *fakeMembers
	sink     *recordingSink

	eventID    uuid.UUID
	deptID     uuid.UUID
	otherDept  uuid.UUID
	hod        Requester
	hooc       Requester
	member     Requester
	otherHod   Requester
	memberID   uuid.UUID
	inactiveID uuid.UUID
}

func newFixture() *fixture {
	eventID := uuid.New()
	deptID := uuid.New()
	otherDept := uuid.New()

	hodID := uuid.New()
	hoocID := uuid.New()
	memberID := uuid.New()
	otherHodID := uuid.New()
	inactiveID := uuid.New()

	members := &fakeMembers{members: map[uuid.UUID]directory.Member{
		hodID: {ID: hodID, EventID: eventID, UserID: "user-hod", DepartmentID: &deptID,
			Role: string(RoleHoD), FullName: "Head of Dept", Email: "hod@example.com", IsActive: true},
		hoocID: {ID: hoocID, EventID: eventID, UserID: "user-hooc",
			Role: string(RoleHoOC), FullName: "Committee Head", IsActive: true},
		memberID: {ID: memberID, EventID: eventID, UserID: "user-member", DepartmentID: &deptID,
			Role: string(RoleMember), FullName: "Plain Member", Email: "member@example.com", IsActive: true},
		otherHodID: {ID: otherHodID, EventID: eventID, UserID: "user-other-hod", DepartmentID: &otherDept,
			Role: string(RoleHoD), IsActive: true},
		inactiveID: {ID: inactiveID, EventID: eventID, UserID: "user-gone", DepartmentID: &deptID,
			Role: string(RoleMember), IsActive: false},
	}}

	events := &fakeEvents{
		events: map[uuid.UUID]bool{eventID: true},
		departments: map[uuid.UUID]directory.Department{
			deptID:    {ID: deptID, EventID: eventID, Name: "Logistics"},
			otherDept: {ID: otherDept, EventID: eventID, Name: "Media"},
		},
	}

	store := newMemStore()
	sink := &recordingSink{}
	workflow := &Workflow{Store: store, Events: events, Members: members, Notify: sink}

	return &fixture{
		workflow:  workflow,
		store:     store,
		members:   members,
		sink:      sink,
		eventID:   eventID,
		deptID:    deptID,
		otherDept: otherDept,
		hod: Requester{UserID: "user-hod", MemberID: hodID, EventID: eventID,
			Role: RoleHoD, DepartmentID: &deptID},
		hooc: Requester{UserID: "user-hooc", MemberID: hoocID, EventID: eventID,
			Role: RoleHoOC},
		member: Requester{UserID: "user-member", MemberID: memberID, EventID: eventID,
			Role: RoleMember, DepartmentID: &deptID},
		otherHod: Requester{UserID: "user-other-hod", MemberID: otherHodID, EventID: eventID,
			Role: RoleHoD, DepartmentID: &otherDept},
		memberID:   memberID,
		inactiveID: inactiveID,
	}
}

// seedPlan drops a plan with the given status and items straight into the
// store, bypassing the engine, for precise starting states.
func (f *fixture) seedPlan(status PlanStatus, items ...BudgetItem) *BudgetPlan {
	plan := &BudgetPlan{
		ID:           uuid.New(),
		EventID:      f.eventID,
		DepartmentID: f.deptID,
		Name:         "Logistics budget",
		Currency:     "VND",
		Status:       status,
	}
	for i := range items {
		items[i].PlanID = plan.ID
		if items[i].ItemID == uuid.Nil {
			items[i].ItemID = uuid.New()
		}
		if items[i].Status == "" {
			items[i].Status = ItemPending
		}
	}
	plan.Items = items
	f.store.plans[plan.ID] = clonePlan(plan)
	return plan
}
