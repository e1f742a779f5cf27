package expense

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhdangfptu/myFEvent-sub001/internal/apperror"
	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// fakeBudgets serves plans from a map; only the read methods matter here.
type fakeBudgets struct {
	plans map[uuid.UUID]*budget.BudgetPlan
}

func (f *fakeBudgets) Create(plan *budget.BudgetPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeBudgets) Get(planID uuid.UUID) (*budget.BudgetPlan, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, apperror.NotFound("budget not found")
	}
	return plan, nil
}

func (f *fakeBudgets) ByDepartment(eventID, departmentID uuid.UUID) ([]budget.BudgetPlan, error) {
	return nil, nil
}

func (f *fakeBudgets) ByEvent(eventID uuid.UUID) ([]budget.BudgetPlan, error) {
	return nil, nil
}

func (f *fakeBudgets) Save(plan *budget.BudgetPlan) error {
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeBudgets) Delete(planID uuid.UUID) error {
	delete(f.plans, planID)
	return nil
}

type recordKey struct{ plan, item uuid.UUID }

// memExpenses upserts records by (plan, item) like the unique index does.
type memExpenses struct {
	records map[recordKey]*Record
}

func newMemExpenses() *memExpenses {
	return &memExpenses{records: make(map[recordKey]*Record)}
}

func (m *memExpenses) Find(planID, itemID uuid.UUID) (*Record, error) {
	record, ok := m.records[recordKey{planID, itemID}]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

func (m *memExpenses) ForPlan(planID uuid.UUID) ([]Record, error) {
	var out []Record
	for key, record := range m.records {
		if key.plan == planID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (m *memExpenses) Save(record *Record) error {
	cp := *record
	m.records[recordKey{record.PlanID, record.ItemID}] = &cp
	return nil
}

type countingSink struct {
	kinds []string
}

func (c *countingSink) Submitted(_, _, _ uuid.UUID)     {}
func (c *countingSink) Approved(_, _, _ uuid.UUID)      {}
func (c *countingSink) Rejected(_, _, _ uuid.UUID)      {}
func (c *countingSink) SentToMembers(_, _, _ uuid.UUID) {}
func (c *countingSink) ItemAssigned(_, _, _, _, _ uuid.UUID) {}
func (c *countingSink) ExpenseReported(_, _, _, _ uuid.UUID) {
	c.kinds = append(c.kinds, "expense_reported")
}
func (c *countingSink) ExpenseSubmitted(_, _, _, _ uuid.UUID) {
	c.kinds = append(c.kinds, "expense_submitted")
}

type fixture struct {
	rc      *Reconciler
	budgets *fakeBudgets
	store   *memExpenses
	sink    *countingSink

	eventID  uuid.UUID
	deptID   uuid.UUID
	planID   uuid.UUID
	itemID   uuid.UUID // assigned to member
	openItem uuid.UUID // no assignee

	hod         budget.Requester
	member      budget.Requester
	otherMember budget.Requester
	outsider    budget.Requester
}

func newFixture(t *testing.T, status budget.PlanStatus) *fixture {
	t.Helper()

	eventID := uuid.New()
	deptID := uuid.New()
	otherDept := uuid.New()
	memberID := uuid.New()
	otherMemberID := uuid.New()

	itemID := uuid.New()
	openItem := uuid.New()
	plan := &budget.BudgetPlan{
		ID:           uuid.New(),
		EventID:      eventID,
		DepartmentID: deptID,
		Name:         "Logistics budget",
		Status:       status,
		Items: []budget.BudgetItem{
			{ItemID: itemID, Name: "Truck rental", Total: dec(1000),
				Status: budget.ItemApproved, AssignedTo: &memberID},
			{ItemID: openItem, Name: "Fuel", Total: dec(200), Status: budget.ItemApproved},
		},
	}
	plan.Items[0].PlanID = plan.ID
	plan.Items[1].PlanID = plan.ID

	budgets := &fakeBudgets{plans: map[uuid.UUID]*budget.BudgetPlan{plan.ID: plan}}
	store := newMemExpenses()
	sink := &countingSink{}

	return &fixture{
		rc:      &Reconciler{Expenses: store, Budgets: budgets, Notify: sink},
		budgets: budgets,
		store:   store,
		sink:    sink,
		eventID: eventID,
		deptID:  deptID,
		planID:  plan.ID,
		itemID:  itemID,
		openItem: openItem,
		hod: budget.Requester{UserID: "user-hod", MemberID: uuid.New(), EventID: eventID,
			Role: budget.RoleHoD, DepartmentID: &deptID},
		member: budget.Requester{UserID: "user-member", MemberID: memberID, EventID: eventID,
			Role: budget.RoleMember, DepartmentID: &deptID},
		otherMember: budget.Requester{UserID: "user-other", MemberID: otherMemberID, EventID: eventID,
			Role: budget.RoleMember, DepartmentID: &deptID},
		outsider: budget.Requester{UserID: "user-outside", MemberID: uuid.New(), EventID: eventID,
			Role: budget.RoleMember, DepartmentID: &otherDept},
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, ComparisonGreater, Compare(dec(150), dec(100)))
	assert.Equal(t, ComparisonLess, Compare(dec(50), dec(100)))
	assert.Equal(t, ComparisonEqual, Compare(dec(100), dec(100)))
	assert.Equal(t, ComparisonNone, Compare(decimal.Zero, dec(100)), "no actual yet")
	assert.Equal(t, ComparisonNone, Compare(dec(-1), dec(100)))
}

func TestReportCreatesRecord(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)

	actual := dec(1200)
	record, err := f.rc.Report(f.planID, f.itemID, ReportInput{
		ActualAmount: &actual,
		Evidence:     []budget.Evidence{{Type: "image", URL: "https://files/r.jpg", Name: "Receipt"}},
	}, f.member)
	require.NoError(t, err)

	assert.True(t, record.ActualAmount.Equal(dec(1200)))
	assert.True(t, record.EstimatedTotal.Equal(dec(1000)), "estimate snapshots the item total")
	assert.Equal(t, ComparisonGreater, record.Comparison)
	assert.Equal(t, SubmitDraft, record.SubmitStatus)
	assert.Equal(t, f.member.MemberID, record.ReportedBy)
	require.Len(t, record.Evidence, 1)
	assert.Equal(t, []string{"expense_reported"}, f.sink.kinds)
}

func TestReportPartialUpdate(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)

	actual := dec(800)
	_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	require.NoError(t, err)

	note := "paid cash"
	record, err := f.rc.Report(f.planID, f.itemID, ReportInput{MemberNote: &note}, f.member)
	require.NoError(t, err)
	assert.True(t, record.ActualAmount.Equal(dec(800)), "absent fields stay untouched")
	assert.Equal(t, "paid cash", record.MemberNote)
	assert.Equal(t, ComparisonLess, record.Comparison)
}

func TestReportGuards(t *testing.T) {
	f := newFixture(t, budget.StatusSubmitted)
	actual := dec(10)

	_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "no expenses before approval")

	f = newFixture(t, budget.StatusSentToMembers)

	negative := dec(-10)
	_, err = f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &negative}, f.member)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.rc.Report(f.planID, uuid.New(), ReportInput{ActualAmount: &actual}, f.member)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.rc.Report(uuid.New(), f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	foreign := f.member
	foreign.EventID = uuid.New()
	_, err = f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, foreign)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "plan pinned to the requester's event")
}

func TestReportAuthorization(t *testing.T) {
	actual := dec(10)

	t.Run("assignee reports", func(t *testing.T) {
		f := newFixture(t, budget.StatusSentToMembers)
		_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
		assert.NoError(t, err)
	})

	t.Run("hod reports any item", func(t *testing.T) {
		f := newFixture(t, budget.StatusSentToMembers)
		_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.hod)
		assert.NoError(t, err)
	})

	t.Run("non-assignee blocked from an assigned item", func(t *testing.T) {
		f := newFixture(t, budget.StatusSentToMembers)
		_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.otherMember)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("outside department blocked", func(t *testing.T) {
		f := newFixture(t, budget.StatusSentToMembers)
		_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.outsider)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})

	t.Run("unassigned item claimable after send", func(t *testing.T) {
		f := newFixture(t, budget.StatusSentToMembers)
		_, err := f.rc.Report(f.planID, f.openItem, ReportInput{ActualAmount: &actual}, f.otherMember)
		assert.NoError(t, err)
	})

	t.Run("unassigned item closed while only approved", func(t *testing.T) {
		f := newFixture(t, budget.StatusApproved)
		_, err := f.rc.Report(f.planID, f.openItem, ReportInput{ActualAmount: &actual}, f.otherMember)
		assert.True(t, apperror.Is(err, apperror.KindForbidden))
	})
}

func TestTogglePaid(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)

	_, err := f.rc.TogglePaid(f.planID, f.itemID, f.member)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "nothing reported yet")

	actual := dec(500)
	_, err = f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	require.NoError(t, err)

	record, err := f.rc.TogglePaid(f.planID, f.itemID, f.member)
	require.NoError(t, err)
	assert.True(t, record.IsPaid)

	record, err = f.rc.TogglePaid(f.planID, f.itemID, f.hod)
	require.NoError(t, err)
	assert.False(t, record.IsPaid, "second toggle flips back")
}

func TestSubmitAndUndo(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)

	_, err := f.rc.Submit(f.planID, f.itemID, f.member)
	assert.True(t, apperror.Is(err, apperror.KindNotFound), "nothing reported yet")

	empty := decimal.Zero
	_, err = f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &empty}, f.member)
	require.NoError(t, err)

	_, err = f.rc.Submit(f.planID, f.itemID, f.member)
	assert.True(t, apperror.Is(err, apperror.KindValidation), "empty report cannot be turned in")

	actual := dec(950)
	_, err = f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	require.NoError(t, err)

	record, err := f.rc.Submit(f.planID, f.itemID, f.member)
	require.NoError(t, err)
	assert.Equal(t, SubmitSubmitted, record.SubmitStatus)
	assert.Contains(t, f.sink.kinds, "expense_submitted")

	record, err = f.rc.UndoSubmit(f.planID, f.itemID, f.member)
	require.NoError(t, err)
	assert.Equal(t, SubmitDraft, record.SubmitStatus)
	assert.True(t, record.ActualAmount.Equal(dec(950)), "reopening keeps the data")

	_, err = f.rc.UndoSubmit(f.planID, f.itemID, f.member)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "already back in draft")
}

func TestSubmitOnlyByAssignee(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)
	actual := dec(100)
	_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual}, f.member)
	require.NoError(t, err)

	_, err = f.rc.Submit(f.planID, f.itemID, f.otherMember)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = f.rc.Submit(f.planID, f.itemID, f.hod)
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "even the head submits only as assignee")

	_, err = f.rc.Submit(f.planID, f.openItem, f.member)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState), "unassigned item has no one to submit for")
}

func TestSubmitWithEvidenceOnly(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)
	_, err := f.rc.Report(f.planID, f.itemID, ReportInput{
		Evidence: []budget.Evidence{{Type: "pdf", URL: "https://files/invoice.pdf", Name: "Invoice"}},
	}, f.member)
	require.NoError(t, err)

	record, err := f.rc.Submit(f.planID, f.itemID, f.member)
	require.NoError(t, err)
	assert.Equal(t, SubmitSubmitted, record.SubmitStatus)
	assert.Equal(t, ComparisonNone, record.Comparison, "no amount reported")
}

func TestLookupBridgesToBudgetViews(t *testing.T) {
	f := newFixture(t, budget.StatusSentToMembers)
	actual := dec(300)
	note := "two trips"
	_, err := f.rc.Report(f.planID, f.itemID, ReportInput{ActualAmount: &actual, MemberNote: &note}, f.member)
	require.NoError(t, err)

	lookup := Lookup{Store: f.store}
	infos, err := lookup.ForPlan(f.planID)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info, ok := infos[f.itemID]
	require.True(t, ok)
	assert.True(t, info.ActualAmount.Equal(dec(300)))
	assert.Equal(t, "two trips", info.MemberNote)
	assert.Equal(t, "less", info.Comparison)
	assert.Equal(t, "draft", info.SubmittedStatus)
	require.NotNil(t, info.ReportedBy)
	assert.Equal(t, f.member.MemberID, *info.ReportedBy)
}
