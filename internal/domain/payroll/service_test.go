package payroll

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldesk/internal/core/apperror"
	"parceldesk/internal/core/id"
	"parceldesk/internal/core/types"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/catalogs/branch"
	"parceldesk/internal/domain/catalogs/employee"
	"parceldesk/internal/domain/ledger"
)

type memRepo struct {
	payslips map[id.ID]*Payslip
}

func newMemRepo() *memRepo {
	return &memRepo{payslips: make(map[id.ID]*Payslip)}
}

func (m *memRepo) Create(_ context.Context, p *Payslip) error {
	m.payslips[p.ID] = p
	return nil
}

func (m *memRepo) GetByID(_ context.Context, payslipID id.ID) (*Payslip, error) {
	p, ok := m.payslips[payslipID]
	if !ok {
		return nil, apperror.NewNotFound("payslip", payslipID)
	}
	return p, nil
}

func (m *memRepo) List(_ context.Context, _ Filter) (domain.ListResult[*Payslip], error) {
	var items []*Payslip
	for _, p := range m.payslips {
		items = append(items, p)
	}
	return domain.ListResult[*Payslip]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memRepo) ExistsForPeriod(_ context.Context, employeeID id.ID, year, month int) (bool, error) {
	for _, p := range m.payslips {
		if p.EmployeeID == employeeID && p.PeriodYear == year && p.PeriodMonth == month {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmployees struct {
	employees map[id.ID]*employee.Employee
}

func (f *fakeEmployees) RequireActive(_ context.Context, employeeID id.ID) (*employee.Employee, error) {
	e, ok := f.employees[employeeID]
	if !ok || !e.IsActive {
		return nil, apperror.NewInactiveReference("employee", employeeID.String())
	}
	return e, nil
}

type fakeBranches struct {
	branches map[id.ID]*branch.Branch
}

func (f *fakeBranches) RequireActive(_ context.Context, branchID id.ID) (*branch.Branch, error) {
	b, ok := f.branches[branchID]
	if !ok || !b.IsActive {
		return nil, apperror.NewInactiveReference("branch", branchID.String())
	}
	return b, nil
}

type fakeIssuer struct {
	next int64
}

func (f *fakeIssuer) IssueNext(_ context.Context, _, _ string) (string, error) {
	v := f.next
	f.next++
	return "PAY" + strconv.FormatInt(v, 10), nil
}

type fakeRecorder struct {
	events []ledger.Event
}

func (f *fakeRecorder) Record(_ context.Context, event ledger.Event) ([]ledger.EntryRef, error) {
	f.events = append(f.events, event)
	return nil, nil
}

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	recorder *fakeRecorder
	employee *employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	b := branch.NewBranch("HQ", "Head Office", "hq")
	emp := employee.NewEmployee("EMP1", "Aigerim", b.ID, types.NewMoney(500000))

	repo := newMemRepo()
	recorder := &fakeRecorder{}
	svc := NewService(
		repo,
		&fakeEmployees{employees: map[id.ID]*employee.Employee{emp.ID: emp}},
		&fakeBranches{branches: map[id.ID]*branch.Branch{b.ID: b}},
		&fakeIssuer{next: 100000},
		recorder,
		passTxManager{},
	)

	return &fixture{svc: svc, repo: repo, recorder: recorder, employee: emp}
}

func TestIssue_DefaultsToMonthlySalary(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Issue(context.Background(), IssueInput{
		EmployeeID:  f.employee.ID,
		PeriodYear:  2026,
		PeriodMonth: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, "PAY100000", p.Number)
	assert.Equal(t, StatusIssued, p.Status)
	assert.True(t, types.NewMoney(500000).Equal(p.Amount))

	require.Len(t, f.recorder.events, 1)
	ev := f.recorder.events[0].(ledger.PayslipIssued)
	assert.Equal(t, p.ID, ev.PayslipID)
	assert.Equal(t, f.employee.BranchID, ev.BranchID)
	assert.True(t, p.Amount.Equal(ev.Amount))
}

func TestIssue_RejectsSecondPayslipForPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), IssueInput{
		EmployeeID: f.employee.ID, PeriodYear: 2026, PeriodMonth: 8,
	})
	require.NoError(t, err)

	_, err = f.svc.Issue(context.Background(), IssueInput{
		EmployeeID: f.employee.ID, PeriodYear: 2026, PeriodMonth: 8,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
	assert.Len(t, f.recorder.events, 1)
}

func TestIssue_RejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	zero := types.ZeroMoney()
	_, err := f.svc.Issue(context.Background(), IssueInput{
		EmployeeID:  f.employee.ID,
		PeriodYear:  2026,
		PeriodMonth: 8,
		Amount:      &zero,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidAmount))
	assert.Empty(t, f.repo.payslips)
}

func TestIssue_RejectsInactiveEmployee(t *testing.T) {
	f := newFixture(t)
	f.employee.IsActive = false

	_, err := f.svc.Issue(context.Background(), IssueInput{
		EmployeeID: f.employee.ID, PeriodYear: 2026, PeriodMonth: 8,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInactiveReference))
}
