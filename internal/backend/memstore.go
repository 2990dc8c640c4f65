package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"hrconsole/internal/domain/leave"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
)

type pendingLeave struct {
	ID        int64
	EmpCode   string
	LeaveType string
	FromDate  string
	ToDate    string
	Days      decimal.Decimal
	Status    string
}

// MemStore keeps everything in memory. It backs tests and local runs
// without DATABASE_URL.
type MemStore struct {
	mu        sync.Mutex
	records   map[string][]gateway.Row
	nextID    map[string]int64
	colleges  []gateway.Row
	employees []gateway.Row
	leaves    []pendingLeave
	nextLeave int64
	users     map[string]User
}

func NewMemStore() *MemStore {
	return &MemStore{
		records: map[string][]gateway.Row{},
		nextID:  map[string]int64{},
		users:   map[string]User{},
	}
}

func (s *MemStore) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.ToLower(u.Username)] = u
}

func (s *MemStore) AddCollege(code, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colleges = append(s.colleges, gateway.Row{"collegeCode": code, "collegeName": name})
}

func (s *MemStore) AddEmployee(code, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, gateway.Row{"empCode": code, "empName": name})
}

// AddLeave files a pending leave and returns its id.
func (s *MemStore) AddLeave(empCode, leaveType, from, to string, days decimal.Decimal) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextLeave++
	s.leaves = append(s.leaves, pendingLeave{
		ID:        s.nextLeave,
		EmpCode:   empCode,
		LeaveType: leaveType,
		FromDate:  from,
		ToDate:    to,
		Days:      days,
		Status:    leaveStatusPending,
	})
	return s.nextLeave
}

func cloneRow(row gateway.Row) gateway.Row {
	out := make(gateway.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func cloneRows(rows []gateway.Row) []gateway.Row {
	out := make([]gateway.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRow(row))
	}
	return out
}

func (s *MemStore) List(ctx context.Context, entity string) ([]gateway.Row, error) {
	if _, err := tableFor(entity); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.records[entity]), nil
}

func (s *MemStore) Create(ctx context.Context, entity string, rec gateway.Row) (int64, error) {
	t, err := tableFor(entity)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[entity] {
		if sameRecord(t, existing, rec) {
			return 0, ErrConflict
		}
	}
	s.nextID[entity]++
	id := s.nextID[entity]
	row := cloneRow(rec)
	row[t.def.IDField] = id
	s.records[entity] = append(s.records[entity], row)
	return id, nil
}

func (s *MemStore) Update(ctx context.Context, entity string, id int64, rec gateway.Row) error {
	t, err := tableFor(entity)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.records[entity]
	idx := -1
	for i, existing := range rows {
		if rowID(t, existing) == id {
			idx = i
			continue
		}
		if sameRecord(t, existing, rec) {
			return ErrConflict
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	row := cloneRow(rec)
	row[t.def.IDField] = id
	rows[idx] = row
	return nil
}

func (s *MemStore) Delete(ctx context.Context, entity string, id int64) error {
	t, err := tableFor(entity)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.records[entity]
	for i, existing := range rows {
		if rowID(t, existing) != id {
			continue
		}
		if t.def.Name == masterdata.LeaveType.Name && s.leaveTypeInUseLocked(existing) {
			return ErrInUse
		}
		s.records[entity] = append(rows[:i:i], rows[i+1:]...)
		return nil
	}
	return ErrNotFound
}

func (s *MemStore) leaveTypeInUseLocked(row gateway.Row) bool {
	name := masterdata.Text(row, "lvName")
	for _, l := range s.leaves {
		if l.Status == leaveStatusPending && strings.EqualFold(l.LeaveType, name) {
			return true
		}
	}
	return false
}

func (s *MemStore) Colleges(ctx context.Context) ([]gateway.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.colleges), nil
}

func (s *MemStore) Employees(ctx context.Context) ([]gateway.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.employees), nil
}

func (s *MemStore) PendingLeaves(ctx context.Context) ([]gateway.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gateway.Row, 0, len(s.leaves))
	for _, l := range s.leaves {
		if l.Status != leaveStatusPending {
			continue
		}
		out = append(out, gateway.Row{
			"leaveId":   l.ID,
			"empCode":   l.EmpCode,
			"leaveType": l.LeaveType,
			"fromDate":  l.FromDate,
			"toDate":    l.ToDate,
			"noOfDays":  json.Number(l.Days.String()),
		})
	}
	return out, nil
}

func (s *MemStore) ApproveLeaves(ctx context.Context, batch []leave.Approval) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	approved := 0
	for _, a := range batch {
		for i := range s.leaves {
			l := &s.leaves[i]
			if l.Status == leaveStatusPending && matchesApproval(*l, a) {
				l.Status = leaveStatusApproved
				approved++
			}
		}
	}
	return approved, nil
}

func matchesApproval(l pendingLeave, a leave.Approval) bool {
	return l.EmpCode == strings.TrimSpace(a.EmpCode) &&
		strings.EqualFold(l.LeaveType, strings.TrimSpace(a.LeaveType)) &&
		l.FromDate == strings.TrimSpace(a.FromDate) &&
		l.ToDate == strings.TrimSpace(a.ToDate)
}

func (s *MemStore) FindUser(ctx context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return User{}, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	return u, nil
}
