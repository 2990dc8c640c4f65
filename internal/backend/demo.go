package backend

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"hrconsole/internal/domain/auth"
	"hrconsole/internal/domain/masterdata"
	"hrconsole/internal/gateway"
	"hrconsole/internal/platform/db"
)

// SeedDemo fills a MemStore with a small school so the console has something
// to show without a database. The admin user is only added when both
// credentials are set.
func SeedDemo(ctx context.Context, s *MemStore, adminUsername, adminPassword string) error {
	if adminUsername != "" && adminPassword != "" {
		hash, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		s.AddUser(User{Username: adminUsername, PasswordHash: hash, RoleName: auth.RoleAdmin})
	}

	for _, c := range db.DemoColleges {
		s.AddCollege(c[0], c[1])
	}
	s.AddEmployee("E100", "Asha Rao")
	s.AddEmployee("E101", "Vikram Sen")
	s.AddEmployee("E102", "Meera Iyer")

	seed := []struct {
		entity string
		row    gateway.Row
	}{
		{masterdata.Category.Name, gateway.Row{"collegeCode": "1", "categoryName": "Teaching"}},
		{masterdata.Category.Name, gateway.Row{"collegeCode": "1", "categoryName": "Administrative"}},
		{masterdata.Department.Name, gateway.Row{"collegeCode": "1", "deptName": "Mathematics", "deptShortName": "MATH"}},
		{masterdata.Department.Name, gateway.Row{"collegeCode": "2", "deptName": "Physics", "deptShortName": "PHY"}},
		{masterdata.Deduction.Name, gateway.Row{"collegeCode": "1", "deductionName": "Provident Fund", "deductionType": "Statutory", "isActive": "true"}},
		{masterdata.LeaveType.Name, gateway.Row{"lvName": "Casual Leave", "lvCode": "CL", "maxDays": "12", "carryForward": "false"}},
		{masterdata.LeaveType.Name, gateway.Row{"lvName": "Earned Leave", "lvCode": "EL", "maxDays": "30", "carryForward": "true"}},
	}
	for _, item := range seed {
		t, err := tableFor(item.entity)
		if err != nil {
			return err
		}
		rec, err := t.normalize(item.row)
		if err != nil {
			return fmt.Errorf("seed %s: %w", item.entity, err)
		}
		if _, err := s.Create(ctx, item.entity, rec); err != nil {
			return fmt.Errorf("seed %s: %w", item.entity, err)
		}
	}

	s.AddLeave("E100", "Casual Leave", "2026-03-02", "2026-03-03", decimal.NewFromInt(2))
	s.AddLeave("E101", "Earned Leave", "2026-03-09", "2026-03-13", decimal.NewFromInt(5))
	s.AddLeave("E102", "Casual Leave", "2026-03-16", "2026-03-16", decimal.RequireFromString("0.5"))
	return nil
}
