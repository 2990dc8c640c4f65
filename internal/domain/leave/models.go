package leave

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	PendingPath      = "/leave/pending"
	EmployeeListPath = "/employee/list"
	ApprovePath      = "/leave/approve"

	// UnknownEmployee is shown when a leave references an employee code
	// missing from the employee list.
	UnknownEmployee = "Unknown"
)

// Row is a pending leave joined with the employee's display name.
type Row struct {
	ID        string          `json:"id"`
	LeaveID   string          `json:"leaveId,omitempty"`
	EmpCode   string          `json:"empCode"`
	EmpName   string          `json:"empName"`
	LeaveType string          `json:"leaveType"`
	FromDate  string          `json:"fromDate"`
	ToDate    string          `json:"toDate"`
	Days      decimal.Decimal `json:"noOfDays"`
	Selected  bool            `json:"selected"`
}

// Approval is the projection of a selected row sent to the approve endpoint.
type Approval struct {
	EmpCode   string      `json:"empCode"`
	EmpName   string      `json:"empName"`
	LeaveType string      `json:"leaveType"`
	FromDate  string      `json:"fromDate"`
	ToDate    string      `json:"toDate"`
	NoOfDays  json.Number `json:"noOfDays"`
}

func (r Row) approval() Approval {
	return Approval{
		EmpCode:   r.EmpCode,
		EmpName:   r.EmpName,
		LeaveType: r.LeaveType,
		FromDate:  r.FromDate,
		ToDate:    r.ToDate,
		NoOfDays:  json.Number(r.Days.String()),
	}
}

type Summary struct {
	Count int             `json:"count"`
	Days  decimal.Decimal `json:"days"`
}

type View struct {
	Query      string  `json:"query"`
	Total      int     `json:"total"`
	Rows       []Row   `json:"rows"`
	Selected   Summary `json:"selected"`
	Submitting bool    `json:"submitting"`
}
