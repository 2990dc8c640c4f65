package backend

import (
	"context"
	"errors"

	"hrconsole/internal/domain/leave"
	"hrconsole/internal/gateway"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrInUse    = errors.New("record is still referenced")
)

const (
	leaveStatusPending  = "PENDING"
	leaveStatusApproved = "APPROVED"
)

type User struct {
	Username     string
	PasswordHash string
	RoleName     string
}

// Store is the persistence behind the reference gateway. Rows are keyed by
// the JSON field names the console uses.
type Store interface {
	List(ctx context.Context, entity string) ([]gateway.Row, error)
	Create(ctx context.Context, entity string, rec gateway.Row) (int64, error)
	Update(ctx context.Context, entity string, id int64, rec gateway.Row) error
	Delete(ctx context.Context, entity string, id int64) error

	Colleges(ctx context.Context) ([]gateway.Row, error)
	Employees(ctx context.Context) ([]gateway.Row, error)
	PendingLeaves(ctx context.Context) ([]gateway.Row, error)
	// ApproveLeaves approves the pending leaves matching each entry and
	// reports how many were approved.
	ApproveLeaves(ctx context.Context, batch []leave.Approval) (int, error)

	FindUser(ctx context.Context, username string) (User, error)
}
