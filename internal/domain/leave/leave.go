package leave

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// approved and rejected are final; nothing transitions out of them.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Snapshot of the request content taken once, on the first (and only) edit.
type OriginalData struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`
	Reason   string    `json:"reason"`
}

type LeaveRequest struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	SubmittedBy  string        `json:"submittedBy"`
	FromDate     time.Time     `json:"fromDate"`
	ToDate       time.Time     `json:"toDate"`
	Reason       string        `json:"reason"`
	Status       Status        `json:"status"`
	AppliedDate  time.Time     `json:"appliedDate"`
	ApprovedBy   *string       `json:"approvedBy,omitempty"`
	ApprovedDate *time.Time    `json:"approvedDate,omitempty"`
	RejectedBy   *string       `json:"rejectedBy,omitempty"`
	RejectedDate *time.Time    `json:"rejectedDate,omitempty"`
	IsEdited     bool          `json:"isEdited"`
	EditedDate   *time.Time    `json:"editedDate,omitempty"`
	OriginalData *OriginalData `json:"originalData,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

var (
	ErrNotFound          = errors.New("leave request not found")
	ErrInvalidTransition = errors.New("leave request already in a terminal state")
	ErrAlreadyProcessed  = errors.New("leave request has already been processed")
	ErrAlreadyEdited     = errors.New("leave request can only be edited once")
	ErrNotSubmitter      = errors.New("actor is not the submitter of this leave request")
	ErrInvalidDateRange  = errors.New("fromDate must not be after toDate")
)

type CreateLeaveRequest struct {
	EmployeeID string    `json:"employeeId" binding:"required,uuid"`
	FromDate   time.Time `json:"fromDate" binding:"required"`
	ToDate     time.Time `json:"toDate" binding:"required"`
	Reason     string    `json:"reason" binding:"required,min=2,max=1000"`
	// any client-supplied submittedBy is discarded; the actor wins
	SubmittedBy string `json:"submittedBy,omitempty" binding:"-"`
}

// Patch carries either a status transition (hr/admin) or a content edit
// (submitter). The two branches are disjoint: a non-pending status selects
// the transition branch, its absence selects the edit branch.
type UpdateLeaveRequest struct {
	Status   Status     `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	FromDate *time.Time `json:"fromDate" binding:"omitempty"`
	ToDate   *time.Time `json:"toDate" binding:"omitempty"`
	Reason   *string    `json:"reason" binding:"omitempty,min=2,max=1000"`
}

func (p UpdateLeaveRequest) IsTransition() bool {
	return p.Status != "" && p.Status != StatusPending
}

// Read-side refs expanded from stored identifiers.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type EmployeeRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

// LeaveRequestView is the denormalized shape served on reads. Writes stay
// normalized; the repo performs the join.
type LeaveRequestView struct {
	LeaveRequest
	Employee  *EmployeeRef `json:"employee,omitempty"`
	Submitter *UserRef     `json:"submitter,omitempty"`
	Approver  *UserRef     `json:"approver,omitempty"`
	Rejecter  *UserRef     `json:"rejecter,omitempty"`
}

// NewFromCreateRequest builds a pending LeaveRequest from the incoming DTO.
// submittedBy is forced to the acting user.
func NewFromCreateRequest(req CreateLeaveRequest, actorID string) LeaveRequest {
	now := time.Now().UTC()

	return LeaveRequest{
		ID:          uuid.NewString(),
		EmployeeID:  req.EmployeeID,
		SubmittedBy: actorID,
		FromDate:    req.FromDate.UTC(),
		ToDate:      req.ToDate.UTC(),
		Reason:      req.Reason,
		Status:      StatusPending,
		AppliedDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
