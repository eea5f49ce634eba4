package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/domain/leave"
)

// LeaveRequestsRepo mirrors the postgres workflow repo, including the
// denormalized read views, for tests that run without a database.
type LeaveRequestsRepo struct {
	mu        sync.RWMutex
	items     map[string]leave.LeaveRequest
	users     *UsersRepo
	employees *EmployeesRepo
}

func NewLeaveRequestsRepo(users *UsersRepo, employees *EmployeesRepo) *LeaveRequestsRepo {
	return &LeaveRequestsRepo{
		items:     make(map[string]leave.LeaveRequest),
		users:     users,
		employees: employees,
	}
}

func (r *LeaveRequestsRepo) toView(ctx context.Context, lr leave.LeaveRequest) leave.LeaveRequestView {
	v := leave.LeaveRequestView{LeaveRequest: lr}

	if e, err := r.employees.GetByID(ctx, lr.EmployeeID); err == nil {
		v.Employee = &leave.EmployeeRef{ID: e.ID, Name: e.Name, Role: e.Role, Email: e.Email}
	}

	if u, err := r.users.GetByID(ctx, lr.SubmittedBy); err == nil {
		v.Submitter = &leave.UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
	}

	if lr.ApprovedBy != nil {
		if u, err := r.users.GetByID(ctx, *lr.ApprovedBy); err == nil {
			v.Approver = &leave.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}

	if lr.RejectedBy != nil {
		if u, err := r.users.GetByID(ctx, *lr.RejectedBy); err == nil {
			v.Rejecter = &leave.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}

	return v
}

func (r *LeaveRequestsRepo) collect(ctx context.Context, keep func(leave.LeaveRequest) bool) []leave.LeaveRequestView {
	r.mu.RLock()
	records := make([]leave.LeaveRequest, 0, len(r.items))
	for _, lr := range r.items {
		if keep(lr) {
			records = append(records, lr)
		}
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})

	out := make([]leave.LeaveRequestView, 0, len(records))
	for _, lr := range records {
		out = append(out, r.toView(ctx, lr))
	}

	return out
}

func (r *LeaveRequestsRepo) ListAll(ctx context.Context) ([]leave.LeaveRequestView, error) {
	return r.collect(ctx, func(leave.LeaveRequest) bool { return true }), nil
}

func (r *LeaveRequestsRepo) ListBySubmitter(ctx context.Context, userID string) ([]leave.LeaveRequestView, error) {
	return r.collect(ctx, func(lr leave.LeaveRequest) bool { return lr.SubmittedBy == userID }), nil
}

func (r *LeaveRequestsRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestView, error) {
	return r.collect(ctx, func(lr leave.LeaveRequest) bool { return lr.EmployeeID == employeeID }), nil
}

func (r *LeaveRequestsRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequestView, error) {
	r.mu.RLock()
	lr, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return leave.LeaveRequestView{}, leave.ErrNotFound
	}

	return r.toView(ctx, lr), nil
}

func (r *LeaveRequestsRepo) Create(ctx context.Context, req leave.CreateLeaveRequest, actorID string) (leave.LeaveRequestView, error) {
	if req.FromDate.After(req.ToDate) {
		return leave.LeaveRequestView{}, leave.ErrInvalidDateRange
	}

	if _, err := r.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveRequestView{}, employee.ErrNotFound
	}

	lr := leave.NewFromCreateRequest(req, actorID)

	r.mu.Lock()
	r.items[lr.ID] = lr
	r.mu.Unlock()

	return r.toView(ctx, lr), nil
}

func (r *LeaveRequestsRepo) Transition(ctx context.Context, id string, status leave.Status, actorID string) (leave.LeaveRequestView, error) {
	if !status.IsTerminal() {
		return leave.LeaveRequestView{}, leave.ErrInvalidTransition
	}

	r.mu.Lock()

	lr, ok := r.items[id]

	if !ok {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrNotFound
	}

	if lr.Status != leave.StatusPending {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrInvalidTransition
	}

	now := time.Now().UTC()
	lr.Status = status

	if status == leave.StatusApproved {
		lr.ApprovedBy = &actorID
		lr.ApprovedDate = &now
	} else {
		lr.RejectedBy = &actorID
		lr.RejectedDate = &now
	}

	lr.UpdatedAt = now
	r.items[id] = lr
	r.mu.Unlock()

	return r.toView(ctx, lr), nil
}

func (r *LeaveRequestsRepo) Edit(ctx context.Context, id, actorID string, patch leave.UpdateLeaveRequest) (leave.LeaveRequestView, error) {
	r.mu.Lock()

	lr, ok := r.items[id]

	if !ok {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrNotFound
	}

	if lr.SubmittedBy != actorID {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrNotSubmitter
	}

	if lr.Status != leave.StatusPending {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrAlreadyProcessed
	}

	if lr.IsEdited {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrAlreadyEdited
	}

	newFrom, newTo, newReason := lr.FromDate, lr.ToDate, lr.Reason

	if patch.FromDate != nil {
		newFrom = patch.FromDate.UTC()
	}
	if patch.ToDate != nil {
		newTo = patch.ToDate.UTC()
	}
	if patch.Reason != nil {
		newReason = *patch.Reason
	}

	if newFrom.After(newTo) {
		r.mu.Unlock()
		return leave.LeaveRequestView{}, leave.ErrInvalidDateRange
	}

	now := time.Now().UTC()

	lr.OriginalData = &leave.OriginalData{
		FromDate: lr.FromDate,
		ToDate:   lr.ToDate,
		Reason:   lr.Reason,
	}
	lr.FromDate = newFrom
	lr.ToDate = newTo
	lr.Reason = newReason
	lr.IsEdited = true
	lr.EditedDate = &now
	lr.UpdatedAt = now

	r.items[id] = lr
	r.mu.Unlock()

	return r.toView(ctx, lr), nil
}

func (r *LeaveRequestsRepo) Delete(ctx context.Context, id, actorID string, actorIsAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lr, ok := r.items[id]

	if !ok {
		return leave.ErrNotFound
	}

	if !actorIsAdmin {
		if lr.SubmittedBy != actorID {
			return leave.ErrNotSubmitter
		}

		if lr.Status != leave.StatusPending {
			return leave.ErrAlreadyProcessed
		}
	}

	delete(r.items, id)

	return nil
}
