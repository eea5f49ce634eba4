package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/domain/leave"
	"github.com/staffhub-io/staffhub/internal/domain/user"
	"github.com/staffhub-io/staffhub/internal/repo/memory"
)

type fixture struct {
	users     *memory.UsersRepo
	employees *memory.EmployeesRepo
	leaves    *memory.LeaveRequestsRepo

	employeeUser user.User
	hrUser       user.User
	adminUser    user.User
	staff        employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()

	users := memory.NewUsersRepo()
	employees := memory.NewEmployeesRepo()
	leaves := memory.NewLeaveRequestsRepo(users, employees)

	mkUser := func(name, email string, role user.Role) user.User {
		u, err := users.Create(ctx, user.User{
			ID:       uuid.NewString(),
			Name:     name,
			Email:    email,
			Role:     role,
			IsActive: true,
		})
		if err != nil {
			t.Fatalf("failed to create user %s: %v", email, err)
		}
		return u
	}

	staff, err := employees.Create(ctx, employee.CreateEmployeeRequest{
		Name:       "Dana Field",
		Role:       "Backend Engineer",
		Email:      "dana@example.com",
		Department: "Engineering",
	})
	if err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}

	return &fixture{
		users:        users,
		employees:    employees,
		leaves:       leaves,
		employeeUser: mkUser("Eli Park", "eli@example.com", user.RoleEmployee),
		hrUser:       mkUser("Hana Obi", "hana@example.com", user.RoleHR),
		adminUser:    mkUser("Ada Min", "ada@example.com", user.RoleAdmin),
		staff:        staff,
	}
}

func (f *fixture) pendingRequest(t *testing.T, submitter user.User, reason string) leave.LeaveRequestView {
	t.Helper()

	v, err := f.leaves.Create(context.Background(), leave.CreateLeaveRequest{
		EmployeeID: f.staff.ID,
		FromDate:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		Reason:     reason,
	}, submitter.ID)

	if err != nil {
		t.Fatalf("failed to create leave request: %v", err)
	}

	return v
}

func TestCreateLeaveRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	if v.Status != leave.StatusPending {
		t.Fatalf("new request status = %q, want pending", v.Status)
	}
	if v.IsEdited {
		t.Fatal("new request must not be marked edited")
	}
	if v.SubmittedBy != f.employeeUser.ID {
		t.Fatalf("submittedBy = %q, want actor %q", v.SubmittedBy, f.employeeUser.ID)
	}
	if v.AppliedDate.IsZero() {
		t.Fatal("appliedDate not set")
	}
	if v.Employee == nil || v.Employee.Name != "Dana Field" {
		t.Fatalf("employee ref not denormalized: %+v", v.Employee)
	}
	if v.Submitter == nil || v.Submitter.Email != f.employeeUser.Email {
		t.Fatalf("submitter ref not denormalized: %+v", v.Submitter)
	}

	// the payload cannot choose a different submitter
	spoofed, err := f.leaves.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID:  f.staff.ID,
		FromDate:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		ToDate:      time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
		Reason:      "spoof attempt",
		SubmittedBy: f.adminUser.ID,
	}, f.employeeUser.ID)
	if err != nil {
		t.Fatalf("spoof create failed: %v", err)
	}
	if spoofed.SubmittedBy != f.employeeUser.ID {
		t.Fatalf("submittedBy = %q, client-supplied value was not ignored", spoofed.SubmittedBy)
	}

	// unknown employee is a validation failure
	_, err = f.leaves.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: uuid.NewString(),
		FromDate:   time.Now(),
		ToDate:     time.Now(),
		Reason:     "ghost",
	}, f.employeeUser.ID)
	if !errors.Is(err, employee.ErrNotFound) {
		t.Fatalf("create with unknown employee: got %v, want employee.ErrNotFound", err)
	}

	// reversed dates are rejected server-side
	_, err = f.leaves.Create(ctx, leave.CreateLeaveRequest{
		EmployeeID: f.staff.ID,
		FromDate:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Reason:     "backwards",
	}, f.employeeUser.ID)
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Fatalf("create with reversed dates: got %v, want ErrInvalidDateRange", err)
	}
}

func TestEditOnceRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	newReason := "family trip"

	edited, err := f.leaves.Edit(ctx, v.ID, f.employeeUser.ID, leave.UpdateLeaveRequest{
		Reason: &newReason,
	})
	if err != nil {
		t.Fatalf("first edit failed: %v", err)
	}

	if !edited.IsEdited {
		t.Fatal("isEdited not set after edit")
	}
	if edited.EditedDate == nil {
		t.Fatal("editedDate not set after edit")
	}
	if edited.Reason != "family trip" {
		t.Fatalf("reason = %q after edit", edited.Reason)
	}
	if edited.OriginalData == nil || edited.OriginalData.Reason != "trip" {
		t.Fatalf("originalData snapshot missing or wrong: %+v", edited.OriginalData)
	}

	// second edit is refused and the snapshot stays intact
	another := "yet another reason"
	_, err = f.leaves.Edit(ctx, v.ID, f.employeeUser.ID, leave.UpdateLeaveRequest{Reason: &another})
	if !errors.Is(err, leave.ErrAlreadyEdited) {
		t.Fatalf("second edit: got %v, want ErrAlreadyEdited", err)
	}

	check, _ := f.leaves.GetByID(ctx, v.ID)
	if check.OriginalData.Reason != "trip" {
		t.Fatalf("originalData overwritten: %+v", check.OriginalData)
	}

	// only the submitter may edit
	_, err = f.leaves.Edit(ctx, v.ID, f.hrUser.ID, leave.UpdateLeaveRequest{Reason: &another})
	if !errors.Is(err, leave.ErrNotSubmitter) {
		t.Fatalf("foreign edit: got %v, want ErrNotSubmitter", err)
	}
}

func TestTransitionStampsAndIsFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	approved, err := f.leaves.Transition(ctx, v.ID, leave.StatusApproved, f.hrUser.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if approved.Status != leave.StatusApproved {
		t.Fatalf("status = %q after approve", approved.Status)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != f.hrUser.ID {
		t.Fatalf("approvedBy = %v, want %q", approved.ApprovedBy, f.hrUser.ID)
	}
	if approved.ApprovedDate == nil {
		t.Fatal("approvedDate not set")
	}
	if approved.Approver == nil || approved.Approver.Name != f.hrUser.Name {
		t.Fatalf("approver ref not denormalized: %+v", approved.Approver)
	}

	// terminal states are final: no re-approve, no reject-after-approve
	_, err = f.leaves.Transition(ctx, v.ID, leave.StatusApproved, f.adminUser.ID)
	if !errors.Is(err, leave.ErrInvalidTransition) {
		t.Fatalf("re-approve: got %v, want ErrInvalidTransition", err)
	}
	_, err = f.leaves.Transition(ctx, v.ID, leave.StatusRejected, f.adminUser.ID)
	if !errors.Is(err, leave.ErrInvalidTransition) {
		t.Fatalf("reject after approve: got %v, want ErrInvalidTransition", err)
	}

	// the first approver's stamp survives
	check, _ := f.leaves.GetByID(ctx, v.ID)
	if *check.ApprovedBy != f.hrUser.ID {
		t.Fatalf("approvedBy re-stamped to %q", *check.ApprovedBy)
	}

	// a processed request can no longer be content-edited
	reason := "late correction"
	_, err = f.leaves.Edit(ctx, v.ID, f.employeeUser.ID, leave.UpdateLeaveRequest{Reason: &reason})
	if !errors.Is(err, leave.ErrAlreadyProcessed) {
		t.Fatalf("edit after approve: got %v, want ErrAlreadyProcessed", err)
	}
}

func TestRejectStampsRejecter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	rejected, err := f.leaves.Transition(ctx, v.ID, leave.StatusRejected, f.hrUser.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if rejected.Status != leave.StatusRejected {
		t.Fatalf("status = %q after reject", rejected.Status)
	}
	if rejected.RejectedBy == nil || *rejected.RejectedBy != f.hrUser.ID {
		t.Fatalf("rejectedBy = %v, want %q", rejected.RejectedBy, f.hrUser.ID)
	}
	if rejected.ApprovedBy != nil {
		t.Fatal("approvedBy set on a rejected request")
	}
}

func TestDeleteRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	// a different non-admin user may not delete it
	otherUser, _ := f.users.Create(ctx, user.User{
		ID: uuid.NewString(), Name: "Fay Nos", Email: "fay@example.com",
		Role: user.RoleEmployee, IsActive: true,
	})
	err := f.leaves.Delete(ctx, v.ID, otherUser.ID, false)
	if !errors.Is(err, leave.ErrNotSubmitter) {
		t.Fatalf("foreign delete: got %v, want ErrNotSubmitter", err)
	}

	// once processed, the submitter can no longer delete it
	if _, err := f.leaves.Transition(ctx, v.ID, leave.StatusApproved, f.hrUser.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	err = f.leaves.Delete(ctx, v.ID, f.employeeUser.ID, false)
	if !errors.Is(err, leave.ErrAlreadyProcessed) {
		t.Fatalf("submitter delete after approve: got %v, want ErrAlreadyProcessed", err)
	}

	// but an admin may, regardless of status
	if err := f.leaves.Delete(ctx, v.ID, f.adminUser.ID, true); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if _, err := f.leaves.GetByID(ctx, v.ID); !errors.Is(err, leave.ErrNotFound) {
		t.Fatalf("request still present after admin delete: %v", err)
	}

	// the submitter can delete their own pending request
	v2 := f.pendingRequest(t, f.employeeUser, "short leave")
	if err := f.leaves.Delete(ctx, v2.ID, f.employeeUser.ID, false); err != nil {
		t.Fatalf("submitter delete of pending request failed: %v", err)
	}

	// unknown id
	if err := f.leaves.Delete(ctx, uuid.NewString(), f.adminUser.ID, true); !errors.Is(err, leave.ErrNotFound) {
		t.Fatalf("delete unknown id: got %v, want ErrNotFound", err)
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.pendingRequest(t, f.employeeUser, "mine")
	_ = f.pendingRequest(t, f.hrUser, "theirs")

	own, err := f.leaves.ListBySubmitter(ctx, f.employeeUser.ID)
	if err != nil {
		t.Fatalf("ListBySubmitter failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != mine.ID {
		t.Fatalf("submitter scope returned %d items, want just %q", len(own), mine.ID)
	}
	for _, item := range own {
		if item.SubmittedBy != f.employeeUser.ID {
			t.Fatalf("scoped listing leaked request %q submitted by %q", item.ID, item.SubmittedBy)
		}
	}

	all, err := f.leaves.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListAll returned %d items, want 2", len(all))
	}

	byEmployee, err := f.leaves.ListByEmployee(ctx, f.staff.ID)
	if err != nil {
		t.Fatalf("ListByEmployee failed: %v", err)
	}
	if len(byEmployee) != 2 {
		t.Fatalf("ListByEmployee returned %d items, want 2", len(byEmployee))
	}
}

func TestEditValidatesDateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v := f.pendingRequest(t, f.employeeUser, "trip")

	badFrom := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.leaves.Edit(ctx, v.ID, f.employeeUser.ID, leave.UpdateLeaveRequest{
		FromDate: &badFrom, // after the stored toDate
	})
	if !errors.Is(err, leave.ErrInvalidDateRange) {
		t.Fatalf("edit with reversed dates: got %v, want ErrInvalidDateRange", err)
	}

	// a failed edit must not consume the single allowed edit
	check, _ := f.leaves.GetByID(ctx, v.ID)
	if check.IsEdited {
		t.Fatal("failed edit flipped isEdited")
	}
}
