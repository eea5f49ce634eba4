package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/domain/leave"
	"github.com/staffhub-io/staffhub/internal/observability"
)

type LeaveRequestsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLeaveRequestsRepo(pool *pgxpool.Pool, prom *observability.Prom) *LeaveRequestsRepo {
	return &LeaveRequestsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *LeaveRequestsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Read-side join: references expanded to display fields, one query per list.
// Writes below stay normalized (ids only).
const viewQuery = `
	SELECT lr.id, lr.employee_id, lr.submitted_by, lr.from_date, lr.to_date, lr.reason,
	       lr.status, lr.applied_date, lr.approved_by, lr.approved_date,
	       lr.rejected_by, lr.rejected_date, lr.is_edited, lr.edited_date,
	       lr.original_from_date, lr.original_to_date, lr.original_reason,
	       lr.created_at, lr.updated_at,
	       e.name, e.role, e.email,
	       su.name, su.email, su.role,
	       ab.name, ab.email,
	       rb.name, rb.email
	FROM leave_requests lr
	JOIN employees e ON e.id = lr.employee_id
	JOIN users su ON su.id = lr.submitted_by
	LEFT JOIN users ab ON ab.id = lr.approved_by
	LEFT JOIN users rb ON rb.id = lr.rejected_by
`

func scanView(row pgx.Row) (leave.LeaveRequestView, error) {
	var v leave.LeaveRequestView

	var origFrom, origTo *time.Time
	var origReason *string
	var empName, empRole, empEmail string
	var subName, subEmail, subRole string
	var apprName, apprEmail *string
	var rejName, rejEmail *string

	err := row.Scan(
		&v.ID, &v.EmployeeID, &v.SubmittedBy, &v.FromDate, &v.ToDate, &v.Reason,
		&v.Status, &v.AppliedDate, &v.ApprovedBy, &v.ApprovedDate,
		&v.RejectedBy, &v.RejectedDate, &v.IsEdited, &v.EditedDate,
		&origFrom, &origTo, &origReason,
		&v.CreatedAt, &v.UpdatedAt,
		&empName, &empRole, &empEmail,
		&subName, &subEmail, &subRole,
		&apprName, &apprEmail,
		&rejName, &rejEmail,
	)

	if err != nil {
		return leave.LeaveRequestView{}, err
	}

	if v.IsEdited && origFrom != nil && origTo != nil && origReason != nil {
		v.OriginalData = &leave.OriginalData{
			FromDate: *origFrom,
			ToDate:   *origTo,
			Reason:   *origReason,
		}
	}

	v.Employee = &leave.EmployeeRef{ID: v.EmployeeID, Name: empName, Role: empRole, Email: empEmail}
	v.Submitter = &leave.UserRef{ID: v.SubmittedBy, Name: subName, Email: subEmail, Role: subRole}

	if v.ApprovedBy != nil && apprName != nil && apprEmail != nil {
		v.Approver = &leave.UserRef{ID: *v.ApprovedBy, Name: *apprName, Email: *apprEmail}
	}

	if v.RejectedBy != nil && rejName != nil && rejEmail != nil {
		v.Rejecter = &leave.UserRef{ID: *v.RejectedBy, Name: *rejName, Email: *rejEmail}
	}

	return v, nil
}

func (repo *LeaveRequestsRepo) queryViews(ctx context.Context, op, where string, args ...interface{}) (out []leave.LeaveRequestView, err error) {
	q := viewQuery
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY lr.created_at DESC, lr.id DESC"

	var rows pgx.Rows

	err = repo.observe(op, func() error {
		rows, err = repo.pool.Query(ctx, q, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	out = make([]leave.LeaveRequestView, 0)

	for rows.Next() {
		v, scanErr := scanView(rows)

		if scanErr != nil {
			err = scanErr
			return
		}
		out = append(out, v)
	}

	err = rows.Err()

	return
}

// ListAll returns every leave request (hr/admin scope).
func (repo *LeaveRequestsRepo) ListAll(ctx context.Context) ([]leave.LeaveRequestView, error) {
	return repo.queryViews(ctx, "leave_requests.list_all", "")
}

// ListBySubmitter restricts the listing to one actor's own submissions.
func (repo *LeaveRequestsRepo) ListBySubmitter(ctx context.Context, userID string) ([]leave.LeaveRequestView, error) {
	return repo.queryViews(ctx, "leave_requests.list_by_submitter", "lr.submitted_by = $1", userID)
}

func (repo *LeaveRequestsRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestView, error) {
	return repo.queryViews(ctx, "leave_requests.list_by_employee", "lr.employee_id = $1", employeeID)
}

func (repo *LeaveRequestsRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequestView, error) {
	var v leave.LeaveRequestView

	err := repo.observe("leave_requests.get_by_id", func() error {
		var scanErr error
		v, scanErr = scanView(repo.pool.QueryRow(ctx, viewQuery+" WHERE lr.id = $1", id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequestView{}, leave.ErrNotFound
		}
		return leave.LeaveRequestView{}, err
	}

	return v, nil
}

// Create inserts a pending request. submittedBy is taken from the actor,
// never from the payload.
func (repo *LeaveRequestsRepo) Create(ctx context.Context, req leave.CreateLeaveRequest, actorID string) (leave.LeaveRequestView, error) {
	if req.FromDate.After(req.ToDate) {
		return leave.LeaveRequestView{}, leave.ErrInvalidDateRange
	}

	lr := leave.NewFromCreateRequest(req, actorID)

	err := repo.observe("leave_requests.create", func() error {
		_, execErr := repo.pool.Exec(ctx,
			`INSERT INTO leave_requests
			 (id, employee_id, submitted_by, from_date, to_date, reason, status, applied_date, is_edited, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			lr.ID, lr.EmployeeID, lr.SubmittedBy, lr.FromDate, lr.ToDate, lr.Reason,
			lr.Status, lr.AppliedDate, lr.IsEdited, lr.CreatedAt, lr.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "leave_requests_employee_id_fkey" {
			return leave.LeaveRequestView{}, employee.ErrNotFound
		}
		return leave.LeaveRequestView{}, err
	}

	return repo.GetByID(ctx, lr.ID)
}

// Transition moves a pending request to approved or rejected and stamps the
// deciding actor. The row is locked and the current status re-checked inside
// the transaction, so a second approve/reject fails instead of re-stamping.
func (repo *LeaveRequestsRepo) Transition(ctx context.Context, id string, status leave.Status, actorID string) (view leave.LeaveRequestView, err error) {
	if !status.IsTerminal() {
		err = leave.ErrInvalidTransition
		return
	}

	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var current leave.Status

	err = repo.observe("leave_requests.transition.lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT status FROM leave_requests WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = leave.ErrNotFound
		}
		return
	}

	if current != leave.StatusPending {
		err = leave.ErrInvalidTransition
		return
	}

	now := time.Now().UTC()

	var stampQuery string
	if status == leave.StatusApproved {
		stampQuery = `UPDATE leave_requests
			SET status = $1, approved_by = $2, approved_date = $3, updated_at = $3
			WHERE id = $4`
	} else {
		stampQuery = `UPDATE leave_requests
			SET status = $1, rejected_by = $2, rejected_date = $3, updated_at = $3
			WHERE id = $4`
	}

	err = repo.observe("leave_requests.transition.update", func() error {
		_, execErr := tx.Exec(ctx, stampQuery, status, actorID, now, id)
		return execErr
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	return repo.GetByID(ctx, id)
}

// Edit applies the one-time content edit. Ownership and the edit-once rule
// are checked against the locked row so the snapshot is taken exactly once.
func (repo *LeaveRequestsRepo) Edit(ctx context.Context, id, actorID string, patch leave.UpdateLeaveRequest) (view leave.LeaveRequestView, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var submittedBy string
	var status leave.Status
	var isEdited bool
	var fromDate, toDate time.Time
	var reason string

	err = repo.observe("leave_requests.edit.lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT submitted_by, status, is_edited, from_date, to_date, reason
			 FROM leave_requests WHERE id = $1 FOR UPDATE`, id,
		).Scan(&submittedBy, &status, &isEdited, &fromDate, &toDate, &reason)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = leave.ErrNotFound
		}
		return
	}

	if submittedBy != actorID {
		err = leave.ErrNotSubmitter
		return
	}

	if status != leave.StatusPending {
		err = leave.ErrAlreadyProcessed
		return
	}

	if isEdited {
		err = leave.ErrAlreadyEdited
		return
	}

	newFrom, newTo, newReason := fromDate, toDate, reason

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
		err = leave.ErrInvalidDateRange
		return
	}

	now := time.Now().UTC()

	err = repo.observe("leave_requests.edit.update", func() error {
		_, execErr := tx.Exec(ctx,
			`UPDATE leave_requests
			 SET from_date = $1, to_date = $2, reason = $3,
			     is_edited = TRUE, edited_date = $4,
			     original_from_date = $5, original_to_date = $6, original_reason = $7,
			     updated_at = $4
			 WHERE id = $8`,
			newFrom, newTo, newReason, now, fromDate, toDate, reason, id,
		)
		return execErr
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	return repo.GetByID(ctx, id)
}

// Delete removes a request. The submitter may delete their own pending
// request; an admin may delete any request regardless of status.
func (repo *LeaveRequestsRepo) Delete(ctx context.Context, id, actorID string, actorIsAdmin bool) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	var submittedBy string
	var status leave.Status

	err = repo.observe("leave_requests.delete.lock", func() error {
		return tx.QueryRow(ctx,
			`SELECT submitted_by, status FROM leave_requests WHERE id = $1 FOR UPDATE`, id,
		).Scan(&submittedBy, &status)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = leave.ErrNotFound
		}
		return
	}

	if !actorIsAdmin {
		if submittedBy != actorID {
			err = leave.ErrNotSubmitter
			return
		}

		if status != leave.StatusPending {
			err = leave.ErrAlreadyProcessed
			return
		}
	}

	err = repo.observe("leave_requests.delete.exec", func() error {
		_, execErr := tx.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1`, id)
		return execErr
	})

	if err != nil {
		return
	}

	return tx.Commit(ctx)
}
