package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staffhub-io/staffhub/internal/config"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/domain/leave"
	"github.com/staffhub-io/staffhub/internal/domain/user"
	"github.com/staffhub-io/staffhub/internal/http/middlewares"
)

type LeaveRequestsStore interface {
	ListAll(ctx context.Context) ([]leave.LeaveRequestView, error)
	ListBySubmitter(ctx context.Context, userID string) ([]leave.LeaveRequestView, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequestView, error)
	GetByID(ctx context.Context, id string) (leave.LeaveRequestView, error)
	Create(ctx context.Context, req leave.CreateLeaveRequest, actorID string) (leave.LeaveRequestView, error)
	Transition(ctx context.Context, id string, status leave.Status, actorID string) (leave.LeaveRequestView, error)
	Edit(ctx context.Context, id, actorID string, patch leave.UpdateLeaveRequest) (leave.LeaveRequestView, error)
	Delete(ctx context.Context, id, actorID string, actorIsAdmin bool) error
}

type LeaveRequestsHandler struct {
	repo LeaveRequestsStore
}

func NewLeaveRequestsHandler(repo LeaveRequestsStore) *LeaveRequestsHandler {
	return &LeaveRequestsHandler{repo: repo}
}

// ListLeaveRequests scopes the result by role: employees see their own
// submissions, hr/admin see everything.
func (h *LeaveRequestsHandler) ListLeaveRequests(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var items []leave.LeaveRequestView
	var err error

	if user.Can(actor.Role, user.PermLeaveViewAll) {
		items, err = h.repo.ListAll(cctx)
	} else {
		items, err = h.repo.ListBySubmitter(cctx, actor.ID)
	}

	if err != nil {
		RespondInternal(ctx, "Could not list leave requests")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *LeaveRequestsHandler) ListByEmployee(ctx *gin.Context) {
	employeeID := ctx.Param("employeeId")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.repo.ListByEmployee(cctx, employeeID)

	if err != nil {
		RespondInternal(ctx, "Could not list leave requests")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *LeaveRequestsHandler) CreateLeaveRequest(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var req leave.CreateLeaveRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// submittedBy is always the actor, whatever the payload said
	view, err := h.repo.Create(cctx, req, actor.ID)

	if err != nil {
		switch {
		case errors.Is(err, employee.ErrNotFound):
			RespondBadRequest(ctx, "unknown_employee", "Referenced employee does not exist.", nil)
		case errors.Is(err, leave.ErrInvalidDateRange):
			RespondBadRequest(ctx, "invalid_date_range", "fromDate must not be after toDate.", nil)
		default:
			RespondInternal(ctx, "Could not create leave request")
		}
		return
	}

	ctx.JSON(http.StatusCreated, view)
}

// UpdateLeaveRequest dispatches on the payload: a non-pending status selects
// the approve/reject branch (hr/admin), anything else is the submitter's
// one-time content edit.
func (h *LeaveRequestsHandler) UpdateLeaveRequest(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	var patch leave.UpdateLeaveRequest

	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if patch.IsTransition() {
		if !user.Can(actor.Role, user.PermLeaveTransition) {
			RespondForbidden(ctx, "Only HR managers and admins can approve or reject leave requests")
			return
		}

		view, err := h.repo.Transition(cctx, id, patch.Status, actor.ID)

		if err != nil {
			switch {
			case errors.Is(err, leave.ErrNotFound):
				RespondNotFound(ctx, "Leave request not found")
			case errors.Is(err, leave.ErrInvalidTransition):
				RespondBadRequest(ctx, "invalid_transition", "Leave request has already been processed.", nil)
			default:
				RespondInternal(ctx, "Could not update leave request")
			}
			return
		}

		ctx.JSON(http.StatusOK, view)
		return
	}

	view, err := h.repo.Edit(cctx, id, actor.ID, patch)

	if err != nil {
		switch {
		case errors.Is(err, leave.ErrNotFound):
			RespondNotFound(ctx, "Leave request not found")
		case errors.Is(err, leave.ErrNotSubmitter):
			RespondForbidden(ctx, "You can only edit your own leave requests")
		case errors.Is(err, leave.ErrAlreadyProcessed):
			RespondBadRequest(ctx, "already_processed", "Cannot edit a leave request that has already been processed.", nil)
		case errors.Is(err, leave.ErrAlreadyEdited):
			RespondBadRequest(ctx, "already_edited", "Leave request can only be edited once.", nil)
		case errors.Is(err, leave.ErrInvalidDateRange):
			RespondBadRequest(ctx, "invalid_date_range", "fromDate must not be after toDate.", nil)
		default:
			RespondInternal(ctx, "Could not update leave request")
		}
		return
	}

	ctx.JSON(http.StatusOK, view)
}

func (h *LeaveRequestsHandler) DeleteLeaveRequest(ctx *gin.Context) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id, actor.ID, user.Can(actor.Role, user.PermLeaveDeleteAny))

	if err != nil {
		switch {
		case errors.Is(err, leave.ErrNotFound):
			RespondNotFound(ctx, "Leave request not found")
		case errors.Is(err, leave.ErrNotSubmitter):
			RespondForbidden(ctx, "You can only delete your own leave requests")
		case errors.Is(err, leave.ErrAlreadyProcessed):
			RespondBadRequest(ctx, "already_processed", "Cannot delete a leave request that has already been processed.", nil)
		default:
			RespondInternal(ctx, "Could not delete leave request")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Leave request deleted successfully"})
}
