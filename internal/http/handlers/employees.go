package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staffhub-io/staffhub/internal/config"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
)

type EmployeesStore interface {
	List(ctx context.Context) ([]employee.Employee, error)
	GetByID(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error)
	Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error)
	Delete(ctx context.Context, id string) error
}

type EmployeesHandler struct {
	repo EmployeesStore
}

func NewEmployeesHandler(repo EmployeesStore) *EmployeesHandler {
	return &EmployeesHandler{repo: repo}
}

func (h *EmployeesHandler) ListEmployees(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	employees, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list employees")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": employees,
		"count": len(employees),
	})
}

func (h *EmployeesHandler) GetEmployeeByID(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			RespondNotFound(ctx, "Employee not found")
			return
		}
		RespondInternal(ctx, "Could not fetch employee")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EmployeesHandler) CreateEmployee(ctx *gin.Context) {
	var req employee.CreateEmployeeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, employee.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "An employee with this email already exists.", nil)
			return
		}
		RespondInternal(ctx, "Could not create employee")
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EmployeesHandler) UpdateEmployee(ctx *gin.Context) {
	id := ctx.Param("id")

	var req employee.UpdateEmployeeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	e, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, employee.ErrNotFound):
			RespondNotFound(ctx, "Employee not found")
		case errors.Is(err, employee.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "An employee with this email already exists.", nil)
		default:
			RespondInternal(ctx, "Could not update employee")
		}
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EmployeesHandler) DeleteEmployee(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			RespondNotFound(ctx, "Employee not found")
			return
		}
		RespondInternal(ctx, "Could not delete employee")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Employee deleted successfully"})
}
