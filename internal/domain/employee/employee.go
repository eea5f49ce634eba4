package employee

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // job title, not an access role
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	JoinDate     time.Time `json:"joinDate"`
	Phone        string    `json:"phone,omitempty"`
	ProfilePhoto string    `json:"profilePhoto,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("employee not found")
var ErrEmailTaken = errors.New("employee email already in use")

type CreateEmployeeRequest struct {
	Name         string     `json:"name" binding:"required,min=2,max=120"`
	Role         string     `json:"role" binding:"required,min=2,max=120"`
	Email        string     `json:"email" binding:"required,email"`
	Department   string     `json:"department" binding:"required,min=2,max=120"`
	JoinDate     *time.Time `json:"joinDate" binding:"omitempty"`
	Phone        string     `json:"phone" binding:"omitempty,max=40"`
	ProfilePhoto string     `json:"profilePhoto" binding:"omitempty,url"`
}

// partial update: nil fields are left untouched
type UpdateEmployeeRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=2,max=120"`
	Role         *string    `json:"role" binding:"omitempty,min=2,max=120"`
	Email        *string    `json:"email" binding:"omitempty,email"`
	Department   *string    `json:"department" binding:"omitempty,min=2,max=120"`
	JoinDate     *time.Time `json:"joinDate" binding:"omitempty"`
	Phone        *string    `json:"phone" binding:"omitempty,max=40"`
	ProfilePhoto *string    `json:"profilePhoto" binding:"omitempty,url"`
}

// A factory to build an Employee from the incoming DTO

func NewFromCreateRequest(req CreateEmployeeRequest) Employee {
	now := time.Now().UTC()

	joinDate := now
	if req.JoinDate != nil {
		joinDate = req.JoinDate.UTC()
	}

	return Employee{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Role:         req.Role,
		Email:        req.Email,
		Department:   req.Department,
		JoinDate:     joinDate,
		Phone:        req.Phone,
		ProfilePhoto: req.ProfilePhoto,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
