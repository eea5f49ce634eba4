package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/staffhub-io/staffhub/internal/domain/employee"
)

type EmployeesRepo struct {
	mu    sync.RWMutex
	items map[string]employee.Employee
}

func NewEmployeesRepo() *EmployeesRepo {
	return &EmployeesRepo{
		items: make(map[string]employee.Employee),
	}
}

func (r *EmployeesRepo) List(ctx context.Context) ([]employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]employee.Employee, 0, len(r.items))

	for _, e := range r.items {
		out = append(out, e)
	}

	// newest-created first, id as a tiebreaker for stable output
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *EmployeesRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]

	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}

	return e, nil
}

func (r *EmployeesRepo) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Email == req.Email {
			return employee.Employee{}, employee.ErrEmailTaken
		}
	}

	e := employee.NewFromCreateRequest(req)
	r.items[e.ID] = e

	return e, nil
}

func (r *EmployeesRepo) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]

	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}

	if req.Email != nil {
		for otherID, existing := range r.items {
			if otherID != id && existing.Email == *req.Email {
				return employee.Employee{}, employee.ErrEmailTaken
			}
		}
		e.Email = *req.Email
	}
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Role != nil {
		e.Role = *req.Role
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.JoinDate != nil {
		e.JoinDate = req.JoinDate.UTC()
	}
	if req.Phone != nil {
		e.Phone = *req.Phone
	}
	if req.ProfilePhoto != nil {
		e.ProfilePhoto = *req.ProfilePhoto
	}

	e.UpdatedAt = time.Now().UTC()
	r.items[id] = e

	return e, nil
}

func (r *EmployeesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return employee.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
