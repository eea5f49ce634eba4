package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/observability"
)

type EmployeesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEmployeesRepo(pool *pgxpool.Pool, prom *observability.Prom) *EmployeesRepo {
	return &EmployeesRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *EmployeesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

const employeeColumns = `id, name, role, email, department, join_date, phone, profile_photo, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Role,
		&e.Email,
		&e.Department,
		&e.JoinDate,
		&e.Phone,
		&e.ProfilePhoto,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	return e, err
}

// List returns every employee, newest-created first.
func (repo *EmployeesRepo) List(ctx context.Context) (out []employee.Employee, err error) {
	var rows pgx.Rows

	err = repo.observe("employees.list", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT `+employeeColumns+`
			 FROM employees
			 ORDER BY created_at DESC, id DESC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	out = make([]employee.Employee, 0)

	for rows.Next() {
		var e employee.Employee

		scanErr := rows.Scan(&e.ID, &e.Name, &e.Role, &e.Email, &e.Department, &e.JoinDate, &e.Phone, &e.ProfilePhoto, &e.CreatedAt, &e.UpdatedAt)

		if scanErr != nil {
			err = scanErr
			return
		}
		out = append(out, e)
	}

	err = rows.Err()

	return
}

func (repo *EmployeesRepo) GetByID(ctx context.Context, id string) (found employee.Employee, err error) {
	err = repo.observe("employees.get_by_id", func() error {
		var scanErr error
		found, scanErr = scanEmployee(repo.pool.QueryRow(ctx,
			`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = employee.ErrNotFound
		}
		return employee.Employee{}, err
	}

	return
}

func (repo *EmployeesRepo) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	e := employee.NewFromCreateRequest(req)

	err := repo.observe("employees.create", func() error {
		_, execErr := repo.pool.Exec(ctx,
			`INSERT INTO employees (id, name, role, email, department, join_date, phone, profile_photo, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			e.ID, e.Name, e.Role, e.Email, e.Department, e.JoinDate, e.Phone, e.ProfilePhoto, e.CreatedAt, e.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.Employee{}, employee.ErrEmailTaken
		}
		return employee.Employee{}, err
	}

	return e, nil
}

// Update applies only the supplied fields.
func (repo *EmployeesRepo) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.Employee, error) {
	sets := []string{}
	args := []interface{}{}
	pos := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, pos))
		args = append(args, value)
		pos++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Role != nil {
		addSet("role", *req.Role)
	}
	if req.Email != nil {
		addSet("email", *req.Email)
	}
	if req.Department != nil {
		addSet("department", *req.Department)
	}
	if req.JoinDate != nil {
		addSet("join_date", req.JoinDate.UTC())
	}
	if req.Phone != nil {
		addSet("phone", *req.Phone)
	}
	if req.ProfilePhoto != nil {
		addSet("profile_photo", *req.ProfilePhoto)
	}

	if len(sets) == 0 {
		// nothing to change, behave like a read
		return repo.GetByID(ctx, id)
	}

	addSet("updated_at", time.Now().UTC())

	query := fmt.Sprintf(
		`UPDATE employees SET %s WHERE id = $%d RETURNING `+employeeColumns,
		strings.Join(sets, ", "), pos,
	)
	args = append(args, id)

	var updated employee.Employee

	err := repo.observe("employees.update", func() error {
		var scanErr error
		updated, scanErr = scanEmployee(repo.pool.QueryRow(ctx, query, args...))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return employee.Employee{}, employee.ErrEmailTaken
		}
		return employee.Employee{}, err
	}

	return updated, nil
}

func (repo *EmployeesRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := repo.observe("employees.delete", func() error {
		var execErr error
		tag, execErr = repo.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		return execErr
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return employee.ErrNotFound
	}

	return nil
}
