package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/staffhub-io/staffhub/internal/domain/employee"
	"github.com/staffhub-io/staffhub/internal/domain/user"
	"github.com/staffhub-io/staffhub/internal/http/middlewares"
	"github.com/staffhub-io/staffhub/internal/repo/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires the in-memory repos the way the router wires the postgres
// ones, so handler tests exercise the same interfaces the server does.
type testEnv struct {
	users     *memory.UsersRepo
	employees *memory.EmployeesRepo
	leaves    *memory.LeaveRequestsRepo

	staff        employee.Employee
	employeeUser user.User
	hrUser       user.User
	adminUser    user.User
}

func newTestEnv(t *testing.T) *testEnv {
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
			t.Fatalf("seed user %s: %v", email, err)
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
		t.Fatalf("seed employee: %v", err)
	}

	return &testEnv{
		users:        users,
		employees:    employees,
		leaves:       leaves,
		staff:        staff,
		employeeUser: mkUser("Eli Park", "eli@example.com", user.RoleEmployee),
		hrUser:       mkUser("Hana Obi", "hana@example.com", user.RoleHR),
		adminUser:    mkUser("Ada Min", "ada@example.com", user.RoleAdmin),
	}
}

// asActor plants an already-authenticated identity, standing in for the
// bearer-token gate.
func asActor(actor user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxActor, actor)
		c.Next()
	}
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

type errEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func wantErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}

	var env errEnvelope
	decodeBody(t, w, &env)

	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q (body %s)", env.Error.Code, code, w.Body.String())
	}
}
