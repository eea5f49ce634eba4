package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/staffhub-io/staffhub/internal/auth"
	"github.com/staffhub-io/staffhub/internal/domain/user"
	"github.com/staffhub-io/staffhub/internal/http/handlers"
	"github.com/staffhub-io/staffhub/internal/repo/memory"
	"github.com/staffhub-io/staffhub/internal/security"
)

func authRouter(users *memory.UsersRepo) *gin.Engine {
	jwtManager := auth.NewManager("test-secret", 15*time.Minute)
	h := handlers.NewAuthHandler(users, users, jwtManager)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	return r
}

type authResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func TestRegister(t *testing.T) {
	users := memory.NewUsersRepo()
	r := authRouter(users)

	t.Run("defaults to the employee role", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
			"name":     "Eli Park",
			"email":    "eli@example.com",
			"password": "correct-horse",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}

		var resp authResponse
		decodeBody(t, w, &resp)

		if resp.Token == "" {
			t.Error("no access token issued")
		}
		if resp.User.Role != user.RoleEmployee {
			t.Errorf("role = %q, want employee default", resp.User.Role)
		}
		if !resp.User.IsActive {
			t.Error("new account not active")
		}

		// the hash never leaves the server
		if bodyStr := w.Body.String(); len(bodyStr) > 0 {
			stored, err := users.GetByEmail(context.Background(), "eli@example.com")
			if err != nil {
				t.Fatalf("stored user missing: %v", err)
			}
			if stored.PasswordHash == "" {
				t.Error("password hash not persisted")
			}
			if strings.Contains(bodyStr, stored.PasswordHash) {
				t.Error("password hash leaked in the response")
			}
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
			"name":     "Eli Again",
			"email":    "eli@example.com",
			"password": "correct-horse",
		})
		wantErrorCode(t, w, http.StatusBadRequest, "email_taken")
	})

	t.Run("short password", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
			"name":     "Shorty",
			"email":    "short@example.com",
			"password": "abc",
		})
		wantErrorCode(t, w, http.StatusBadRequest, "invalid_request")
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
			"name":     "Boss",
			"email":    "boss@example.com",
			"password": "correct-horse",
			"role":     "superuser",
		})
		wantErrorCode(t, w, http.StatusBadRequest, "invalid_request")
	})
}

func TestLogin(t *testing.T) {
	users := memory.NewUsersRepo()
	r := authRouter(users)

	seedAccount := func(t *testing.T, email, password string, active bool) user.User {
		t.Helper()

		hash, err := security.HashPassword(password)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}

		u, err := users.Create(context.Background(), user.User{
			ID:           uuid.NewString(),
			Name:         "Seeded User",
			Email:        email,
			PasswordHash: hash,
			Role:         user.RoleEmployee,
			IsActive:     active,
		})
		if err != nil {
			t.Fatalf("seed account: %v", err)
		}
		return u
	}

	seeded := seedAccount(t, "hana@example.com", "correct-horse", true)
	seedAccount(t, "gone@example.com", "correct-horse", false)

	t.Run("valid credentials", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
			"email":    "hana@example.com",
			"password": "correct-horse",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}

		var resp authResponse
		decodeBody(t, w, &resp)

		if resp.Token == "" {
			t.Error("no access token issued")
		}
		if resp.User.ID != seeded.ID {
			t.Errorf("user id = %q, want %q", resp.User.ID, seeded.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
			"email":    "hana@example.com",
			"password": "wrong-horse",
		})
		wantErrorCode(t, w, http.StatusUnauthorized, "invalid_credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
			"email":    "nobody@example.com",
			"password": "correct-horse",
		})
		wantErrorCode(t, w, http.StatusUnauthorized, "invalid_credentials")
	})

	t.Run("deactivated account", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
			"email":    "gone@example.com",
			"password": "correct-horse",
		})
		wantErrorCode(t, w, http.StatusUnauthorized, "account_deactivated")
	})
}
