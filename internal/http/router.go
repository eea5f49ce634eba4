package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/staffhub-io/staffhub/internal/auth"
	"github.com/staffhub-io/staffhub/internal/config"
	"github.com/staffhub-io/staffhub/internal/domain/user"
	"github.com/staffhub-io/staffhub/internal/http/handlers"
	"github.com/staffhub-io/staffhub/internal/http/middlewares"
	"github.com/staffhub-io/staffhub/internal/observability"
	"github.com/staffhub-io/staffhub/internal/repo/postgres"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry with process/go collectors
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("staffhub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.RequestLogger(log))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	employeesRepo := postgres.NewEmployeesRepo(pool, prom)
	leaveRepo := postgres.NewLeaveRequestsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	// brute-force protection on the credential endpoints
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	employeesHandler := handlers.NewEmployeesHandler(employeesRepo)
	leaveHandler := handlers.NewLeaveRequestsHandler(leaveRepo)

	authGroup := r.Group("/auth")
	authGroup.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.GET("/profile", authMW.RequireAuth(), authHandler.Profile)

	authed := r.Group("", authMW.RequireAuth())

	authed.GET("/employees", employeesHandler.ListEmployees)
	authed.GET("/employees/:id", employeesHandler.GetEmployeeByID)
	authed.POST("/employees", authMW.RequirePermission(user.PermEmployeeCreate), employeesHandler.CreateEmployee)
	authed.PUT("/employees/:id", authMW.RequirePermission(user.PermEmployeeUpdate), employeesHandler.UpdateEmployee)
	authed.DELETE("/employees/:id", authMW.RequirePermission(user.PermEmployeeDelete), employeesHandler.DeleteEmployee)

	authed.GET("/leave-requests", leaveHandler.ListLeaveRequests)
	authed.GET("/leave-requests/employee/:employeeId", leaveHandler.ListByEmployee)
	authed.POST("/leave-requests", leaveHandler.CreateLeaveRequest)
	authed.PUT("/leave-requests/:id", leaveHandler.UpdateLeaveRequest)
	authed.DELETE("/leave-requests/:id", leaveHandler.DeleteLeaveRequest)

	return r
}
