// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"net/http"

	"github.com/JMan003/banking-system-project/internal/accountdelivery"
	"github.com/JMan003/banking-system-project/internal/accountrepo"
	"github.com/JMan003/banking-system-project/internal/adminrepo"
	"github.com/JMan003/banking-system-project/internal/entryrepo"
	"github.com/JMan003/banking-system-project/internal/feedbackdelivery"
	"github.com/JMan003/banking-system-project/internal/feedbackrepo"
	"github.com/JMan003/banking-system-project/internal/feedbackservice"
	"github.com/JMan003/banking-system-project/internal/ledgerservice"
	"github.com/JMan003/banking-system-project/internal/loandelivery"
	"github.com/JMan003/banking-system-project/internal/loanrepo"
	"github.com/JMan003/banking-system-project/internal/loanservice"
	"github.com/JMan003/banking-system-project/internal/middleware"
	"github.com/JMan003/banking-system-project/internal/sessiondelivery"
	"github.com/JMan003/banking-system-project/internal/sessionlock"
	"github.com/JMan003/banking-system-project/internal/sessionservice"
	"github.com/JMan003/banking-system-project/internal/staffdelivery"
	"github.com/JMan003/banking-system-project/internal/staffrepo"
	"github.com/JMan003/banking-system-project/internal/staffservice"
	"github.com/JMan003/banking-system-project/pkg/configpkg"
	"github.com/JMan003/banking-system-project/pkg/dbpkg"
	"github.com/JMan003/banking-system-project/pkg/metricspkg"
	"github.com/JMan003/banking-system-project/pkg/tokenpkg"
	"github.com/JMan003/banking-system-project/pkg/web"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server holds the data directory, handlers router and configuration.
type Server struct {
	DB       *dbpkg.DB
	Engine   *gin.Engine
	Config   configpkg.Config
	Sessions *sessionservice.Service
	Metrics  *metricspkg.Metrics

	closeLocker func() error
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close ends every live session and releases the session lock backend.
func (s *Server) Close(ctx context.Context) error {
	s.Sessions.Shutdown(ctx)

	return s.closeLocker()
}

// NewSessionLocker builds the configured session lock backend. The returned
// func releases the backend's resources.
func NewSessionLocker(config configpkg.Config) (sessionlock.Locker, func() error, error) {
	switch config.SessionBackend {
	case configpkg.SessionBackendFile, "":
		locker, err := sessionlock.NewFileLocker(config.SessionLockDir)
		if err != nil {
			return nil, nil, err
		}

		return locker, func() error { return nil }, nil
	case configpkg.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		return sessionlock.NewRedisLocker(client, config.RedisKeyPrefix), client.Close, nil
	}

	return nil, nil, errors.Errorf("unknown session backend %q", config.SessionBackend)
}

// New creates Server type with instantiated domains and routes.
func New(logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	db, err := dbpkg.Setup(config.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "cannot set up data directory")
	}

	tokenMaker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create token maker")
	}

	locker, closeLocker, err := NewSessionLocker(config)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create session locker")
	}

	var metrics *metricspkg.Metrics
	if config.MetricsEnabled {
		metrics = metricspkg.New("bank")
	}

	accountRepo := accountrepo.NewRepo(db)
	entryRepo := entryrepo.NewRepo(db)
	staffRepo := staffrepo.NewRepo(db)
	loanRepo := loanrepo.NewRepo(db)
	feedbackRepo := feedbackrepo.NewRepo(db)
	adminRepo := adminrepo.NewRepo(db, config.AdminDefaultPassword)

	ledgerService := ledgerservice.New(accountRepo, entryRepo, metrics, config.HistoryLimit)
	loanService := loanservice.New(loanRepo, accountRepo, staffRepo, entryRepo, metrics)
	staffService := staffservice.New(staffRepo, adminRepo)
	feedbackService := feedbackservice.New(feedbackRepo)
	sessionService := sessionservice.New(locker, tokenMaker, ledgerService, staffService, config.AccessTokenDuration, metrics)

	sessionHandler := sessiondelivery.NewHandler(sessionService)
	accountHandler := accountdelivery.NewHandler(ledgerService, sessionService)
	loanHandler := loandelivery.NewHandler(loanService)
	staffHandler := staffdelivery.NewHandler(staffService, sessionService)
	feedbackHandler := feedbackdelivery.NewHandler(feedbackService)

	if err := web.RegisterValidators(); err != nil {
		return nil, errors.Wrap(err, "cannot register amount validator")
	}

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	if metrics != nil {
		engine.Use(middleware.Metrics(metrics))
		engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	engine.POST("/sessions/customer", sessionHandler.CustomerLogin)
	engine.POST("/sessions/staff", sessionHandler.StaffLogin)
	engine.POST("/sessions/admin", sessionHandler.AdminLogin)

	auth := engine.Group("/", middleware.AuthMiddleware(tokenMaker, sessionService))
	auth.DELETE("/sessions", sessionHandler.Logout)

	var (
		customer = middleware.RequireRole(tokenpkg.RoleCustomer)
		employee = middleware.RequireRole(tokenpkg.RoleEmployee)
		manager  = middleware.RequireRole(tokenpkg.RoleManager)
		admin    = middleware.RequireRole(tokenpkg.RoleAdmin)
		staff    = middleware.RequireRole(tokenpkg.RoleEmployee, tokenpkg.RoleManager)
		owners   = middleware.RequireRole(tokenpkg.RoleEmployee, tokenpkg.RoleAdmin)
	)

	auth.GET("/accounts/me", customer, accountHandler.Me)
	auth.POST("/accounts/me/deposit", customer, accountHandler.Deposit)
	auth.POST("/accounts/me/withdraw", customer, accountHandler.Withdraw)
	auth.GET("/accounts/me/transactions", customer, accountHandler.History)
	auth.PUT("/accounts/me/pin", customer, accountHandler.ChangePIN)
	auth.POST("/transfers", customer, accountHandler.Transfer)
	auth.POST("/loans", customer, loanHandler.Request)
	auth.POST("/feedback", customer, feedbackHandler.Submit)

	auth.POST("/customers", employee, accountHandler.CreateCustomer)
	auth.PUT("/customers/:id/owner", owners, accountHandler.UpdateOwner)
	auth.GET("/customers/:id/transactions", employee, accountHandler.CustomerHistory)
	auth.GET("/loans/assigned", employee, loanHandler.ListAssigned)
	auth.POST("/loans/:id/process", employee, loanHandler.Process)

	auth.PUT("/customers/:id/status", manager, accountHandler.SetStatus)
	auth.GET("/loans/requested", manager, loanHandler.ListRequested)
	auth.POST("/loans/:id/assign", manager, loanHandler.Assign)
	auth.GET("/feedback", manager, feedbackHandler.List)

	auth.PUT("/staff/me/password", staff, staffHandler.ChangePassword)

	auth.POST("/staff", admin, staffHandler.Create)
	auth.PUT("/staff/:id/role", admin, staffHandler.UpdateRole)
	auth.PUT("/staff/:id/name", admin, staffHandler.UpdateName)
	auth.PUT("/admin/password", admin, staffHandler.ChangeAdminPassword)

	server := &Server{
		DB:          db,
		Engine:      engine,
		Config:      config,
		Sessions:    sessionService,
		Metrics:     metrics,
		closeLocker: closeLocker,
	}

	return server, nil
}
