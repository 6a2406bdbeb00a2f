package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"orgconsole/dal"
	"orgconsole/middelware"
	"orgconsole/models"
	"orgconsole/repository"
	"orgconsole/services"
	"orgconsole/session"
	"orgconsole/utils/logger"
	"orgconsole/views"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// HealthReporter is a background component whose status is reported by /health
type HealthReporter interface {
	GetHealthStatus() map[string]interface{}
}

type Controller struct {
	Console      *ConsoleController
	Organization *OrganizationController
	User         *UserController

	registry *services.Registry
	sweeper  HealthReporter
	sessions *middelware.SessionManager
	csrf     *middelware.CSRFMiddleware
	logging  *middelware.LoggingMiddleware
	config   *models.Config
	logger   logger.Logger
}

// NewController wires the backend client, the console registry and the handlers
func NewController(ctx context.Context, cfg *models.Config, log logger.Logger) (*Controller, error) {
	api, err := dal.NewAPIClient(cfg.APIBaseURL, nil, nil, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize api client: %w", err)
	}

	registry := services.NewRegistry(func(tokens session.TokenStore) repository.RepositoryContainerInterface {
		return repository.NewRepository(api.WithTokens(tokens), log)
	}, log)
	sessions := middelware.NewSessionManager(cfg, log, registry)
	base := handler{sessions: sessions, logger: log}

	return &Controller{
		Console:      NewConsoleController(ctx, base, cfg),
		Organization: NewOrganizationController(ctx, base),
		User:         NewUserController(ctx, base),
		registry:     registry,
		sessions:     sessions,
		csrf:         middelware.NewCSRFMiddleware(cfg, log),
		logging:      middelware.NewLoggingMiddleware(log),
		config:       cfg,
		logger:       log,
	}, nil
}

// Registry exposes the console registry to the session sweeper
func (c *Controller) Registry() *services.Registry {
	return c.registry
}

// AttachSweeper adds the session sweeper's status to /health
func (c *Controller) AttachSweeper(sweeper HealthReporter) {
	c.sweeper = sweeper
}

// RegisterRoutes installs the templates, middleware and console routes on r
func (c *Controller) RegisterRoutes(r *gin.Engine) error {
	tmpl, err := views.Parse()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(c.logging.Recovery(), c.logging.StructuredLogger())

	// Health check endpoint (no session required)
	r.GET("/health", func(ctx *gin.Context) {
		data := gin.H{
			"status":   "healthy",
			"version":  c.config.AppVersion,
			"service":  c.config.AppName,
			"consoles": c.registry.Len(),
		}
		if c.sweeper != nil {
			data["session_sweeper"] = c.sweeper.GetHealthStatus()
		}
		ctx.JSON(http.StatusOK, models.APIResponse{
			Status: "success",
			Code:   http.StatusOK,
			Data:   data,
		})
	})

	console := r.Group("/", c.csrf.Protect(), c.sessions.Middleware())
	console.GET("/", c.Console.Index)

	nav := console.Group("/nav")
	nav.POST("/organizations", c.Console.OrganizationAccess)
	nav.POST("/users", c.Console.UsersDirectory)
	nav.POST("/register", c.Console.UserRegistration)
	nav.POST("/main", c.Console.BackToMain)
	nav.POST("/tab/:tab", c.Console.SelectTab)

	modal := console.Group("/modal")
	modal.POST("/close", c.Console.CloseModal)
	modal.POST("/login", c.Console.OpenLogin)
	modal.POST("/signup", c.Console.OpenSignup)
	modal.POST("/submit", c.Console.Submit)

	orgs := console.Group("/organizations")
	orgs.POST("/new", c.Organization.New)
	orgs.POST("/:id/edit", c.Organization.Edit)
	orgs.POST("/:id/delete", c.Organization.Delete)

	users := console.Group("/users")
	users.POST("/new", c.User.New)
	users.POST("/:id/edit", c.User.Edit)
	users.POST("/:id/delete", c.User.Delete)

	console.POST("/delete/confirm", c.Console.ConfirmDelete)
	console.POST("/auth/logout", c.Console.Logout)
	console.POST("/notice/dismiss", c.Console.DismissNotice)

	return nil
}

// Serve runs the console server until ctx is cancelled
func (c *Controller) Serve(ctx context.Context, r *gin.Engine) error {
	srv := &http.Server{
		Addr:    c.config.Addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Infof("Starting console server on %s", c.config.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.logger.Info("Shutting down console server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
