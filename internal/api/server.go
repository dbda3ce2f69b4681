package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/illegalcall/codeshell/internal/auth"
	"github.com/illegalcall/codeshell/internal/config"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/events"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/preview"
	"github.com/illegalcall/codeshell/internal/profile"
	"github.com/illegalcall/codeshell/internal/storage"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
)

// AccountService signs users up, in and out.
type AccountService interface {
	SignUp(ctx context.Context, email, password, username string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// DeploymentLog tracks the cached state of previews next to the store.
type DeploymentLog interface {
	LastDeployment(ctx context.Context, name string) (*models.Deployment, error)
	Invalidate(ctx context.Context, name string) error
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Gate        *auth.Gate
	Store       store.Store
	Deployments DeploymentLog
	Profiles    *profile.Service
	Accounts    AccountService
	Workspaces  *workspace.Repository
	Deployer    preview.Deployer
	Storage     storage.Storage
	Events      events.Publisher
	Ping        func(ctx context.Context) error
}

type Server struct {
	app  *fiber.App
	cfg  *config.Config
	deps Deps
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Events == nil {
		deps.Events = events.Discard{}
	}
	envelope.AllowOrigin = cfg.Server.AllowOrigin

	app := fiber.New(fiber.Config{
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return envelope.Error(c, e.Message, e.Code, "")
			}
			slog.Error("Unhandled request error", "path", c.Path(), "error", err)
			return envelope.FromError(c, err, !cfg.IsProduction())
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:  app,
		cfg:  cfg,
		deps: deps,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.app.Options("/*", envelope.Preflight)
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.app.Get("/preview/:name", s.handleFrame)

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/signup", s.handleSignUp)
	api.Post("/auth/login", s.handleLogin)
	api.Get("/tools", s.handleTools)
	api.Get("/previews/:name", s.handleGetPreview)
	api.Get("/previews/:name/search", s.handleSearch)

	// Protected routes
	gate := s.deps.Gate
	api.Post("/auth/logout", auth.RequireUser(gate, s.handleLogout))
	api.Put("/previews/:name", auth.RequireUser(gate, s.handleSavePreview))
	api.Post("/previews/:name/deploy", auth.RequireUser(gate, s.handleDeploy))
	api.Get("/profile", auth.RequireUser(gate, s.handleGetProfile))
	api.Patch("/profile", auth.RequireUser(gate, s.handleUpdateProfile))
	api.Get("/conversations", auth.RequireUser(gate, s.handleListConversations))
	api.Post("/conversations", auth.RequireUser(gate, s.handleCreateConversation))
	api.Get("/conversations/:id/messages", auth.RequireUser(gate, s.handleListMessages))
	api.Post("/conversations/:id/messages", auth.RequireUser(gate, s.handleAppendMessage))
	api.Get("/workspace", auth.RequireUser(gate, s.handleGetWorkspace))
	api.Post("/workspace/events", auth.RequireUser(gate, s.handleWorkspaceEvent))

	// Service routes
	internal := s.app.Group("/internal", auth.ServiceRole(s.cfg.Supabase.JWTSecret))
	internal.Delete("/previews/:name/cache", s.handlePurgeCache)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// fail writes err as an envelope, hiding unexpected error details in production.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	return envelope.FromError(c, err, !s.cfg.IsProduction())
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.deps.Ping != nil {
		if err := s.deps.Ping(c.UserContext()); err != nil {
			slog.Error("Health check failed", "error", err)
			return s.fail(c, err)
		}
	}
	return envelope.JSON(c, fiber.Map{"status": "ok"})
}
