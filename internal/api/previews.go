package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/events"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/preview"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
)

const (
	maxPreviewNameLength = 100
	defaultSearchLimit   = 50
	maxSearchLimit       = 200
)

type previewResponse struct {
	preview.View
	LastDeployment *models.Deployment `json:"last_deployment,omitempty"`
}

type deployResponse struct {
	URL      string       `json:"url"`
	Snapshot string       `json:"snapshot,omitempty"`
	Page     preview.View `json:"page"`
}

func (s *Server) loadPage(ctx context.Context, name string) (*preview.Page, error) {
	page := preview.NewPage(name, s.deps.Store, s.deps.Deployer, nil)
	if err := page.Load(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

// handleGetPreview returns the page for a stored preview. An unknown name gives an
// empty page rather than an error.
func (s *Server) handleGetPreview(c *fiber.Ctx) error {
	name := c.Params("name")
	page, err := s.loadPage(c.UserContext(), name)
	if err != nil {
		return s.fail(c, err)
	}

	resp := previewResponse{View: page.View()}
	if d, err := s.deps.Deployments.LastDeployment(c.UserContext(), name); err == nil {
		resp.LastDeployment = d
		resp.DeployedURL = d.URL
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("Failed to read last deployment", "app", name, "error", err)
	}
	return envelope.JSON(c, resp)
}

func (s *Server) handleFrame(c *fiber.Ctx) error {
	page, err := s.loadPage(c.UserContext(), c.Params("name"))
	if err != nil {
		return s.fail(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return preview.RenderFrame(c, page.View())
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return s.fail(c, apperr.Validation("Search query is required"))
	}
	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 || limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	page, err := s.loadPage(c.UserContext(), c.Params("name"))
	if err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, workspace.Search(page.DeployFiles(), query, limit))
}

func (s *Server) handleSavePreview(c *fiber.Ctx, user *models.User) error {
	name := c.Params("name")
	if err := validatePreviewName(name); err != nil {
		return s.fail(c, err)
	}

	var req models.SavePreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	if req.HTMLContent == "" && len(req.Files) == 0 {
		return s.fail(c, apperr.Validation("Preview content is required"))
	}
	for path := range req.Files {
		if strings.TrimSpace(path) == "" {
			return s.fail(c, apperr.Validation("File paths must not be empty"))
		}
	}

	ctx := c.UserContext()
	if err := s.checkOwner(ctx, name, user); err != nil && !errors.Is(err, store.ErrNotFound) {
		return s.fail(c, err)
	}

	p := &models.AppPreview{
		Name:        name,
		HTMLContent: req.HTMLContent,
		Files:       req.Files,
		UserID:      user.ID,
	}
	if p.Files == nil {
		p.Files = models.FileMap{}
	}
	if err := s.deps.Store.SavePreview(ctx, p); err != nil {
		slog.Error("Failed to save preview", "app", name, "error", err)
		return s.fail(c, err)
	}
	slog.Info("Preview saved", "app", name, "user_id", user.ID, "files", len(p.Files))

	s.publish(events.PreviewEvent{Name: name, Action: events.ActionSaved, UserID: user.ID})
	return envelope.JSON(c, p)
}

func (s *Server) handleDeploy(c *fiber.Ctx, user *models.User) error {
	name := c.Params("name")
	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.Deploy.Timeout)
	defer cancel()

	if err := s.checkOwner(ctx, name, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.fail(c, apperr.NotFound("Preview not found", err))
		}
		return s.fail(c, err)
	}

	var toasts []preview.Toast
	page := preview.NewPage(name, s.deps.Store, s.deps.Deployer, preview.NotifierFunc(func(t preview.Toast) {
		toasts = append(toasts, t)
	}))
	if err := page.Load(ctx); err != nil {
		return s.fail(c, err)
	}

	url, err := page.Deploy(ctx)
	if err != nil {
		return s.fail(c, err)
	}

	resp := deployResponse{URL: url, Page: page.View()}
	if s.deps.Storage != nil {
		resp.Snapshot = s.replaceSnapshot(ctx, name, page.DeployFiles())
	}

	s.publish(events.PreviewEvent{Name: name, Action: events.ActionDeployed, URL: url, Snapshot: resp.Snapshot, UserID: user.ID})
	return envelope.JSON(c, resp)
}

// replaceSnapshot archives the deployed files and removes the snapshot of the
// previous deployment. Failures are logged; the deploy itself already succeeded.
func (s *Server) replaceSnapshot(ctx context.Context, name string, files models.FileMap) string {
	path, err := s.deps.Storage.StoreSnapshot(ctx, name, files)
	if err != nil {
		slog.Error("Failed to archive deployment snapshot", "app", name, "error", err)
		return ""
	}

	prev, err := s.deps.Deployments.LastDeployment(ctx, name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("Failed to read last deployment", "app", name, "error", err)
		}
		return path
	}
	if prev.Snapshot != "" && prev.Snapshot != path {
		if err := s.deps.Storage.Delete(ctx, prev.Snapshot); err != nil {
			slog.Warn("Failed to delete previous snapshot", "app", name, "snapshot", prev.Snapshot, "error", err)
		}
	}
	return path
}

func (s *Server) handlePurgeCache(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := s.deps.Deployments.Invalidate(c.UserContext(), name); err != nil {
		return s.fail(c, err)
	}
	slog.Info("Preview cache purged", "app", name)
	return envelope.JSON(c, fiber.Map{"purged": name})
}

// checkOwner returns store.ErrNotFound for unknown previews and a conflict when
// the preview belongs to someone else. Previews without an owner are open.
func (s *Server) checkOwner(ctx context.Context, name string, user *models.User) error {
	existing, err := s.deps.Store.GetPreview(ctx, name)
	if err != nil {
		return err
	}
	if existing.UserID != "" && existing.UserID != user.ID {
		return apperr.Conflict("Preview belongs to another user")
	}
	return nil
}

// publish sends ev without failing the request; caches also expire on their own.
func (s *Server) publish(ev events.PreviewEvent) {
	ev.At = time.Now().UTC()
	if err := s.deps.Events.Publish(ev); err != nil {
		slog.Error("Failed to publish preview event", "app", ev.Name, "action", ev.Action, "error", err)
	}
}

func validatePreviewName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("Preview name is required")
	}
	if len(name) > maxPreviewNameLength {
		return apperr.Validation("Preview name is too long")
	}
	if strings.ContainsAny(name, "/\\") {
		return apperr.Validation("Preview name must not contain slashes")
	}
	return nil
}
