package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
	"github.com/illegalcall/codeshell/internal/envelope"
	"github.com/illegalcall/codeshell/internal/models"
	"github.com/illegalcall/codeshell/internal/store"
	"github.com/illegalcall/codeshell/internal/workspace"
)

type workspaceResponse struct {
	State  workspace.State  `json:"state"`
	TopBar workspace.TopBar `json:"top_bar"`
	Tools  []workspace.Tool `json:"tools"`
}

func (s *Server) handleGetWorkspace(c *fiber.Ctx, user *models.User) error {
	ctx := c.UserContext()
	state, err := s.deps.Workspaces.Load(ctx, user.ID)
	if err != nil {
		return s.fail(c, err)
	}

	// The header falls back to the account email when the profile is missing.
	profile, err := s.deps.Store.GetProfile(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("Failed to fetch profile for top bar", "user_id", user.ID, "error", err)
	}

	project := c.Query("project")
	var deployURL string
	if project != "" {
		if d, err := s.deps.Deployments.LastDeployment(ctx, project); err == nil {
			deployURL = d.URL
		}
	}

	return envelope.JSON(c, workspaceResponse{
		State:  state,
		TopBar: workspace.NewTopBar(user, profile, project, deployURL),
		Tools:  state.Tools.Visible(workspace.DefaultTools),
	})
}

func (s *Server) handleWorkspaceEvent(c *fiber.Ctx, user *models.User) error {
	var ev workspace.Event
	if err := c.BodyParser(&ev); err != nil {
		return s.fail(c, apperr.Validation("Invalid request body"))
	}
	state, err := s.deps.Workspaces.Dispatch(c.UserContext(), user.ID, ev)
	if err != nil {
		return s.fail(c, err)
	}
	return envelope.JSON(c, state)
}

func (s *Server) handleTools(c *fiber.Ctx) error {
	return envelope.JSON(c, workspace.FilterTools(workspace.DefaultTools, c.Query("q")))
}
