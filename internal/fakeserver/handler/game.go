package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/fakeserver/apierr"
	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/middleware"
	"github.com/mcoot/sovereign-client/internal/fakeserver/response"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
)

// GameHandler handles state, command and admin endpoints
type GameHandler struct {
	world   *world.World
	name    string
	version string
	logger  *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(w *world.World, name, version string, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		world:   w,
		name:    name,
		version: version,
		logger:  logger,
	}
}

// Health handles GET /api/healthz
func (h *GameHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{OK: true, Name: h.name, Version: h.version})
}

// State handles GET /api/state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	user, ok := h.pilot(w, r)
	if !ok {
		return
	}
	snap, err := h.world.Snapshot(user.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Command handles POST /api/command. Rejected commands answer 400 with the
// full command response so the client can still reconcile.
func (h *GameHandler) Command(w http.ResponseWriter, r *http.Request) {
	user, ok := h.pilot(w, r)
	if !ok {
		return
	}

	var cmd command.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return
	}

	resp, err := h.world.Execute(user.PlayerID, cmd)
	var cerr *world.CommandError
	switch {
	case errors.As(err, &cerr):
		h.logger.Debug("command rejected",
			slog.String("username", user.Username),
			slog.String("type", string(cmd.Type)),
			slog.String("code", cerr.Code),
		)
		response.JSON(w, http.StatusBadRequest, resp)
	case err != nil:
		WriteError(w, err)
	default:
		response.JSON(w, http.StatusOK, resp)
	}
}

// AdminMap handles GET /api/admin/ansi_map
func (h *GameHandler) AdminMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	if !user.IsAdmin {
		WriteError(w, apierr.NewForbiddenError("admin only"))
		return
	}
	response.JSON(w, http.StatusOK, response.AnsiMap{Map: h.world.RenderMap()})
}

// pilot syncs account flags onto the pilot before any game read
func (h *GameHandler) pilot(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user := middleware.MustGetUser(r.Context())
	if err := h.world.SyncAccount(user.PlayerID, user.IsAdmin, user.MustChangePassword); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return user, true
}
