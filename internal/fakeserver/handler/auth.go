package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/middleware"
	"github.com/mcoot/sovereign-client/internal/fakeserver/request"
	"github.com/mcoot/sovereign-client/internal/fakeserver/response"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
	"github.com/mcoot/sovereign-client/internal/model"
)

// RegisterMode selects which of the register response shapes is served
type RegisterMode int

const (
	// RegisterFull returns a token with the initial snapshot
	RegisterFull RegisterMode = iota
	// RegisterTokenOnly returns just {token}
	RegisterTokenOnly
	// RegisterNoToken acknowledges without issuing a token
	RegisterNoToken
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	auth   *auth.Service
	world  *world.World
	mode   RegisterMode
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, w *world.World, mode RegisterMode, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		world:  w,
		mode:   mode,
		logger: logger,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return
	}

	user, err := h.auth.Register(req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	if _, err := h.world.AddPlayer(user.PlayerID, user.ID, user.Username); err != nil {
		h.logger.Error("failed to create pilot", slog.String("username", user.Username), slog.Any("error", err))
		WriteError(w, err)
		return
	}
	h.logger.Info("account registered", slog.String("username", user.Username))

	switch h.mode {
	case RegisterNoToken:
		response.JSON(w, http.StatusOK, response.OK{OK: true, Message: "Registered. Please log in."})
	case RegisterTokenOnly:
		token, err := h.auth.IssueToken(user)
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.TokenOnly{Token: token})
	default:
		h.writeAuth(w, user)
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return
	}

	user, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeAuth(w, user)
}

// ChangePassword handles POST /api/change_password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return
	}

	if err := h.auth.ChangePassword(user.ID, req.OldPassword, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.world.SyncAccount(user.PlayerID, user.IsAdmin, false); err != nil && !errors.Is(err, world.ErrPlayerNotFound) {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK{OK: true, Message: "Password updated."})
}

func (h *AuthHandler) writeAuth(w http.ResponseWriter, user *auth.User) {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.world.SyncAccount(user.PlayerID, user.IsAdmin, user.MustChangePassword); err != nil {
		WriteError(w, err)
		return
	}
	snap, err := h.world.Snapshot(user.PlayerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, model.AuthResponse{Token: token, Snapshot: snap})
}
