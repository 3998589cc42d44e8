package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	SetAdmin(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

// List implements UserHandler.
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	users, err := h.userService.ListUsers(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, users, &response.Meta{TotalItems: int64(len(users))})
}

// SetAdmin implements UserHandler.
func (h *userHandlerImpl) SetAdmin(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req user.SetAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Set admin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = chi.URLParam(r, "id")
	req.Actor = actor

	updated, err := h.userService.SetAdmin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated", updated)
}

// Delete implements UserHandler.
func (h *userHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	err = h.userService.DeleteUser(r.Context(), user.DeleteUserRequest{
		UserID: chi.URLParam(r, "id"),
		Actor:  actor,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted", nil)
}
