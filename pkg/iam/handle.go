package iam

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"log/slog"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/role"
)

type Handle struct {
	userService *UserService
}

func NewHandle(userService *UserService) Handle {
	return Handle{
		userService: userService,
	}
}

// CreateUserRequest is the POST /users payload
type CreateUserRequest struct {
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Password string     `json:"password"`
	RoleID   *uuid.UUID `json:"roleId,omitempty"`
}

// UpdateUserRoleRequest is the PATCH /users/{id}/role payload
type UpdateUserRoleRequest struct {
	RoleID uuid.UUID `json:"roleId"`
}

// UserResponse is the JSON shape of a user. Role is null for users whose role
// binding never completed.
type UserResponse struct {
	ID        string             `json:"id"`
	Email     string             `json:"email"`
	Name      string             `json:"name"`
	Role      *role.RoleResponse `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func toUserResponse(user UserWithRole) UserResponse {
	var response UserResponse
	copier.Copy(&response, &user)
	response.ID = user.ID.String()
	if user.Role != nil {
		response.Role = &role.RoleResponse{
			ID:          user.Role.ID.String(),
			Name:        user.Role.Name,
			Description: user.Role.Description,
		}
	}
	return response
}

// Routes returns the user directory router
func Routes(h Handle) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/", h.GetUsers)
	r.Post("/", h.PostUser)
	r.Get("/{id}", h.GetUser)
	r.Patch("/{id}", h.PatchUser)
	r.Patch("/{id}/role", h.PatchUserRole)
	r.Delete("/{id}", h.DeleteUser)
	return r
}

func userIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.New(errors.ErrCodeInvalidInput, "invalid user id")
	}
	return id, nil
}

// Get a list of users
// (GET /users)
func (h Handle) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.FindUsers(r.Context())
	if err != nil {
		slog.Error("Failed getting users", "err", err)
		errors.WriteError(w, r, errors.Internal("failed getting users"))
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}

	render.JSON(w, r, response)
}

// Create a new user
// (POST /users)
func (h Handle) PostUser(w http.ResponseWriter, r *http.Request) {
	var request CreateUserRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		slog.Error("Failed to decode create user request", "err", err)
		errors.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	user, err := h.userService.CreateUser(r.Context(), request.Email, request.Name, request.Password, request.RoleID)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toUserResponse(user))
}

// Get a user by id
// (GET /users/{id})
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}

// Update a user's profile fields and optionally its password
// (PATCH /users/{id})
func (h Handle) PatchUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	var request UpdateUserRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		slog.Error("Failed to decode update user request", "err", err)
		errors.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, request)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}

// Change a user's role
// (PATCH /users/{id}/role)
func (h Handle) PatchUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	var request UpdateUserRoleRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		slog.Error("Failed to decode update user role request", "err", err)
		errors.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	user, err := h.userService.UpdateUserRole(r.Context(), id, request.RoleID)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}

// Delete a user along with its credential and sessions
// (DELETE /users/{id})
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	user, err := h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}
