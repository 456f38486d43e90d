package signup

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/tokengenerator"
)

type Handle struct {
	signupService *SignupService
	cookieSetter  *tokengenerator.CookieSetter
}

func NewHandle(signupService *SignupService, cookieSetter *tokengenerator.CookieSetter) Handle {
	return Handle{
		signupService: signupService,
		cookieSetter:  cookieSetter,
	}
}

// SignupRequest is the POST /auth/signup payload
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the POST /auth/login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResponse is the identity part of an auth response
type IdentityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResponse is the success payload for signup and login
type AuthResponse struct {
	Identity     IdentityResponse `json:"identity"`
	SessionToken string           `json:"sessionToken"`
}

// Routes returns the auth router
func Routes(h Handle) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/signup", h.PostSignup)
	r.Post("/login", h.PostLogin)
	return r
}

// Sign up a new user
// (POST /auth/signup)
func (h Handle) PostSignup(w http.ResponseWriter, r *http.Request) {
	var request SignupRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		slog.Error("Failed to decode signup request", "err", err)
		errors.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.signupService.Signup(r.Context(), SignupParams{
		Email:    request.Email,
		Name:     request.Name,
		Password: request.Password,
	})
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	h.cookieSetter.SetCookie(w, tokengenerator.AccessTokenName, result.Token, result.ExpiresAt)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, AuthResponse{
		Identity: IdentityResponse{
			ID:    result.Identity.ID.String(),
			Email: result.Identity.Email,
			Name:  result.Identity.Name,
		},
		SessionToken: result.Token,
	})
}

// Log in an existing user
// (POST /auth/login)
func (h Handle) PostLogin(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := render.DecodeJSON(r.Body, &request); err != nil {
		slog.Error("Failed to decode login request", "err", err)
		errors.WriteError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.signupService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		errors.WriteError(w, r, err)
		return
	}

	h.cookieSetter.SetCookie(w, tokengenerator.AccessTokenName, result.Token, result.ExpiresAt)
	render.JSON(w, r, AuthResponse{
		Identity: IdentityResponse{
			ID:    result.Identity.ID.String(),
			Email: result.Identity.Email,
			Name:  result.Identity.Name,
		},
		SessionToken: result.Token,
	})
}
