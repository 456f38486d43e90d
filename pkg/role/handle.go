package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"

	"github.com/shopcore/shop-auth/pkg/errors"
)

type Handle struct {
	roleService *RoleService
}

func NewHandle(roleService *RoleService) Handle {
	return Handle{
		roleService: roleService,
	}
}

// RoleResponse is the JSON shape of a role
type RoleResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Routes returns the role router
func Routes(h Handle) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/", h.GetRoles)
	return r
}

// Get a list of roles
// (GET /roles)
func (h Handle) GetRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		slog.Error("Failed getting roles", "err", err)
		errors.WriteError(w, r, errors.Internal("failed getting roles"))
		return
	}

	response := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		response = append(response, RoleResponse{
			ID:          role.ID.String(),
			Name:        role.Name,
			Description: role.Description,
		})
	}

	render.JSON(w, r, response)
}
