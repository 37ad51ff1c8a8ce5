package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/acadia-sis/acadia-sis/internal/authz"
	"github.com/acadia-sis/acadia-sis/internal/platform/httpx"
	"github.com/acadia-sis/acadia-sis/internal/shared"
)

// Handler exposes the role/permission administration API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		authz:     mw,
		validator: validator.New(),
	}
}

// MountRoutes registers administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.authz.Require(shared.ResourceRole, authz.ActionRead))
			r.Get("/", h.listRoles)
			r.Get("/{roleID}", h.getRole)
			r.Get("/{roleID}/permissions", h.listRolePermissions)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.Require(shared.ResourceRole, authz.ActionManage))
			r.Post("/", h.createRole)
			r.Put("/{roleID}", h.updateRole)
			r.Delete("/{roleID}", h.deleteRole)
			r.Put("/{roleID}/permissions", h.setRolePermissions)
		})
	})
	r.Route("/permissions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.authz.Require(shared.ResourcePermission, authz.ActionRead))
			r.Get("/", h.listPermissions)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.Require(shared.ResourcePermission, authz.ActionManage))
			r.Post("/", h.ensurePermission)
		})
	})
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Use(h.authz.Require(shared.ResourceRole, authz.ActionAssign))
		r.Post("/roles", h.assignRole)
		r.Delete("/roles/{roleID}", h.removeRole)
		r.Delete("/permission-cache", h.invalidateCache)
	})
}

type roleForm struct {
	Name        string `json:"name" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"max=255"`
}

type permissionForm struct {
	Resource    string `json:"resource" validate:"required,min=1,max=64"`
	Action      string `json:"action" validate:"required,min=1,max=32"`
	Description string `json:"description" validate:"max=255"`
}

type rolePermissionsForm struct {
	PermissionIDs []int64 `json:"permissionIds" validate:"required"`
}

type assignRoleForm struct {
	RoleID int64 `json:"roleId" validate:"required,gt=0"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.fail(w, "list roles", err)
		return
	}
	if list == nil {
		list = []Role{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		h.fail(w, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var form roleForm
	if !h.decode(w, r, &form) {
		return
	}
	role, err := h.service.CreateRole(r.Context(), form.Name, form.Description)
	if err != nil {
		h.fail(w, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	var form roleForm
	if !h.decode(w, r, &form) {
		return
	}
	role, err := h.service.UpdateRole(r.Context(), id, form.Name, form.Description)
	if err != nil {
		h.fail(w, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		h.fail(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.fail(w, "list permissions", err)
		return
	}
	if list == nil {
		list = []Permission{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) ensurePermission(w http.ResponseWriter, r *http.Request) {
	var form permissionForm
	if !h.decode(w, r, &form) {
		return
	}
	perm, err := h.service.EnsurePermission(r.Context(), form.Resource, form.Action, form.Description)
	if err != nil {
		h.fail(w, "ensure permission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
}

func (h *Handler) listRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	list, err := h.service.ListRolePermissions(r.Context(), id)
	if err != nil {
		h.fail(w, "list role permissions", err)
		return
	}
	if list == nil {
		list = []Permission{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) setRolePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	var form rolePermissionsForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.SetRolePermissions(r.Context(), id, form.PermissionIDs); err != nil {
		h.fail(w, "set role permissions", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var form assignRoleForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.AssignRole(r.Context(), userID, form.RoleID); err != nil {
		h.fail(w, "assign role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	roleID, ok := h.pathID(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.service.RemoveRole(r.Context(), userID, roleID); err != nil {
		h.fail(w, "remove role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// invalidateCache is the external invalidation entry point for components
// that mutate user_roles or role_permissions outside this API.
func (h *Handler) invalidateCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.authz.Gate.Invalidate(r.Context(), userID); err != nil {
		h.fail(w, "invalidate permission cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	if err := httpx.DecodeJSON(r, form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid "+param)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
