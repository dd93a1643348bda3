package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/service"
)

// CreateUser handles POST /api/users/create.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "createUser")
	defer c.cancel()

	var form service.CreateUserForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.CreateUser(c.ctx, c.actor, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "userId", id)
}

// UpdateUser handles POST /api/users/update. The user is named by the
// filter, the changes come in the form.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "updateUser")
	defer c.cancel()

	var (
		ref  service.UserRef
		form service.UpdateUserForm
	)
	if !h.read(w, c, c.env.Filter, &ref) || !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.UpdateUser(c.ctx, c.actor, ref, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "userId", id)
}

// DeleteUser handles POST /api/users/delete.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "deleteUser")
	defer c.cancel()

	var ref service.UserRef
	if !h.read(w, c, c.env.Form, &ref) {
		return
	}
	id, err := h.ops.DeleteUser(c.ctx, c.actor, ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "userId", id)
}

// ViewUsers handles POST /api/users/view.
func (h *AdminHandler) ViewUsers(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "viewUsers")
	defer c.cancel()

	var filter query.UserFilter
	if !h.read(w, c, c.env.Filter, &filter) {
		return
	}
	users, err := h.ops.ViewUsers(c.ctx, c.actor, filter, c.env.Extra)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.list(w, users)
}

// UpdatePassword handles POST /api/users/update-password.
func (h *AdminHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "updatePassword")
	defer c.cancel()

	var form service.UpdatePasswordForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.UpdatePassword(c.ctx, c.actor, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "userId", id)
}
