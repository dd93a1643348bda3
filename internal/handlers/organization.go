package handlers

import (
	"net/http"

	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/service"
)

// CreateOrganization handles POST /api/organization/create.
func (h *AdminHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "createOrg")
	defer c.cancel()

	var form service.CreateOrganizationForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.CreateOrganization(c.ctx, c.actor, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "organizationId", id)
}

// EditOrganization handles POST /api/organization/edit. The organization
// is named by filter.organizationId.
func (h *AdminHandler) EditOrganization(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "editOrg")
	defer c.cancel()

	var (
		ref  service.OrganizationRef
		form service.EditOrganizationForm
	)
	if !h.read(w, c, c.env.Filter, &ref) || !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.EditOrganization(c.ctx, c.actor, ref, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "organizationId", id)
}

// DeleteOrganization handles POST /api/organization/delete.
func (h *AdminHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "deleteOrg")
	defer c.cancel()

	var form service.DeleteOrganizationForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	if _, err := h.ops.DeleteOrganization(c.ctx, c.actor, form); err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "", "")
}

// ViewOrganizations handles POST /api/organization/view.
func (h *AdminHandler) ViewOrganizations(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "viewOrgs")
	defer c.cancel()

	var filter query.OrganizationFilter
	if !h.read(w, c, c.env.Filter, &filter) {
		return
	}
	orgs, err := h.ops.ViewOrganizations(c.ctx, c.actor, filter, c.env.Extra)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.list(w, orgs)
}

// Dashboard handles POST /api/organization/dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "adminDashboardCounts")
	defer c.cancel()

	counts, err := h.ops.Dashboard(c.ctx, c.actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.list(w, map[string]interface{}{"AdminStats": counts})
}
