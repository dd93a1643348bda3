// Package handlers exposes the admin operations over HTTP. Every operation
// is a POST taking the {key, form, filter, extra} envelope.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	mw "github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/service"
)

// Operations is the admin service as seen by the transport.
type Operations interface {
	Login(ctx context.Context, form service.LoginForm) (string, error)

	CreateOrganization(ctx context.Context, actor string, form service.CreateOrganizationForm) (string, error)
	EditOrganization(ctx context.Context, actor string, ref service.OrganizationRef, form service.EditOrganizationForm) (string, error)
	DeleteOrganization(ctx context.Context, actor string, form service.DeleteOrganizationForm) (service.CascadeReport, error)
	ViewOrganizations(ctx context.Context, actor string, filter query.OrganizationFilter, extra models.Extra) ([]models.Organization, error)
	Dashboard(ctx context.Context, actor string) (models.DashboardCounts, error)

	CreateUser(ctx context.Context, actor string, form service.CreateUserForm) (string, error)
	UpdateUser(ctx context.Context, actor string, ref service.UserRef, form service.UpdateUserForm) (string, error)
	DeleteUser(ctx context.Context, actor string, ref service.UserRef) (string, error)
	ViewUsers(ctx context.Context, actor string, filter query.UserFilter, extra models.Extra) ([]models.OrganizationUser, error)
	UpdatePassword(ctx context.Context, actor string, form service.UpdatePasswordForm) (string, error)

	CreateTracker(ctx context.Context, actor string, form service.CreateTrackerForm) (string, error)
	UpdateTracker(ctx context.Context, actor string, form service.UpdateTrackerForm) (string, error)
	DeleteTracker(ctx context.Context, actor string, ref service.TrackerRef) (string, error)
	RemoveTracker(ctx context.Context, actor string, ref service.TrackerRef) (string, error)
	ViewTrackers(ctx context.Context, actor string, filter query.TrackerFilter, extra models.Extra) ([]models.Tracker, error)
}

// Auditor records the gated requests that never reach the service.
type Auditor interface {
	Record(user, role, endpoint string)
}

const auditRole = "admin"

// AdminHandler serves the admin operations.
type AdminHandler struct {
	ops     Operations
	audit   Auditor
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewAdminHandler creates a handler. timeout bounds the store work of
// each request. audit may be nil.
func NewAdminHandler(ops Operations, audit Auditor, timeout time.Duration, log logrus.FieldLogger) *AdminHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AdminHandler{ops: ops, audit: audit, timeout: timeout, log: log}
}

// call is the decoded input of a gated request.
type call struct {
	ctx      context.Context
	cancel   context.CancelFunc
	endpoint string
	actor    string
	env      models.Envelope
}

// begin collects what the gate left in the request context.
func (h *AdminHandler) begin(r *http.Request, endpoint string) *call {
	env, _ := mw.EnvelopeFromContext(r.Context())
	var actor string
	if claims, ok := mw.ClaimsFromContext(r.Context()); ok {
		actor = claims.Subject
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return &call{ctx: ctx, cancel: cancel, endpoint: endpoint, actor: actor, env: env}
}

// read decodes a section of a gated request. A malformed section is
// recorded against the endpoint before the 400 goes out.
func (h *AdminHandler) read(w http.ResponseWriter, c *call, raw json.RawMessage, dst interface{}) bool {
	if h.decode(w, raw, dst) {
		return true
	}
	if h.audit != nil {
		h.audit.Record(c.actor, auditRole, c.endpoint)
	}
	return false
}

// decode unmarshals a raw envelope section into dst. An absent section
// leaves dst zero.
func (h *AdminHandler) decode(w http.ResponseWriter, raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		mw.WriteResponse(w, http.StatusBadRequest, models.Response{
			Status:   models.ResponseFailure,
			Response: []string{"malformed request: " + err.Error()},
		})
		return false
	}
	return true
}

// success writes a success reply carrying an id under idField.
func (h *AdminHandler) success(w http.ResponseWriter, idField, id string) {
	mw.WriteResponse(w, http.StatusOK, models.Response{Status: models.ResponseSuccess, IDField: idField, ID: id})
}

// list writes a success reply carrying payload.
func (h *AdminHandler) list(w http.ResponseWriter, payload interface{}) {
	mw.WriteResponse(w, http.StatusOK, models.Response{Status: models.ResponseSuccess, Response: payload})
}

// fail maps a service error to its HTTP reply. Faults are logged and
// answered with a generic message.
func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := service.AsError(err)
	resp := models.Response{Status: models.ResponseFailure, EC: e.Code}
	if len(e.Messages) > 0 {
		resp.Response = e.Messages
	}

	status := statusFor(e.Kind)
	if status == http.StatusInternalServerError {
		msg := "internal server error"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "store timeout"
		}
		resp.Response = msg
		h.log.WithError(err).WithFields(logrus.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("operation failed")
	}
	mw.WriteResponse(w, status, resp)
}

func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindAuth:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Login handles POST /api/admin/login. It sits outside the token gate.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	env, err := mw.ReadEnvelope(w, r)
	if err != nil {
		mw.WriteResponse(w, http.StatusBadRequest, models.Response{
			Status:   models.ResponseFailure,
			EC:       service.CodeLoginValidation,
			Response: []string{"malformed request body"},
		})
		return
	}
	var form service.LoginForm
	if !h.decode(w, env.Form, &form) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token, err := h.ops.Login(ctx, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "token", token)
}
