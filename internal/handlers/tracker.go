package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/fleet-admin/internal/query"
	"github.com/ukydev/fleet-admin/internal/service"
)

// CreateTracker handles POST /api/trackers/create.
func (h *AdminHandler) CreateTracker(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "createTracker")
	defer c.cancel()

	var form service.CreateTrackerForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.CreateTracker(c.ctx, c.actor, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "trackerId", id)
}

// UpdateTracker handles POST /api/trackers/update.
func (h *AdminHandler) UpdateTracker(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "updateTracker")
	defer c.cancel()

	var form service.UpdateTrackerForm
	if !h.read(w, c, c.env.Form, &form) {
		return
	}
	id, err := h.ops.UpdateTracker(c.ctx, c.actor, form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "trackerId", id)
}

// DeleteTracker handles POST /api/trackers/delete.
func (h *AdminHandler) DeleteTracker(w http.ResponseWriter, r *http.Request) {
	h.trackerRef(w, r, "deleteTracker", h.ops.DeleteTracker)
}

// RemoveTracker handles POST /api/trackers/remove.
func (h *AdminHandler) RemoveTracker(w http.ResponseWriter, r *http.Request) {
	h.trackerRef(w, r, "removeTracker", h.ops.RemoveTracker)
}

func (h *AdminHandler) trackerRef(w http.ResponseWriter, r *http.Request, endpoint string, op trackerOp) {
	c := h.begin(r, endpoint)
	defer c.cancel()

	var ref service.TrackerRef
	if !h.read(w, c, c.env.Form, &ref) {
		return
	}
	id, err := op(c.ctx, c.actor, ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.success(w, "trackerId", id)
}

// ViewTrackers handles POST /api/trackers/view.
func (h *AdminHandler) ViewTrackers(w http.ResponseWriter, r *http.Request) {
	c := h.begin(r, "viewTrackers")
	defer c.cancel()

	var filter query.TrackerFilter
	if !h.read(w, c, c.env.Filter, &filter) {
		return
	}
	trackers, err := h.ops.ViewTrackers(c.ctx, c.actor, filter, c.env.Extra)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.list(w, trackers)
}

type trackerOp func(ctx context.Context, actor string, ref service.TrackerRef) (string, error)
