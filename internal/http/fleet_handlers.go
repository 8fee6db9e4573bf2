package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/tracking"
)

// syncFleet refreshes the fleet's machine list and crew badges. Assignment failures only
// cost the badges.
func (h *Handler) syncFleet(ctx context.Context) ([]model.Machine, error) {
	machines, err := h.machines.List(ctx)
	if err != nil {
		return nil, err
	}
	h.fleet.SetMachines(machines)

	assignments, err := h.workforce.Assignments(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("load assignments for markers")
		return machines, nil
	}
	users, err := h.workforce.Users(ctx, "")
	if err != nil {
		h.log.Warn().Err(err).Msg("load users for markers")
		return machines, nil
	}
	h.fleet.SetWorkers(assignments, users)
	return machines, nil
}

func (h *Handler) listMachines(c *gin.Context) {
	machines, err := h.syncFleet(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

func (h *Handler) getMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	machine, err := h.machines.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

func (h *Handler) updateLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req model.LocationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sample, err := h.machines.UpdateLocation(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

func (h *Handler) latestLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	poller, err := h.fleet.Poller(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := gin.H{"tracking": poller.Tracking(), "location": poller.Sample()}
	if err := poller.Err(); err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) startMachineTracking(c *gin.Context) {
	h.toggleMachineTracking(c, true)
}

func (h *Handler) stopMachineTracking(c *gin.Context) {
	h.toggleMachineTracking(c, false)
}

func (h *Handler) toggleMachineTracking(c *gin.Context, start bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	poller, err := h.fleet.Poller(id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if start {
		poller.Start()
	} else {
		poller.Stop()
	}
	c.JSON(http.StatusOK, gin.H{"machine_id": id, "tracking": poller.Tracking()})
}

func (h *Handler) listMarkers(c *gin.Context) {
	if _, err := h.syncFleet(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tracking": h.fleet.Tracking(),
		"selected": h.fleet.Selected(),
		"markers":  h.fleet.Markers(),
	})
}

func (h *Handler) markerBounds(c *gin.Context) {
	c.JSON(http.StatusOK, tracking.MarkerBounds(h.fleet.Markers(), h.history.DefaultCenter()))
}

func (h *Handler) selectMarker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.fleet.Select(id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": id})
}

func (h *Handler) startTracking(c *gin.Context) {
	if _, err := h.syncFleet(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	h.fleet.StartTracking()
	c.JSON(http.StatusOK, gin.H{"tracking": true})
}

func (h *Handler) stopTracking(c *gin.Context) {
	h.fleet.StopTracking()
	c.JSON(http.StatusOK, gin.H{"tracking": false})
}

func (h *Handler) listHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	records, err := h.history.List(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) historyBounds(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	bounds, err := h.history.Bounds(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, bounds)
}

func (h *Handler) deleteHistoryPoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	locID, ok := parseID(c, "locId")
	if !ok {
		return
	}
	if err := h.history.Delete(c.Request.Context(), id, locID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) beginWaypoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.syncFleet(c.Request.Context()); err != nil {
		h.handleError(c, err)
		return
	}
	if err := h.fleet.BeginPlacement(id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.fleet.Placement())
}

type placeWaypointRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

func (h *Handler) placeWaypoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req placeWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.fleet.Place(id, *req.Lat, *req.Lng); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.fleet.Placement())
}

func (h *Handler) confirmWaypoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	record, err := h.fleet.ConfirmPlacement(c.Request.Context(), id, h.history)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) cancelWaypoint(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.fleet.CancelPlacement(id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.reports.HistoryExport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}
