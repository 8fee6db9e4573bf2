package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/drillfleet/internal/model"
)

func (h *Handler) listUsers(c *gin.Context) {
	role := model.Role(strings.ToUpper(strings.TrimSpace(c.Query("role"))))
	users, err := h.workforce.Users(c.Request.Context(), role)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.workforce.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req model.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.workforce.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if !h.requireManager(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.workforce.DeleteUser(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAssignments(c *gin.Context) {
	assignments, err := h.workforce.Assignments(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

type assignmentRequest struct {
	WorkerID int64 `json:"worker_id" binding:"required"`
}

func (h *Handler) assignWorker(c *gin.Context) {
	h.changeAssignment(c, true)
}

func (h *Handler) unassignWorker(c *gin.Context) {
	h.changeAssignment(c, false)
}

func (h *Handler) changeAssignment(c *gin.Context, assign bool) {
	if !h.requireManager(c) {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var err error
	if assign {
		err = h.workforce.Assign(c.Request.Context(), id, req.WorkerID)
	} else {
		err = h.workforce.Unassign(c.Request.Context(), id, req.WorkerID)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
