package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/auth"
	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/service"
	"github.com/nurpe/drillfleet/internal/tracking"
)

// FallbackMessage is shown when the API gave no usable error message.
const FallbackMessage = "İşlem sırasında bir hata oluştu"

type Services struct {
	Session   *auth.Session
	Machines  *service.MachineService
	History   *service.HistoryService
	Shifts    *service.ShiftManager
	Fuel      *service.FuelLedger
	Inventory *service.InventoryLedger
	Workforce *service.WorkforceService
	Reports   *service.ReportService
	Fleet     *tracking.Fleet
}

type Handler struct {
	session   *auth.Session
	machines  *service.MachineService
	history   *service.HistoryService
	shifts    *service.ShiftManager
	fuel      *service.FuelLedger
	inventory *service.InventoryLedger
	workforce *service.WorkforceService
	reports   *service.ReportService
	fleet     *tracking.Fleet
	log       zerolog.Logger
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{
		session:   svc.Session,
		machines:  svc.Machines,
		history:   svc.History,
		shifts:    svc.Shifts,
		fuel:      svc.Fuel,
		inventory: svc.Inventory,
		workforce: svc.Workforce,
		reports:   svc.Reports,
		fleet:     svc.Fleet,
		log:       log.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/healthz", h.health)
	router.GET("/session", h.sessionState)
	router.POST("/login", h.login)
	router.POST("/register", h.register)

	protected := router.Group("/")
	protected.Use(RequireSession(h.session))

	protected.POST("/logout", h.logout)
	protected.GET("/me", h.me)

	protected.GET("/machines", h.listMachines)
	protected.GET("/machines/:id", h.getMachine)
	protected.POST("/machines/:id/update_location", h.updateLocation)
	protected.GET("/machines/:id/location", h.latestLocation)
	protected.POST("/machines/:id/tracking/start", h.startMachineTracking)
	protected.POST("/machines/:id/tracking/stop", h.stopMachineTracking)

	protected.GET("/map/markers", h.listMarkers)
	protected.GET("/map/bounds", h.markerBounds)
	protected.POST("/map/markers/:id/select", h.selectMarker)
	protected.POST("/map/tracking/start", h.startTracking)
	protected.POST("/map/tracking/stop", h.stopTracking)

	protected.GET("/machines/:id/history", h.listHistory)
	protected.GET("/machines/:id/history/bounds", h.historyBounds)
	protected.DELETE("/machines/:id/history/:locId", h.deleteHistoryPoint)
	protected.POST("/machines/:id/waypoint/begin", h.beginWaypoint)
	protected.POST("/machines/:id/waypoint/pending", h.placeWaypoint)
	protected.POST("/machines/:id/waypoint/confirm", h.confirmWaypoint)
	protected.POST("/machines/:id/waypoint/cancel", h.cancelWaypoint)

	protected.GET("/machines/:id/shifts", h.shiftState)
	protected.POST("/machines/:id/shifts", h.startShift)
	protected.POST("/machines/:id/shifts/:shiftId/end", h.endShift)
	protected.DELETE("/machines/:id/shifts/:shiftId", h.deleteShift)
	protected.GET("/machines/:id/shifts/:shiftId/report.pdf", h.shiftReportPDF)
	protected.POST("/machines/:id/shift-workers", h.addShiftWorker)
	protected.DELETE("/machines/:id/shift-workers/:workerId", h.removeShiftWorker)

	protected.GET("/machines/:id/fuel", h.fuelSummary)
	protected.POST("/machines/:id/fuel", h.addFuel)
	protected.DELETE("/machines/:id/fuel/:fuelId", h.deleteFuel)

	protected.GET("/machines/:id/exports/history.xlsx", h.exportHistory)
	protected.GET("/machines/:id/exports/shifts.xlsx", h.exportShifts)

	protected.GET("/users", h.listUsers)
	protected.POST("/users", h.createUser)
	protected.PUT("/users/:id", h.updateUser)
	protected.DELETE("/users/:id", h.deleteUser)
	protected.GET("/assignments", h.listAssignments)
	protected.POST("/machines/:id/assign_worker", h.assignWorker)
	protected.POST("/machines/:id/unassign_worker", h.unassignWorker)

	protected.GET("/inventory/items", h.listInventory)
	protected.GET("/inventory/items/critical", h.criticalInventory)
	protected.POST("/inventory/items", h.createInventoryItem)
	protected.PATCH("/inventory/items/:id", h.updateInventoryItem)
	protected.DELETE("/inventory/items/:id", h.deleteInventoryItem)
	protected.POST("/inventory/items/:id/add_stock", h.addStock)
	protected.POST("/inventory/items/:id/remove_stock", h.removeStock)
	protected.GET("/inventory/transactions", h.listTransactions)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sessionState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": h.session.State(),
		"user":  h.session.User(),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req model.LoginCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.session.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": auth.DashboardRoute})
}

func (h *Handler) register(c *gin.Context) {
	var req model.RegisterCredentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.session.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "redirect": auth.DashboardRoute})
}

func (h *Handler) logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": auth.LoginRoute})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.session.RefreshUser(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		apiErr     *api.APIError
		validation validator.ValidationErrors
	)
	switch {
	case errors.Is(err, api.ErrUnauthorized), errors.Is(err, api.ErrNoToken):
		c.Header("Location", auth.LoginRoute)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": auth.LoginRoute})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, tracking.ErrUnknownMachine):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNoActiveShift),
		errors.Is(err, service.ErrShiftAlreadyActive),
		errors.Is(err, service.ErrReportImageRequired),
		errors.Is(err, service.ErrNoPendingLocation),
		errors.Is(err, tracking.ErrNoMarker),
		errors.Is(err, tracking.ErrNotPlacing),
		errors.Is(err, tracking.ErrNoPendingLocation),
		errors.Is(err, tracking.ErrInvalidCoordinate),
		errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr) && apiErr.Validation():
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": api.Message(err, FallbackMessage)})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": api.Message(err, FallbackMessage)})
	}
}

// requireManager rejects the request unless the operator may manage workers.
func (h *Handler) requireManager(c *gin.Context) bool {
	user := h.session.User()
	if user == nil {
		refreshed, err := h.session.RefreshUser(c.Request.Context())
		if err != nil {
			h.handleError(c, err)
			return false
		}
		user = refreshed
	}
	if !service.CanManageWorkers(user) {
		h.handleError(c, service.ErrPermissionDenied)
		return false
	}
	return true
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func parseOptionalFloat(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, service.ErrInvalidInput
	}
	return v, nil
}

func sendFile(c *gin.Context, result *service.GenerateReportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
