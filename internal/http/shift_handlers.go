package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/service"
)

const maxReportImageSize = 10 << 20

func (h *Handler) shiftState(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	state, err := h.shifts.State(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type startShiftRequest struct {
	Workers       []int64 `json:"workers"`
	StartLocation *int64  `json:"start_location"`
}

func (h *Handler) startShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req startShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.shifts.Start(c.Request.Context(), id, req.Workers, req.StartLocation)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// endShift takes a multipart form: drilling_depth, fuel_consumption, optional end_location
// and the report_image file.
func (h *Handler) endShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	shiftID, ok := parseID(c, "shiftId")
	if !ok {
		return
	}

	depth, err := parseOptionalFloat(c.PostForm("drilling_depth"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	fuel, err := parseOptionalFloat(c.PostForm("fuel_consumption"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	in := service.EndShiftInput{DrillingDepth: depth, FuelConsumption: fuel}
	if raw := strings.TrimSpace(c.PostForm("end_location")); raw != "" {
		loc, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.handleError(c, service.ErrInvalidInput)
			return
		}
		in.EndLocation = &loc
	}
	image, err := formImage(c, "report_image")
	if err != nil {
		h.handleError(c, err)
		return
	}
	in.ReportImage = image

	state, err := h.shifts.End(c.Request.Context(), id, shiftID, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) deleteShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	shiftID, ok := parseID(c, "shiftId")
	if !ok {
		return
	}
	state, err := h.shifts.Delete(c.Request.Context(), id, shiftID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type shiftWorkerRequest struct {
	WorkerID int64 `json:"worker_id" binding:"required"`
}

func (h *Handler) addShiftWorker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req shiftWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.shifts.AddWorker(c.Request.Context(), id, req.WorkerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) removeShiftWorker(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	workerID, ok := parseID(c, "workerId")
	if !ok {
		return
	}
	state, err := h.shifts.RemoveWorker(c.Request.Context(), id, workerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) shiftReportPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	shiftID, ok := parseID(c, "shiftId")
	if !ok {
		return
	}
	result, err := h.reports.ShiftReport(c.Request.Context(), id, shiftID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}

func (h *Handler) exportShifts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.reports.ShiftsExport(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, result)
}

func (h *Handler) fuelSummary(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.fuel.Summary(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) addFuel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req model.FuelInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.fuel.Add(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) deleteFuel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	fuelID, ok := parseID(c, "fuelId")
	if !ok {
		return
	}
	if err := h.fuel.Delete(c.Request.Context(), id, fuelID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// formImage reads an optional uploaded file. A missing field yields nil.
func formImage(c *gin.Context, field string) (*model.ReportImage, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, service.ErrInvalidInput
	}
	if header.Size > maxReportImageSize {
		return nil, service.ErrInvalidInput
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &model.ReportImage{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
