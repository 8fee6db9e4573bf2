package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/nurpe/drillfleet/internal/model"
)

func (c *Client) ListShifts(ctx context.Context, machineID int64) ([]model.Shift, error) {
	var rows []wireShift
	if err := c.get(ctx, fmt.Sprintf("/machines/%d/shifts/", machineID), &rows); err != nil {
		return nil, err
	}
	shifts := make([]model.Shift, 0, len(rows))
	for _, r := range rows {
		shifts = append(shifts, r.shift(c.media))
	}
	return shifts, nil
}

func (c *Client) CreateShift(ctx context.Context, machineID int64, req model.CreateShiftRequest) (*model.Shift, error) {
	if req.Workers == nil {
		req.Workers = []int64{}
	}
	var w wireShift
	if err := c.post(ctx, fmt.Sprintf("/machines/%d/shifts/", machineID), req, &w); err != nil {
		return nil, err
	}
	shift := w.shift(c.media)
	return &shift, nil
}

type endShiftBody struct {
	EndTime         string  `json:"end_time"`
	DrillingDepth   float64 `json:"drilling_depth"`
	FuelConsumption float64 `json:"fuel_consumption"`
	EndLocation     *int64  `json:"end_location,omitempty"`
}

// EndShift closes a shift. With a report image the body is sent as multipart form data.
func (c *Client) EndShift(ctx context.Context, shiftID int64, req model.EndShiftRequest) error {
	path := fmt.Sprintf("/shifts/%d/end/", shiftID)
	endTime := req.EndTime.UTC().Format(time.RFC3339)

	if req.ReportImage == nil {
		return c.post(ctx, path, endShiftBody{
			EndTime:         endTime,
			DrillingDepth:   req.DrillingDepth,
			FuelConsumption: req.FuelConsumption,
			EndLocation:     req.EndLocation,
		}, nil)
	}

	fields := map[string]string{
		"end_time":         endTime,
		"drilling_depth":   strconv.FormatFloat(req.DrillingDepth, 'f', -1, 64),
		"fuel_consumption": strconv.FormatFloat(req.FuelConsumption, 'f', -1, 64),
	}
	if req.EndLocation != nil {
		fields["end_location"] = strconv.FormatInt(*req.EndLocation, 10)
	}
	return c.sendMultipart(ctx, http.MethodPost, path, fields, []formFile{{field: "report_image", image: req.ReportImage}}, nil)
}

func (c *Client) AddShiftWorker(ctx context.Context, shiftID, workerID int64) error {
	return c.post(ctx, fmt.Sprintf("/shifts/%d/workers/", shiftID), model.ShiftWorkerRequest{WorkerID: workerID}, nil)
}

func (c *Client) RemoveShiftWorker(ctx context.Context, shiftID, workerID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/shifts/%d/workers/", shiftID), model.ShiftWorkerRequest{WorkerID: workerID}, nil, true)
}

func (c *Client) DeleteShift(ctx context.Context, shiftID int64) error {
	return c.delete(ctx, fmt.Sprintf("/shifts/%d/", shiftID))
}
