package api

import (
	"context"
	"fmt"

	"github.com/nurpe/drillfleet/internal/model"
)

func (c *Client) FuelSummary(ctx context.Context, machineID int64) (*model.FuelSummary, error) {
	var w wireFuelSummary
	if err := c.get(ctx, fmt.Sprintf("/machines/%d/fuel/", machineID), &w); err != nil {
		return nil, err
	}
	summary := &model.FuelSummary{
		TotalConsumption: float64(w.TotalConsumption),
		History:          make([]model.FuelRecord, 0, len(w.History)),
	}
	for _, r := range w.History {
		summary.History = append(summary.History, r.record())
	}
	return summary, nil
}

func (c *Client) CreateFuel(ctx context.Context, machineID int64, in model.FuelInput) (*model.FuelRecord, error) {
	var w wireFuel
	if err := c.post(ctx, fmt.Sprintf("/machines/%d/fuel/", machineID), in, &w); err != nil {
		return nil, err
	}
	record := w.record()
	return &record, nil
}

func (c *Client) DeleteFuel(ctx context.Context, machineID, fuelID int64) error {
	return c.delete(ctx, fmt.Sprintf("/machines/%d/fuel/%d/", machineID, fuelID))
}
