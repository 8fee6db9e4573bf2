package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nurpe/drillfleet/internal/model"
)

func (c *Client) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := c.get(ctx, "/machines/", &machines); err != nil {
		return nil, err
	}
	return machines, nil
}

func (c *Client) GetMachine(ctx context.Context, machineID int64) (*model.Machine, error) {
	var machine model.Machine
	if err := c.get(ctx, fmt.Sprintf("/machines/%d/", machineID), &machine); err != nil {
		return nil, err
	}
	return &machine, nil
}

// UpdateMachineLocation reports the device position for a machine.
func (c *Client) UpdateMachineLocation(ctx context.Context, machineID int64, update model.LocationUpdate) (*model.LocationSample, error) {
	var w wireLocation
	if err := c.post(ctx, fmt.Sprintf("/machines/%d/update_location/", machineID), update, &w); err != nil {
		return nil, err
	}
	sample := w.sample()
	return &sample, nil
}

// LatestLocations returns the machine's samples newest first.
func (c *Client) LatestLocations(ctx context.Context, machineID int64) ([]model.LocationSample, error) {
	var rows []wireLocation
	path := "/locations/?" + url.Values{"machine_id": {strconv.FormatInt(machineID, 10)}}.Encode()
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	samples := make([]model.LocationSample, 0, len(rows))
	for _, r := range rows {
		samples = append(samples, r.sample())
	}
	return samples, nil
}

func (c *Client) LocationHistory(ctx context.Context, machineID int64) ([]model.LocationRecord, error) {
	var rows []wireLocation
	if err := c.get(ctx, fmt.Sprintf("/machines/%d/locations/history/", machineID), &rows); err != nil {
		return nil, err
	}
	records := make([]model.LocationRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}

func (c *Client) CreateHistoryPoint(ctx context.Context, machineID int64, req model.WaypointRequest) (*model.LocationRecord, error) {
	var w wireLocation
	if err := c.post(ctx, fmt.Sprintf("/machines/%d/locations/history/", machineID), req, &w); err != nil {
		return nil, err
	}
	record := w.record()
	return &record, nil
}

func (c *Client) DeleteHistoryPoint(ctx context.Context, machineID, locationID int64) error {
	return c.delete(ctx, fmt.Sprintf("/machines/%d/locations/history/%d/", machineID, locationID))
}
