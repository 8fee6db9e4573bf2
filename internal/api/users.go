package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nurpe/drillfleet/internal/model"
)

// ListUsers returns users, optionally restricted to one role.
func (c *Client) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	path := "/users/"
	if role != "" {
		path += "?" + url.Values{"role": {string(role)}}.Encode()
	}
	var users []model.User
	if err := c.get(ctx, path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	var user model.User
	if err := c.post(ctx, "/users/", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, in model.UserInput) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/", userID), in, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d/", userID))
}

func (c *Client) ActiveAssignments(ctx context.Context) ([]model.WorkerAssignment, error) {
	var rows []wireAssignment
	if err := c.get(ctx, "/worker-machines/?is_active=true", &rows); err != nil {
		return nil, err
	}
	out := make([]model.WorkerAssignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.assignment())
	}
	return out, nil
}

type workerBody struct {
	WorkerID int64 `json:"worker_id"`
}

func (c *Client) AssignWorker(ctx context.Context, machineID, workerID int64) error {
	return c.post(ctx, fmt.Sprintf("/machines/%d/assign_worker/", machineID), workerBody{WorkerID: workerID}, nil)
}

func (c *Client) UnassignWorker(ctx context.Context, machineID, workerID int64) error {
	return c.post(ctx, fmt.Sprintf("/machines/%d/unassign_worker/", machineID), workerBody{WorkerID: workerID}, nil)
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
