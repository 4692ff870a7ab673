package transport

import (
	"context"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/model"
)

// Health is the server health and version payload
type Health struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ansiMapResponse struct {
	Map string `json:"map"`
}

// State fetches the full current snapshot
func (c *Client) State(ctx context.Context) (*model.Snapshot, error) {
	var resp model.Snapshot
	if err := c.Get(ctx, "/state", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Command submits a parsed command
func (c *Client) Command(ctx context.Context, cmd command.Command) (*model.CommandResponse, error) {
	var resp model.CommandResponse
	if err := c.Post(ctx, "/command", cmd, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health fetches the server name and version. It needs no token.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.Get(ctx, "/healthz", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdminMap fetches the pre-rendered galaxy map (admins only)
func (c *Client) AdminMap(ctx context.Context) (string, error) {
	var resp ansiMapResponse
	if err := c.Get(ctx, "/admin/ansi_map", &resp); err != nil {
		return "", err
	}
	return resp.Map, nil
}
