package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nurpe/drillfleet/internal/model"
)

func (c *Client) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	var rows []wireInventoryItem
	if err := c.get(ctx, "/inventory/items/", &rows); err != nil {
		return nil, err
	}
	items := make([]model.InventoryItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.item(c.media))
	}
	return items, nil
}

func (c *Client) CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	return c.writeInventoryItem(ctx, http.MethodPost, "/inventory/items/", in)
}

// UpdateInventoryItem sends only the fields set on in.
func (c *Client) UpdateInventoryItem(ctx context.Context, itemID int64, in model.InventoryItemInput) (*model.InventoryItem, error) {
	return c.writeInventoryItem(ctx, http.MethodPatch, fmt.Sprintf("/inventory/items/%d/", itemID), in)
}

func (c *Client) writeInventoryItem(ctx context.Context, method, path string, in model.InventoryItemInput) (*model.InventoryItem, error) {
	fields := map[string]string{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Quantity != nil {
		fields["quantity"] = strconv.FormatFloat(*in.Quantity, 'f', -1, 64)
	}
	if in.MinQuantity != nil {
		fields["min_quantity"] = strconv.FormatFloat(*in.MinQuantity, 'f', -1, 64)
	}
	if in.Unit != nil {
		fields["unit"] = *in.Unit
	}
	var w wireInventoryItem
	if err := c.sendMultipart(ctx, method, path, fields, []formFile{{field: "image", image: in.Image}}, &w); err != nil {
		return nil, err
	}
	item := w.item(c.media)
	return &item, nil
}

func (c *Client) DeleteInventoryItem(ctx context.Context, itemID int64) error {
	return c.delete(ctx, fmt.Sprintf("/inventory/items/%d/", itemID))
}

func (c *Client) AddStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error) {
	return c.stock(ctx, itemID, "add_stock", change)
}

func (c *Client) RemoveStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error) {
	return c.stock(ctx, itemID, "remove_stock", change)
}

func (c *Client) stock(ctx context.Context, itemID int64, action string, change model.StockChange) (*model.InventoryItem, error) {
	var w wireInventoryItem
	if err := c.post(ctx, fmt.Sprintf("/inventory/items/%d/%s/", itemID, action), change, &w); err != nil {
		return nil, err
	}
	item := w.item(c.media)
	return &item, nil
}

// ListTransactions returns stock movements; a zero itemID lists all of them.
func (c *Client) ListTransactions(ctx context.Context, itemID int64) ([]model.InventoryTransaction, error) {
	path := "/inventory/transactions/"
	if itemID > 0 {
		path += "?item=" + formatID(itemID)
	}
	var rows []wireTransaction
	if err := c.get(ctx, path, &rows); err != nil {
		return nil, err
	}
	out := make([]model.InventoryTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.transaction())
	}
	return out, nil
}
