package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/drillfleet/internal/model"
	"github.com/nurpe/drillfleet/internal/service"
)

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.inventory.Items(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) criticalInventory(c *gin.Context) {
	items, err := h.inventory.CriticalItems(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) createInventoryItem(c *gin.Context) {
	in, err := inventoryForm(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) updateInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, err := inventoryForm(c)
	if err != nil {
		h.handleError(c, err)
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), id, in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteInventoryItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.inventory.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addStock(c *gin.Context) {
	h.changeStock(c, h.inventory.AddStock)
}

func (h *Handler) removeStock(c *gin.Context) {
	h.changeStock(c, h.inventory.RemoveStock)
}

func (h *Handler) changeStock(c *gin.Context, apply func(context.Context, int64, model.StockChange) (*model.InventoryItem, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req model.StockChange
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := apply(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) listTransactions(c *gin.Context) {
	var itemID int64
	if raw := strings.TrimSpace(c.Query("item")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item"})
			return
		}
		itemID = id
	}
	txs, err := h.inventory.Transactions(c.Request.Context(), itemID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// inventoryForm reads item fields from a multipart or urlencoded form. Absent fields stay
// nil so updates only touch what was sent.
func inventoryForm(c *gin.Context) (model.InventoryItemInput, error) {
	var in model.InventoryItemInput
	if v, ok := c.GetPostForm("name"); ok {
		v = strings.TrimSpace(v)
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("unit"); ok {
		in.Unit = &v
	}
	for field, dst := range map[string]**float64{"quantity": &in.Quantity, "min_quantity": &in.MinQuantity} {
		raw, ok := c.GetPostForm(field)
		if !ok {
			continue
		}
		v, err := parseOptionalFloat(raw)
		if err != nil {
			return in, service.ErrInvalidInput
		}
		*dst = &v
	}
	image, err := formImage(c, "image")
	if err != nil {
		return in, err
	}
	in.Image = image
	return in, nil
}
