package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/cache"
	"github.com/nurpe/drillfleet/internal/model"
)

type InventoryAPI interface {
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, itemID int64, in model.InventoryItemInput) (*model.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, itemID int64) error
	AddStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error)
	RemoveStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error)
	ListTransactions(ctx context.Context, itemID int64) ([]model.InventoryTransaction, error)
}

// InventoryItemView adds the derived critical flag to an item.
type InventoryItemView struct {
	model.InventoryItem
	Critical bool `json:"critical"`
}

// InventoryLedger manages spare parts. Quantities are derived by the API from the stock
// transaction ledger and never written directly.
type InventoryLedger struct {
	api   InventoryAPI
	cache cache.Store
	log   zerolog.Logger
}

func NewInventoryLedger(client InventoryAPI, store cache.Store, log zerolog.Logger) *InventoryLedger {
	return &InventoryLedger{
		api:   client,
		cache: store,
		log:   log.With().Str("component", "inventory").Logger(),
	}
}

func (l *InventoryLedger) Items(ctx context.Context) ([]InventoryItemView, error) {
	items, err := cache.Fetch(ctx, l.cache, l.log, "inventory:items", l.api.ListInventory)
	if err != nil {
		return nil, err
	}
	views := make([]InventoryItemView, 0, len(items))
	for _, it := range items {
		views = append(views, InventoryItemView{InventoryItem: it, Critical: it.Critical()})
	}
	return views, nil
}

// CriticalItems returns items at or below their minimum quantity.
func (l *InventoryLedger) CriticalItems(ctx context.Context) ([]InventoryItemView, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]InventoryItemView, 0)
	for _, it := range items {
		if it.Critical {
			out = append(out, it)
		}
	}
	return out, nil
}

func (l *InventoryLedger) Create(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	if in.Name == nil || *in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := model.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item, err := l.api.CreateInventoryItem(ctx, in)
	if err != nil {
		return nil, err
	}
	l.invalidate(ctx)
	return item, nil
}

func (l *InventoryLedger) Update(ctx context.Context, itemID int64, in model.InventoryItemInput) (*model.InventoryItem, error) {
	if err := model.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	item, err := l.api.UpdateInventoryItem(ctx, itemID, in)
	if err != nil {
		return nil, notFound(err)
	}
	l.invalidate(ctx)
	return item, nil
}

func (l *InventoryLedger) Delete(ctx context.Context, itemID int64) error {
	if err := l.api.DeleteInventoryItem(ctx, itemID); err != nil {
		return notFound(err)
	}
	l.invalidate(ctx)
	return nil
}

func (l *InventoryLedger) AddStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error) {
	return l.stock(ctx, itemID, change, l.api.AddStock)
}

func (l *InventoryLedger) RemoveStock(ctx context.Context, itemID int64, change model.StockChange) (*model.InventoryItem, error) {
	return l.stock(ctx, itemID, change, l.api.RemoveStock)
}

func (l *InventoryLedger) stock(ctx context.Context, itemID int64, change model.StockChange, apply func(context.Context, int64, model.StockChange) (*model.InventoryItem, error)) (*model.InventoryItem, error) {
	if err := model.Validate(change); err != nil {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	item, err := apply(ctx, itemID, change)
	if err != nil {
		return nil, notFound(err)
	}
	l.invalidate(ctx)
	return item, nil
}

// Transactions lists stock movements, for one item when itemID is set.
func (l *InventoryLedger) Transactions(ctx context.Context, itemID int64) ([]model.InventoryTransaction, error) {
	return cache.Fetch(ctx, l.cache, l.log, cache.Key("inventory", "transactions", itemID), func(ctx context.Context) ([]model.InventoryTransaction, error) {
		return l.api.ListTransactions(ctx, itemID)
	})
}

func (l *InventoryLedger) invalidate(ctx context.Context) {
	if err := l.cache.Invalidate(ctx, "inventory"); err != nil {
		l.log.Warn().Err(err).Msg("inventory invalidation failed")
	}
}
