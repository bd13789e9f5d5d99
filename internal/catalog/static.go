package catalog

import (
	"context"
	"fmt"

	"smartbite/internal/models"
)

// StaticRepository serves a fixed in-memory menu
type StaticRepository struct {
	items []models.MenuItem
}

// NewStaticRepository creates a repository over a copy of items
func NewStaticRepository(items []models.MenuItem) *StaticRepository {
	return &StaticRepository{items: cloneItems(items)}
}

// List returns the menu in catalog order
func (r *StaticRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	return cloneItems(r.items), nil
}

// Get returns a single menu item
func (r *StaticRepository) Get(ctx context.Context, id string) (models.MenuItem, error) {
	for _, item := range r.items {
		if item.ID == id {
			return cloneItem(item), nil
		}
	}
	return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
}

func cloneItems(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	for i, item := range items {
		out[i] = cloneItem(item)
	}
	return out
}

func cloneItem(item models.MenuItem) models.MenuItem {
	item.Dietary = append([]string(nil), item.Dietary...)
	return item
}
