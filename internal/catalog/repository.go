package catalog

import (
	"context"
	"errors"

	"smartbite/internal/models"
)

// ErrNotFound is returned when a menu item id is unknown
var ErrNotFound = errors.New("menu item not found")

// Repository provides read access to the menu
type Repository interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
}
