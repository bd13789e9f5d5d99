package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"smartbite/internal/models"
)

// menuItemRecord is the persisted form of a menu item
type menuItemRecord struct {
	ID          string `gorm:"primary_key"`
	Position    int    `gorm:"not null"`
	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"index"`
	Image       string
	Dietary     string
	Rating      float64
}

// TableName sets the table name for gorm
func (menuItemRecord) TableName() string {
	return "menu_items"
}

func toRecord(position int, item models.MenuItem) menuItemRecord {
	return menuItemRecord{
		ID:          item.ID,
		Position:    position,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Category:    item.Category,
		Image:       item.Image,
		Dietary:     strings.Join(item.Dietary, ","),
		Rating:      item.Rating,
	}
}

func (r menuItemRecord) toModel() models.MenuItem {
	dietary := []string{}
	if r.Dietary != "" {
		dietary = strings.Split(r.Dietary, ",")
	}
	return models.MenuItem{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
		Dietary:     dietary,
		Rating:      r.Rating,
	}
}

// GormRepository stores the menu in a SQL database
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository migrates the menu table and seeds it when empty
func NewGormRepository(db *gorm.DB, seed []models.MenuItem) (*GormRepository, error) {
	if err := db.AutoMigrate(&menuItemRecord{}).Error; err != nil {
		return nil, errors.Wrap(err, "failed to migrate menu_items")
	}

	var count int
	if err := db.Model(&menuItemRecord{}).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count menu items")
	}

	if count == 0 && len(seed) > 0 {
		tx := db.Begin()
		for i, item := range seed {
			if err := models.ValidateMenuItem(&item); err != nil {
				tx.Rollback()
				return nil, errors.Wrapf(err, "invalid seed item %s", item.ID)
			}
			record := toRecord(i, item)
			if err := tx.Create(&record).Error; err != nil {
				tx.Rollback()
				return nil, errors.Wrapf(err, "failed to seed menu item %s", item.ID)
			}
		}
		if err := tx.Commit().Error; err != nil {
			return nil, errors.Wrap(err, "failed to commit menu seed")
		}
	}

	return &GormRepository{db: db}, nil
}

// List returns the menu in catalog order
func (r *GormRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	var records []menuItemRecord
	if err := r.db.Order("position asc").Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list menu items")
	}

	items := make([]models.MenuItem, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.toModel())
	}
	return items, nil
}

// Get returns a single menu item
func (r *GormRepository) Get(ctx context.Context, id string) (models.MenuItem, error) {
	var rec menuItemRecord
	err := r.db.Where("id = ?", id).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return models.MenuItem{}, fmt.Errorf("menu item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.MenuItem{}, errors.Wrapf(err, "failed to load menu item %s", id)
	}
	return rec.toModel(), nil
}
