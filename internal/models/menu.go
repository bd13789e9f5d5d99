package models

import (
	"fmt"
	"strings"
)

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image,omitempty"`
	Dietary     []string `json:"dietary"`
	Rating      float64  `json:"rating"`
}

// MenuCategory represents the category of a menu item
type MenuCategory string

const (
	// Menu categories
	MenuCategoryAll        MenuCategory = "all"
	MenuCategoryAppetizers MenuCategory = "appetizers"
	MenuCategoryMains      MenuCategory = "mains"
	MenuCategoryDesserts   MenuCategory = "desserts"
	MenuCategoryBeverages  MenuCategory = "beverages"
)

// MenuCategories lists the categories offered by the menu page
var MenuCategories = []MenuCategory{
	MenuCategoryAll,
	MenuCategoryAppetizers,
	MenuCategoryMains,
	MenuCategoryDesserts,
	MenuCategoryBeverages,
}

const (
	// Dietary tags offered as browse filters
	DietaryVegetarian = "vegetarian"
	DietaryVegan      = "vegan"
	DietaryGlutenFree = "gluten-free"
)

// DietaryOptions lists the dietary filters offered by the menu page
var DietaryOptions = []string{DietaryVegetarian, DietaryVegan, DietaryGlutenFree}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if item.ID == "" {
		return fmt.Errorf("menu item id is required")
	}
	if item.Name == "" {
		return fmt.Errorf("menu item name is required")
	}
	if item.Price <= 0 {
		return fmt.Errorf("menu item price must be greater than 0")
	}
	if item.Rating < 0 || item.Rating > 5 {
		return fmt.Errorf("menu item rating must be between 0 and 5")
	}
	return nil
}

// HasDietaryTag checks if the item carries a specific dietary tag
func (mi *MenuItem) HasDietaryTag(tag string) bool {
	for _, t := range mi.Dietary {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyDietaryTag reports whether the item carries at least one of the tags
func (mi *MenuItem) HasAnyDietaryTag(tags []string) bool {
	for _, tag := range tags {
		if mi.HasDietaryTag(tag) {
			return true
		}
	}
	return false
}

// IsInCategory checks if the item belongs to a specific category
func (mi *MenuItem) IsInCategory(category MenuCategory) bool {
	return strings.EqualFold(mi.Category, string(category))
}
