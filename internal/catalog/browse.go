package catalog

import (
	"strings"

	"smartbite/internal/models"
)

// Query narrows the menu page listing. Empty or "all" fields do not filter.
type Query struct {
	Search   string
	Category string
	Dietary  string
}

// Browse filters items for the menu page, keeping catalog order
func Browse(items []models.MenuItem, q Query) []models.MenuItem {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		if !isAll(q.Category) && !item.IsInCategory(models.MenuCategory(q.Category)) {
			continue
		}
		if !isAll(q.Dietary) && !item.HasDietaryTag(q.Dietary) {
			continue
		}
		result = append(result, item)
	}
	return result
}

// FindByName returns the item whose lower-cased name occurs in text.
// When several names occur the longest one wins.
func FindByName(items []models.MenuItem, text string) (models.MenuItem, bool) {
	text = strings.ToLower(text)

	var (
		best  models.MenuItem
		found bool
	)
	for _, item := range items {
		name := strings.ToLower(item.Name)
		if name == "" || !strings.Contains(text, name) {
			continue
		}
		if !found || len(name) > len(best.Name) {
			best = item
			found = true
		}
	}
	return best, found
}

// Index maps item ids to items
func Index(items []models.MenuItem) map[string]models.MenuItem {
	index := make(map[string]models.MenuItem, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return index
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, string(models.MenuCategoryAll))
}
