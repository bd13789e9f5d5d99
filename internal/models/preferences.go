package models

// PriceRange is an inclusive [Min, Max] bound on item price
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether price lies inside the range, bounds included
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// UserPreferences drives recommendation filtering
type UserPreferences struct {
	Dietary            []string   `json:"dietary"`
	FavoriteCategories []string   `json:"favoriteCategories"`
	PriceRange         PriceRange `json:"priceRange"`
}

// DefaultPreferences returns the preferences a new session starts with
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Dietary:            []string{DietaryVegetarian},
		FavoriteCategories: []string{string(MenuCategoryMains)},
		PriceRange:         PriceRange{Min: 10, Max: 30},
	}
}

// Clone returns a deep copy so callers can keep their own value untouched
func (p *UserPreferences) Clone() *UserPreferences {
	if p == nil {
		return nil
	}
	return &UserPreferences{
		Dietary:            append([]string(nil), p.Dietary...),
		FavoriteCategories: append([]string(nil), p.FavoriteCategories...),
		PriceRange:         p.PriceRange,
	}
}
