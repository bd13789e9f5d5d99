package catalog

import "smartbite/internal/models"

const imageParams = "?w=400&h=300&fit=crop&crop=center"

// DefaultMenu returns the menu the store is seeded with
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			ID:          "1",
			Name:        "Truffle Burger",
			Description: "Premium beef patty with truffle sauce, arugula, and aged cheddar",
			Price:       24.99,
			Category:    "mains",
			Image:       "https://images.unsplash.com/photo-1568901346375-23c9450c58cd" + imageParams,
			Dietary:     []string{"gluten-free-option"},
			Rating:      4.8,
		},
		{
			ID:          "2",
			Name:        "Mediterranean Bowl",
			Description: "Quinoa, roasted vegetables, feta cheese, and tahini dressing",
			Price:       18.99,
			Category:    "mains",
			Image:       "https://images.unsplash.com/photo-1512621776951-a57141f2eefd" + imageParams,
			Dietary:     []string{"vegetarian", "gluten-free"},
			Rating:      4.6,
		},
		{
			ID:          "3",
			Name:        "Artisan Salad",
			Description: "Mixed greens, seasonal fruits, nuts, and house vinaigrette",
			Price:       14.99,
			Category:    "appetizers",
			Image:       "https://images.unsplash.com/photo-1540420773420-3366772f4999" + imageParams,
			Dietary:     []string{"vegan", "gluten-free"},
			Rating:      4.4,
		},
		{
			ID:          "4",
			Name:        "Chocolate Lava Cake",
			Description: "Warm chocolate cake with molten center and vanilla ice cream",
			Price:       12.99,
			Category:    "desserts",
			Image:       "https://images.unsplash.com/photo-1563805042-7684c019e1cb" + imageParams,
			Dietary:     []string{"vegetarian"},
			Rating:      4.9,
		},
		{
			ID:          "5",
			Name:        "Grilled Salmon",
			Description: "Atlantic salmon with lemon herb butter and roasted vegetables",
			Price:       26.99,
			Category:    "mains",
			Image:       "https://images.unsplash.com/photo-1467003909585-2f8a72700288" + imageParams,
			Dietary:     []string{"gluten-free", "keto"},
			Rating:      4.7,
		},
		{
			ID:          "6",
			Name:        "Margherita Pizza",
			Description: "Wood-fired pizza with fresh mozzarella, basil, and San Marzano tomatoes",
			Price:       19.99,
			Category:    "mains",
			Image:       "https://images.unsplash.com/photo-1604382354936-07c5d9983bd3" + imageParams,
			Dietary:     []string{"vegetarian"},
			Rating:      4.5,
		},
		{
			ID:          "7",
			Name:        "Caesar Salad",
			Description: "Crisp romaine lettuce, parmesan cheese, croutons, and caesar dressing",
			Price:       16.99,
			Category:    "appetizers",
			Image:       "https://images.unsplash.com/photo-1546793665-c74683f339c1" + imageParams,
			Dietary:     []string{"vegetarian"},
			Rating:      4.3,
		},
		{
			ID:          "8",
			Name:        "Tiramisu",
			Description: "Classic Italian dessert with mascarpone, coffee, and cocoa",
			Price:       10.99,
			Category:    "desserts",
			Image:       "https://images.unsplash.com/photo-1571877227200-a0d98ea607e9" + imageParams,
			Dietary:     []string{"vegetarian"},
			Rating:      4.6,
		},
	}
}
