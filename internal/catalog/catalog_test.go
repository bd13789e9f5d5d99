package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbite/internal/database"
	"smartbite/internal/models"
)

func names(items []models.MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestDefaultMenuIsValid(t *testing.T) {
	menu := DefaultMenu()
	require.Len(t, menu, 8)

	seen := map[string]bool{}
	for i := range menu {
		assert.NoError(t, models.ValidateMenuItem(&menu[i]))
		assert.False(t, seen[menu[i].ID], "duplicate id %s", menu[i].ID)
		seen[menu[i].ID] = true
	}
}

func TestStaticRepository(t *testing.T) {
	repo := NewStaticRepository(DefaultMenu())
	ctx := context.Background()

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 8)

	// Mutating a returned item must not leak into the repository
	items[0].Dietary[0] = "changed"
	again, _ := repo.List(ctx)
	assert.Equal(t, "gluten-free-option", again[0].Dietary[0])

	item, err := repo.Get(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Lava Cake", item.Name)

	_, err = repo.Get(ctx, "99")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGormRepositorySeedsAndLists(t *testing.T) {
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	repo, err := NewGormRepository(db, DefaultMenu())
	require.NoError(t, err)

	ctx := context.Background()
	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, names(DefaultMenu()), names(items))
	assert.Equal(t, []string{"vegetarian", "gluten-free"}, items[1].Dietary)

	item, err := repo.Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Grilled Salmon", item.Name)
	assert.Equal(t, 26.99, item.Price)
	assert.Equal(t, []string{"gluten-free", "keto"}, item.Dietary)

	_, err = repo.Get(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Seeding again over a populated table is a no-op
	_, err = NewGormRepository(db, DefaultMenu())
	require.NoError(t, err)
	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 8)
}

func TestGormRepositoryRejectsInvalidSeed(t *testing.T) {
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewGormRepository(db, []models.MenuItem{{ID: "x", Name: "Free Lunch", Price: 0}})
	assert.Error(t, err)
}

func TestBrowse(t *testing.T) {
	menu := DefaultMenu()

	tests := []struct {
		name     string
		query    Query
		expected []string
	}{
		{
			name:     "no filters",
			query:    Query{Category: "all", Dietary: "all"},
			expected: names(menu),
		},
		{
			name:     "search matches description case-insensitively",
			query:    Query{Search: "MOZZARELLA"},
			expected: []string{"Margherita Pizza"},
		},
		{
			name:     "category",
			query:    Query{Category: "desserts"},
			expected: []string{"Chocolate Lava Cake", "Tiramisu"},
		},
		{
			name:     "dietary",
			query:    Query{Dietary: "vegan"},
			expected: []string{"Artisan Salad"},
		},
		{
			name:     "combined",
			query:    Query{Search: "salad", Category: "appetizers", Dietary: "vegetarian"},
			expected: []string{"Caesar Salad"},
		},
		{
			name:     "nothing matches",
			query:    Query{Category: "beverages"},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, names(Browse(menu, tt.query)))
		})
	}
}

func TestFindByName(t *testing.T) {
	items := []models.MenuItem{
		{ID: "1", Name: "Salad"},
		{ID: "2", Name: "Caesar Salad"},
	}

	item, ok := FindByName(items, "please add the caesar salad to my cart")
	require.True(t, ok)
	assert.Equal(t, "2", item.ID)

	item, ok = FindByName(items, "a salad please")
	require.True(t, ok)
	assert.Equal(t, "1", item.ID)

	_, ok = FindByName(items, "add soup to my order")
	assert.False(t, ok)
}

func TestIndex(t *testing.T) {
	index := Index(DefaultMenu())
	assert.Len(t, index, 8)
	assert.Equal(t, "Tiramisu", index["8"].Name)
}
