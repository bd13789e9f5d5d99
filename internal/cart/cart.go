package cart

import (
	"math"
	"sync"

	"smartbite/internal/models"
	"smartbite/internal/monitoring"
)

// Line is one cart entry; the price is captured when the item is first added
type Line struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	Description         string  `json:"description,omitempty"`
	Image               string  `json:"image,omitempty"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// Snapshot is a consistent view of the cart and its derived values
type Snapshot struct {
	Items     []Line  `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

// IsEmpty reports whether the snapshot has no lines
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Observer receives the new snapshot after every mutation. Observers run
// while the store is locked and must not call back into it.
type Observer func(Snapshot)

// Store holds the cart lines of one session
type Store struct {
	mu           sync.Mutex
	lines        []Line
	observers    map[int]Observer
	nextObserver int
	metrics      *monitoring.Metrics
}

// NewStore creates an empty cart store
func NewStore(metrics *monitoring.Metrics) *Store {
	return &Store{
		observers: make(map[int]Observer),
		metrics:   metrics,
	}
}

// AddItem adds one unit of item, creating the line on first add
func (s *Store) AddItem(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			Quantity:    1,
			Description: item.Description,
			Image:       item.Image,
		})
	}
	s.changed("add")
}

// UpdateQuantity sets the quantity of a line. Quantities below 1 remove it.
func (s *Store) UpdateQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	if quantity < 1 {
		s.removeAt(i)
		s.changed("remove")
		return
	}
	s.lines[i].Quantity = quantity
	s.changed("update")
}

// RemoveItem deletes a line if present
func (s *Store) RemoveItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.removeAt(i)
	s.changed("remove")
}

// SetInstructions attaches special instructions to a line if present
func (s *Store) SetInstructions(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.lines[i].SpecialInstructions = text
	s.changed("instructions")
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.changed("clear")
}

// Items returns the lines in insertion order
func (s *Store) Items() []Line {
	return s.Snapshot().Items
}

// Total returns the sum of price times quantity over all lines
func (s *Store) Total() float64 {
	return s.Snapshot().Total
}

// ItemCount returns the sum of quantities over all lines
func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount
}

// Snapshot returns the lines and derived values under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe registers fn for change notifications and returns its unsubscribe func
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// take empties the cart and returns what it held, or false when already empty
func (s *Store) take() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return Snapshot{}, false
	}
	snap := s.snapshot()
	s.lines = nil
	s.changed("checkout")
	return snap, true
}

func (s *Store) indexOf(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

func (s *Store) snapshot() Snapshot {
	snap := Snapshot{Items: make([]Line, len(s.lines))}
	copy(snap.Items, s.lines)

	var total float64
	for _, line := range s.lines {
		total += line.Price * float64(line.Quantity)
		snap.ItemCount += line.Quantity
	}
	snap.Total = roundCents(total)
	return snap
}

// changed must be called with s.mu held
func (s *Store) changed(op string) {
	s.metrics.RecordCartMutation(op)
	if len(s.observers) == 0 {
		return
	}

	snap := s.snapshot()
	for id := 0; id < s.nextObserver; id++ {
		if fn, ok := s.observers[id]; ok {
			fn(snap)
		}
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
