package recommendation

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartbite/internal/models"
	"smartbite/internal/monitoring"
)

// State is what the recommendation panel renders
type State struct {
	Loading   bool              `json:"loading"`
	Items     []models.MenuItem `json:"items"`
	Strategy  string            `json:"strategy,omitempty"`
	Fallback  bool              `json:"fallback"`
	Sequence  uint64            `json:"sequence"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Feed keeps the recommendations of one session current. Only the result of
// the most recently issued request is ever applied.
type Feed struct {
	engine  *Engine
	metrics *monitoring.Metrics
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	issued      uint64
	fingerprint uint64
	state       State
}

// NewFeed creates an idle feed
func NewFeed(engine *Engine, metrics *monitoring.Metrics, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		engine:  engine,
		metrics: metrics,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		state:   State{Items: []models.MenuItem{}},
	}
}

// Update starts a recomputation when the inputs differ from the last request.
// It returns the sequence number of the request that will produce the state.
func (f *Feed) Update(req Request) uint64 {
	fp := Fingerprint(req)

	f.mu.Lock()
	if f.issued > 0 && fp == f.fingerprint {
		seq := f.issued
		f.mu.Unlock()
		return seq
	}
	seq := f.issueLocked(fp)
	f.mu.Unlock()

	f.run(seq, req)
	return seq
}

// Refresh starts a recomputation regardless of the inputs
func (f *Feed) Refresh(req Request) uint64 {
	fp := Fingerprint(req)

	f.mu.Lock()
	seq := f.issueLocked(fp)
	f.mu.Unlock()

	f.run(seq, req)
	return seq
}

// issueLocked must be called with f.mu held
func (f *Feed) issueLocked(fp uint64) uint64 {
	f.issued++
	f.fingerprint = fp
	f.state.Loading = true
	return f.issued
}

func (f *Feed) run(seq uint64, req Request) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		result := f.engine.Recommend(f.ctx, req)
		f.apply(seq, result)
	}()
}

func (f *Feed) apply(seq uint64, result Result) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.issued || f.ctx.Err() != nil {
		f.metrics.RecordStaleRecommendation()
		f.logger.Debug("dropping superseded recommendation result",
			zap.Uint64("sequence", seq),
			zap.Uint64("latest", f.issued))
		return
	}

	f.state = State{
		Loading:   false,
		Items:     result.Items,
		Strategy:  result.Strategy,
		Fallback:  result.Fallback,
		Sequence:  seq,
		UpdatedAt: time.Now(),
	}
}

// State returns a copy of the current feed state
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.state
	state.Items = append(make([]models.MenuItem, 0, len(f.state.Items)), f.state.Items...)
	return state
}

// Wait blocks until every in-flight request has finished
func (f *Feed) Wait() {
	f.wg.Wait()
}

// Close cancels in-flight requests; their results are discarded
func (f *Feed) Close() {
	f.cancel()
}

// Fingerprint hashes the recommendation inputs with FNV-1a
func Fingerprint(req Request) uint64 {
	h := fnv.New64a()

	for _, item := range req.Catalog {
		fmt.Fprintf(h, "item|%s|%s|%s|%.2f|%.2f|%s\n",
			item.ID, item.Name, item.Category, item.Price, item.Rating, strings.Join(item.Dietary, ","))
	}

	if p := req.Preferences; p != nil {
		dietary := append([]string(nil), p.Dietary...)
		categories := append([]string(nil), p.FavoriteCategories...)
		sort.Strings(dietary)
		sort.Strings(categories)
		fmt.Fprintf(h, "prefs|%s|%s|%.2f|%.2f\n",
			strings.Join(dietary, ","), strings.Join(categories, ","), p.PriceRange.Min, p.PriceRange.Max)
	} else {
		fmt.Fprint(h, "prefs|none\n")
	}

	for _, order := range req.History {
		fmt.Fprintf(h, "order|%s|%s\n", order.ID, strings.Join(order.ItemIDs(), ","))
	}

	return h.Sum64()
}
