package recommendation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartbite/internal/catalog"
	"smartbite/internal/models"
	"smartbite/internal/models/providers"
	"smartbite/internal/monitoring"
)

func promptContains(s string) interface{} {
	return mock.MatchedBy(func(msgs []providers.Message) bool {
		return len(msgs) == 2 && strings.Contains(msgs[1].Content, s)
	})
}

func TestFeedLastRequestWins(t *testing.T) {
	release := make(chan struct{})
	provider := new(MockProvider)

	// The first request is slow and answers after the second one
	provider.On("Complete", mock.Anything, promptContains(`preferences: {"dietary":["vegetarian"]`)).
		Run(func(args mock.Arguments) { <-release }).
		Return(`["4"]`, nil).Once()
	provider.On("Complete", mock.Anything, promptContains(`preferences: {"dietary":["vegan"]`)).
		Return(`["3"]`, nil).Once()

	metrics := monitoring.NewMetrics(nil)
	feed := NewFeed(NewEngine(provider, metrics, nil), metrics, nil)
	menu := catalog.DefaultMenu()

	first := feed.Update(Request{Catalog: menu, Preferences: models.DefaultPreferences()})
	assert.True(t, feed.State().Loading)

	vegan := models.DefaultPreferences()
	vegan.Dietary = []string{"vegan"}
	second := feed.Update(Request{Catalog: menu, Preferences: vegan})
	assert.Greater(t, second, first)

	assert.Eventually(t, func() bool {
		return feed.State().Sequence == second
	}, time.Second, 5*time.Millisecond)

	state := feed.State()
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"Artisan Salad"}, names(state.Items))

	close(release)
	feed.Wait()

	// The late result of the first request is dropped
	state = feed.State()
	assert.Equal(t, second, state.Sequence)
	assert.Equal(t, []string{"Artisan Salad"}, names(state.Items))

	value, _ := metrics.Monitor().GetMetric(monitoring.KeyRecommendationsStale)
	assert.Equal(t, 1.0, value)
	provider.AssertExpectations(t)
}

func TestFeedLoadingStaysWhileLatestInFlight(t *testing.T) {
	release := make(chan struct{})
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, promptContains(`preferences: {"dietary":["vegetarian"]`)).
		Return(`["2"]`, nil).Once()
	provider.On("Complete", mock.Anything, promptContains(`preferences: {"dietary":["vegan"]`)).
		Run(func(args mock.Arguments) { <-release }).
		Return(`["3"]`, nil).Once()

	feed := NewFeed(NewEngine(provider, nil, nil), nil, nil)
	menu := catalog.DefaultMenu()

	feed.Update(Request{Catalog: menu, Preferences: models.DefaultPreferences()})
	vegan := models.DefaultPreferences()
	vegan.Dietary = []string{"vegan"}
	latest := feed.Update(Request{Catalog: menu, Preferences: vegan})

	// Give the fast, superseded request time to finish
	time.Sleep(50 * time.Millisecond)
	assert.True(t, feed.State().Loading)

	close(release)
	feed.Wait()

	state := feed.State()
	assert.False(t, state.Loading)
	assert.Equal(t, latest, state.Sequence)
	assert.Equal(t, []string{"Artisan Salad"}, names(state.Items))
}

func TestFeedSkipsUnchangedInputs(t *testing.T) {
	feed := NewFeed(NewEngine(nil, nil, nil), nil, nil)
	req := Request{Catalog: catalog.DefaultMenu(), Preferences: models.DefaultPreferences()}

	first := feed.Update(req)
	feed.Wait()

	again := feed.Update(Request{Catalog: catalog.DefaultMenu(), Preferences: models.DefaultPreferences()})
	assert.Equal(t, first, again)

	forced := feed.Refresh(req)
	assert.Greater(t, forced, first)
	feed.Wait()

	state := feed.State()
	assert.Equal(t, forced, state.Sequence)
	assert.Equal(t, []string{"Mediterranean Bowl", "Margherita Pizza"}, names(state.Items))
}

func TestFeedConcurrentIdenticalUpdatesIssueOnce(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).Return(`["4"]`, nil).Once()

	feed := NewFeed(NewEngine(provider, nil, nil), nil, nil)
	menu := catalog.DefaultMenu()

	const callers = 32
	seqs := make([]uint64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seqs[i] = feed.Update(Request{Catalog: menu, Preferences: models.DefaultPreferences()})
		}(i)
	}
	wg.Wait()
	feed.Wait()

	for _, seq := range seqs {
		assert.Equal(t, uint64(1), seq)
	}
	provider.AssertNumberOfCalls(t, "Complete", 1)
	assert.Equal(t, uint64(1), feed.State().Sequence)
}

func TestFeedCloseDiscardsInFlight(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.Canceled)

	feed := NewFeed(NewEngine(provider, nil, nil), nil, nil)
	feed.Update(Request{Catalog: catalog.DefaultMenu()})
	feed.Close()
	feed.Wait()

	state := feed.State()
	assert.Equal(t, uint64(0), state.Sequence)
	assert.Empty(t, state.Items)
}

func TestFingerprint(t *testing.T) {
	base := Request{Catalog: catalog.DefaultMenu(), Preferences: models.DefaultPreferences()}
	require.Equal(t, Fingerprint(base), Fingerprint(base))

	reordered := models.DefaultPreferences()
	reordered.Dietary = []string{"vegetarian"}
	assert.Equal(t, Fingerprint(base), Fingerprint(Request{Catalog: catalog.DefaultMenu(), Preferences: reordered}))

	changed := models.DefaultPreferences()
	changed.PriceRange.Max = 20
	assert.NotEqual(t, Fingerprint(base), Fingerprint(Request{Catalog: catalog.DefaultMenu(), Preferences: changed}))

	assert.NotEqual(t, Fingerprint(base), Fingerprint(Request{Catalog: catalog.DefaultMenu()}))

	withHistory := base
	withHistory.History = []models.Order{{ID: "o1", Items: []models.OrderItem{{MenuItemID: "1"}}}}
	assert.NotEqual(t, Fingerprint(base), Fingerprint(withHistory))
}
