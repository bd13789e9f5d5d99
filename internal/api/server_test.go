package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbite/internal/api"
	"smartbite/internal/catalog"
	"smartbite/internal/monitoring"
	"smartbite/internal/session"
	"smartbite/internal/voice"
)

func newTestServer(t *testing.T) *api.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics(nil)
	menu := catalog.NewStaticRepository(catalog.DefaultMenu())
	narrator := voice.NewNarrator(true, voice.DefaultSettings())

	sessions, err := session.NewManager(16, session.Dependencies{
		Catalog:  menu,
		Narrator: narrator,
		Metrics:  metrics,
	})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	return api.NewServer(api.Options{
		Catalog:  menu,
		Sessions: sessions,
		Narrator: narrator,
		Metrics:  metrics,
	})
}

func perform(t *testing.T, server *api.Server, method, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(api.SessionHeader, sessionID)
	}

	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type cartResponse struct {
	Items []struct {
		ID                  string  `json:"id"`
		Quantity            int     `json:"quantity"`
		SpecialInstructions string  `json:"special_instructions"`
		Price               float64 `json:"price"`
	} `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	decode(t, w, &response)
	assert.Equal(t, "ok", response["status"])
}

func TestListMenu(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 8},
		{"?category=all", 8},
		{"?category=desserts", 2},
		{"?dietary=vegan", 1},
		{"?search=salad", 2},
		{"?search=SALMON&category=mains", 1},
		{"?search=nothing-like-this", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := perform(t, server, "GET", "/api/v1/menu"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var response struct {
				Items      []map[string]interface{} `json:"items"`
				Categories []string                 `json:"categories"`
			}
			decode(t, w, &response)
			assert.Len(t, response.Items, tt.want)
			assert.Contains(t, response.Categories, "mains")
		})
	}
}

func TestGetMenuItem(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "GET", "/api/v1/menu/4", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var item map[string]interface{}
	decode(t, w, &item)
	assert.Equal(t, "Chocolate Lava Cake", item["name"])

	w = perform(t, server, "GET", "/api/v1/menu/404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartLifecycle(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(api.SessionHeader)
	require.NotEmpty(t, sessionID)

	w = perform(t, server, "POST", "/api/v1/cart/items", sessionID, map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sessionID, w.Header().Get(api.SessionHeader))

	var cart cartResponse
	decode(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.ItemCount)
	assert.InDelta(t, 49.98, cart.Total, 0.001)

	w = perform(t, server, "PUT", "/api/v1/cart/items/1", sessionID, map[string]interface{}{
		"quantity":             3,
		"special_instructions": "no onions",
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &cart)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, "no onions", cart.Items[0].SpecialInstructions)

	w = perform(t, server, "PUT", "/api/v1/cart/items/1", sessionID, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, server, "PUT", "/api/v1/cart/items/1", sessionID, map[string]interface{}{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	cart = cartResponse{}
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.Total)

	perform(t, server, "POST", "/api/v1/cart/items", sessionID, map[string]string{"id": "2"})
	perform(t, server, "POST", "/api/v1/cart/items", sessionID, map[string]string{"id": "3"})
	w = perform(t, server, "DELETE", "/api/v1/cart/items/2", sessionID, nil)
	cart = cartResponse{}
	decode(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "3", cart.Items[0].ID)

	w = perform(t, server, "DELETE", "/api/v1/cart", sessionID, nil)
	cart = cartResponse{}
	decode(t, w, &cart)
	assert.Equal(t, 0, cart.ItemCount)
}

func TestAddUnknownItem(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{"id": "99"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionsAreIsolated(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{"id": "1"})
	first := w.Header().Get(api.SessionHeader)

	w = perform(t, server, "GET", "/api/v1/cart", "", nil)
	second := w.Header().Get(api.SessionHeader)
	assert.NotEqual(t, first, second)

	var cart cartResponse
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)
}

func TestCheckout(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/orders/checkout", "", map[string]interface{}{
		"customer": map[string]string{"name": "Ada"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	sessionID := w.Header().Get(api.SessionHeader)

	perform(t, server, "POST", "/api/v1/cart/items", sessionID, map[string]string{"id": "1"})

	w = perform(t, server, "GET", "/api/v1/orders/summary", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		Summary struct {
			Subtotal    float64 `json:"subtotal"`
			Tax         float64 `json:"tax"`
			DeliveryFee float64 `json:"delivery_fee"`
			Total       float64 `json:"total"`
		} `json:"summary"`
	}
	decode(t, w, &summary)
	assert.InDelta(t, 24.99, summary.Summary.Subtotal, 0.001)
	assert.InDelta(t, 3.99, summary.Summary.DeliveryFee, 0.001)
	assert.InDelta(t, summary.Summary.Subtotal+summary.Summary.Tax+summary.Summary.DeliveryFee, summary.Summary.Total, 0.011)

	w = perform(t, server, "POST", "/api/v1/orders/checkout", sessionID, map[string]interface{}{
		"customer": map[string]string{"name": "Ada", "email": "ada@example.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var order map[string]interface{}
	decode(t, w, &order)
	assert.Equal(t, "confirmed", order["status"])
	assert.NotEmpty(t, order["id"])

	w = perform(t, server, "GET", "/api/v1/cart", sessionID, nil)
	var cart cartResponse
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)

	w = perform(t, server, "GET", "/api/v1/orders", sessionID, nil)
	var orders struct {
		Orders []map[string]interface{} `json:"orders"`
	}
	decode(t, w, &orders)
	assert.Len(t, orders.Orders, 1)
}

func TestPreferencesDriveRecommendations(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "GET", "/api/v1/preferences", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(api.SessionHeader)

	w = perform(t, server, "PUT", "/api/v1/preferences", sessionID, map[string]interface{}{
		"dietary":            []string{"vegan"},
		"favoriteCategories": []string{},
		"priceRange":         map[string]float64{"min": 0, "max": 100},
	})
	require.Equal(t, http.StatusOK, w.Code)

	type feedState struct {
		Loading  bool                     `json:"loading"`
		Items    []map[string]interface{} `json:"items"`
		Strategy string                   `json:"strategy"`
	}

	var state feedState
	require.Eventually(t, func() bool {
		w := perform(t, server, "GET", "/api/v1/recommendations", sessionID, nil)
		state = feedState{}
		decode(t, w, &state)
		return !state.Loading && len(state.Items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "Artisan Salad", state.Items[0]["name"])
	assert.Equal(t, "rule_based", state.Strategy)

	w = perform(t, server, "PUT", "/api/v1/preferences", sessionID, map[string]interface{}{
		"priceRange": map[string]float64{"min": 30, "max": 10},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendOnce(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/recommendations", "", map[string]interface{}{
		"preferences": map[string]interface{}{
			"dietary":            []string{"vegetarian"},
			"favoriteCategories": []string{"mains"},
			"priceRange":         map[string]float64{"min": 10, "max": 30},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Fallback bool `json:"fallback"`
	}
	decode(t, w, &result)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Mediterranean Bowl", result.Items[0].Name)
	assert.Equal(t, "Margherita Pizza", result.Items[1].Name)
	assert.False(t, result.Fallback)

	w = perform(t, server, "POST", "/api/v1/recommendations", "", map[string]interface{}{})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Len(t, result.Items, 6)
}

func TestChat(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/chat", "", map[string]interface{}{
		"text":            "please add the tiramisu to my cart",
		"source":          "voice",
		"voice_supported": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(api.SessionHeader)

	var response struct {
		Reply struct {
			Text      string                 `json:"text"`
			Source    string                 `json:"source"`
			AddedItem map[string]interface{} `json:"added_item"`
			Narration map[string]interface{} `json:"narration"`
		} `json:"reply"`
		Cart cartResponse `json:"cart"`
	}
	decode(t, w, &response)
	assert.Equal(t, "cart", response.Reply.Source)
	assert.Equal(t, "Tiramisu", response.Reply.AddedItem["name"])
	assert.Contains(t, response.Reply.Text, "1 item(s)")
	assert.NotNil(t, response.Reply.Narration)
	assert.Equal(t, 1, response.Cart.ItemCount)

	w = perform(t, server, "POST", "/api/v1/chat", sessionID, map[string]interface{}{"text": "What are your hours?"})
	require.Equal(t, http.StatusOK, w.Code)
	response.Reply.Narration = nil
	decode(t, w, &response)
	assert.Equal(t, "keyword", response.Reply.Source)
	assert.Nil(t, response.Reply.Narration)

	w = perform(t, server, "POST", "/api/v1/chat", sessionID, map[string]interface{}{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, server, "GET", "/api/v1/chat/transcript", sessionID, nil)
	var transcript struct {
		Messages []struct {
			Author  string `json:"author"`
			Channel string `json:"channel"`
		} `json:"messages"`
		Count int `json:"count"`
	}
	decode(t, w, &transcript)
	require.Len(t, transcript.Messages, 5)
	assert.Equal(t, 5, transcript.Count)
	assert.Equal(t, "voice", transcript.Messages[1].Channel)
	assert.Equal(t, "text", transcript.Messages[3].Channel)
}

func TestReservations(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "GET", "/api/v1/reservations/slots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots struct {
		Slots []string `json:"slots"`
	}
	decode(t, w, &slots)
	assert.Len(t, slots.Slots, 10)
	assert.Equal(t, "5:00 PM", slots.Slots[0])

	valid := map[string]interface{}{
		"name":   "Ada Lovelace",
		"email":  "ada@example.com",
		"phone":  "555-0100",
		"date":   "2030-05-01",
		"time":   "7:30 PM",
		"guests": 4,
	}
	w = perform(t, server, "POST", "/api/v1/reservations", "", valid)
	require.Equal(t, http.StatusCreated, w.Code)
	var reservation map[string]interface{}
	decode(t, w, &reservation)
	assert.Equal(t, "confirmed", reservation["status"])
	assert.NotEmpty(t, reservation["id"])

	invalid := map[string]func(body map[string]interface{}){
		"slot":         func(b map[string]interface{}) { b["time"] = "11:00 PM" },
		"date":         func(b map[string]interface{}) { b["date"] = "next friday" },
		"bare at":      func(b map[string]interface{}) { b["email"] = "@" },
		"no domain":    func(b map[string]interface{}) { b["email"] = "a@" },
		"spaced email": func(b map[string]interface{}) { b["email"] = "not an email @ all" },
		"blank name":   func(b map[string]interface{}) { b["name"] = "  " },
		"no phone":     func(b map[string]interface{}) { delete(b, "phone") },
		"no guests":    func(b map[string]interface{}) { b["guests"] = 0 },
		"large party":  func(b map[string]interface{}) { b["guests"] = 21 },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			body := make(map[string]interface{}, len(valid))
			for k, v := range valid {
				body[k] = v
			}
			mutate(body)

			w := perform(t, server, "POST", "/api/v1/reservations", "", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestSentimentWithoutProviderIsNeutral(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/reviews/sentiment", "", map[string]string{"text": "Loved the lava cake"})
	require.Equal(t, http.StatusOK, w.Code)

	var sentiment struct {
		Sentiment string  `json:"sentiment"`
		Score     float64 `json:"score"`
	}
	decode(t, w, &sentiment)
	assert.Equal(t, "neutral", sentiment.Sentiment)
	assert.Equal(t, 0.5, sentiment.Score)
}

func TestVoiceSettings(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "GET", "/api/v1/voice/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Enabled  bool `json:"enabled"`
		Settings struct {
			Language string  `json:"lang"`
			Rate     float64 `json:"rate"`
		} `json:"settings"`
	}
	decode(t, w, &response)
	assert.True(t, response.Enabled)
	assert.Equal(t, "en-US", response.Settings.Language)
	assert.Equal(t, 0.9, response.Settings.Rate)
}

func TestAdminOverview(t *testing.T) {
	server := newTestServer(t)

	perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{"id": "1"})

	w := perform(t, server, "GET", "/api/v1/admin/overview", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var overview struct {
		Metrics        map[string]interface{} `json:"metrics"`
		ActiveSessions int                    `json:"active_sessions"`
		AIEnabled      bool                   `json:"ai_enabled"`
	}
	decode(t, w, &overview)
	assert.Equal(t, 1, overview.ActiveSessions)
	assert.False(t, overview.AIEnabled)
	assert.Equal(t, 1.0, overview.Metrics[monitoring.KeyCartMutations])
}

func TestEndSession(t *testing.T) {
	server := newTestServer(t)

	w := perform(t, server, "POST", "/api/v1/cart/items", "", map[string]string{"id": "1"})
	sessionID := w.Header().Get(api.SessionHeader)

	w = perform(t, server, "DELETE", "/api/v1/session", sessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, server, "GET", "/api/v1/cart", sessionID, nil)
	var cart cartResponse
	decode(t, w, &cart)
	assert.Empty(t, cart.Items)
}

func TestChatWebSocket(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NotEmpty(t, resp.Header.Get(api.SessionHeader))

	readFrame := func() api.Frame {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame api.Frame
		require.NoError(t, conn.ReadJSON(&frame))
		return frame
	}

	initial := readFrame()
	assert.Equal(t, api.FrameCart, initial.Type)
	require.NotNil(t, initial.Cart)
	assert.Equal(t, 0, initial.Cart.ItemCount)

	require.NoError(t, conn.WriteJSON(map[string]string{"text": "add a caesar salad to my order"}))

	var sawReply, sawCart bool
	for !(sawReply && sawCart) {
		frame := readFrame()
		switch frame.Type {
		case api.FrameReply:
			sawReply = true
			require.NotNil(t, frame.Reply)
			assert.Equal(t, "cart", string(frame.Reply.Source))
		case api.FrameCart:
			sawCart = true
			require.NotNil(t, frame.Cart)
			assert.Equal(t, 1, frame.Cart.ItemCount)
		default:
			t.Fatalf("unexpected frame %q", frame.Type)
		}
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame := readFrame()
	assert.Equal(t, api.FrameError, frame.Type)
}
