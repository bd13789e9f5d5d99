package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

const sessionHeader = "X-Session-ID"

// ApiClient handles requests to the SmartBite API and keeps the session id
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string

	mu        sync.Mutex
	sessionID string
}

// NewApiClient creates a new API client
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("SMARTBITE_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &ApiClient{
		httpClient: &http.Client{
			// delegated chat answers may take as long as the server's LLM timeout
			Timeout: 30 * time.Second,
		},
		BaseURL: baseURL,
	}
}

// CheckHealth checks if the API is up and running
func (c *ApiClient) CheckHealth() error {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API health check failed with status code: %d", resp.StatusCode)
	}
	return nil
}

// MenuItem is a dish on the menu
type MenuItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Dietary     []string `json:"dietary"`
	Rating      float64  `json:"rating"`
}

// CartLine is one line of the cart
type CartLine struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// Cart is the session cart
type Cart struct {
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// Summary is the cart with tax and delivery applied
type Summary struct {
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// Customer holds contact details for checkout
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Order is a checked-out cart
type Order struct {
	ID     string  `json:"id"`
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}

// Recommendations is the state of the session's recommendation feed
type Recommendations struct {
	Loading  bool       `json:"loading"`
	Items    []MenuItem `json:"items"`
	Strategy string     `json:"strategy"`
	Fallback bool       `json:"fallback"`
}

// ChatReply is the bot's answer to one message
type ChatReply struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// GetMenu retrieves the menu, optionally filtered by a search term
func (c *ApiClient) GetMenu(search string) ([]MenuItem, error) {
	path := "/api/v1/menu"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}

	var response struct {
		Items []MenuItem `json:"items"`
	}
	if err := c.do("GET", path, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// GetCart retrieves the session cart
func (c *ApiClient) GetCart() (*Cart, error) {
	var cart Cart
	if err := c.do("GET", "/api/v1/cart", nil, http.StatusOK, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds one unit of a menu item
func (c *ApiClient) AddToCart(id string) (*Cart, error) {
	var cart Cart
	if err := c.do("POST", "/api/v1/cart/items", map[string]string{"id": id}, http.StatusOK, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateQuantity sets the quantity of a cart line; zero removes it
func (c *ApiClient) UpdateQuantity(id string, quantity int) (*Cart, error) {
	var cart Cart
	body := map[string]int{"quantity": quantity}
	if err := c.do("PUT", "/api/v1/cart/items/"+id, body, http.StatusOK, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetSummary retrieves the order summary for the current cart
func (c *ApiClient) GetSummary() (*Summary, error) {
	var response struct {
		Summary Summary `json:"summary"`
	}
	if err := c.do("GET", "/api/v1/orders/summary", nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response.Summary, nil
}

// Checkout places the order for the current cart
func (c *ApiClient) Checkout(customer Customer) (*Order, error) {
	var order Order
	body := map[string]Customer{"customer": customer}
	if err := c.do("POST", "/api/v1/orders/checkout", body, http.StatusCreated, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetRecommendations retrieves the session's recommendation feed
func (c *ApiClient) GetRecommendations() (*Recommendations, error) {
	var recs Recommendations
	if err := c.do("GET", "/api/v1/recommendations", nil, http.StatusOK, &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// SendChat sends one chat message
func (c *ApiClient) SendChat(text string) (*ChatReply, error) {
	var response struct {
		Reply ChatReply `json:"reply"`
	}
	body := map[string]string{"text": text, "source": "text"}
	if err := c.do("POST", "/api/v1/chat", body, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response.Reply, nil
}

func (c *ApiClient) do(method, path string, body interface{}, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.sessionID != "" {
		req.Header.Set(sessionHeader, c.sessionID)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(sessionHeader); id != "" {
		c.mu.Lock()
		c.sessionID = id
		c.mu.Unlock()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != want {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
