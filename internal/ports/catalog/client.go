package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"pokebattle/internal/app"
	"pokebattle/internal/domain"
	"pokebattle/internal/ports"
)

// Client implements ports.CatalogPort against the card catalogue HTTP API.
// Requests carry a short-lived sync token so the catalogue can tell engine
// traffic from client traffic.
type Client struct {
	baseURL string
	tokens  *app.CatalogTokenService
	http    *http.Client

	mu    sync.Mutex
	cache map[string]*domain.CardStats
}

// NewClient builds a catalogue client. tokens may be nil for catalogues
// that accept anonymous reads.
func NewClient(baseURL string, tokens *app.CatalogTokenService) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   map[string]*domain.CardStats{},
	}
}

// GetCard resolves a catalogue card id to its static stats. Results are
// cached for the process lifetime; catalogue cards are immutable.
func (c *Client) GetCard(ctx context.Context, cardID string) (*domain.CardStats, error) {
	if cardID == "" {
		return nil, fmt.Errorf("card id is required")
	}

	c.mu.Lock()
	cached, ok := c.cache[cardID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(cardID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	if c.tokens != nil {
		token, err := c.tokens.GenerateToken("match-engine", app.CatalogTokenActionSync)
		if err != nil {
			return nil, fmt.Errorf("failed to mint catalog token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("card %s not found in catalog", cardID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for card %s", resp.StatusCode, cardID)
	}

	var stats domain.CardStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode catalog card: %w", err)
	}

	c.mu.Lock()
	c.cache[cardID] = &stats
	c.mu.Unlock()
	return &stats, nil
}

var _ ports.CatalogPort = (*Client)(nil)
