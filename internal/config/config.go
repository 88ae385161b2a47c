package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// CatalogConfig points the engine at the external card catalogue API.
type CatalogConfig struct {
	BaseURL  string `json:"base_url"`
	Issuer   string `json:"issuer"`
	Audience string `json:"audience"`
}

type GameConfig struct {
	// InitialHandSize is how many cards are dealt from the top of each deck.
	InitialHandSize int `json:"initial_hand_size"`
	// MinDeckSize is the smallest deck accepted at join time.
	MinDeckSize int           `json:"min_deck_size"`
	Catalog     CatalogConfig `json:"catalog"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetInitialHandSize returns the configured opening hand size, or the safe
// default when no config was loaded.
func GetInitialHandSize() int {
	if cfg == nil || cfg.InitialHandSize <= 0 {
		return 5
	}
	return cfg.InitialHandSize
}

// GetMinDeckSize returns the configured deck minimum, or the safe default.
func GetMinDeckSize() int {
	if cfg == nil || cfg.MinDeckSize <= 0 {
		return 5
	}
	return cfg.MinDeckSize
}

// GetCatalog returns the catalogue settings, or nil when not configured.
func GetCatalog() *CatalogConfig {
	if cfg == nil || cfg.Catalog.BaseURL == "" {
		return nil
	}
	catalog := cfg.Catalog
	return &catalog
}
