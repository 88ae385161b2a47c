package ports

import (
	"context"

	"pokebattle/internal/domain"
)

// CatalogPort defines the interface to the external card catalogue service.
type CatalogPort interface {
	// GetCard resolves a catalogue card id to its static stats.
	// Returns an error when the card does not exist or the catalogue is
	// unreachable; callers decide whether that is fatal.
	GetCard(ctx context.Context, cardID string) (*domain.CardStats, error)
}
