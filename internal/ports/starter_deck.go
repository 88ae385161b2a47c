package ports

import "context"

// StarterDeckPort grants the starter card collection at most once per user.
type StarterDeckPort interface {
	// GrantStarterDeckOnce attempts to grant a one-time starter deck.
	// Returns granted=false when the deck was already granted.
	GrantStarterDeckOnce(ctx context.Context, userID string, cardIDs []string) (bool, error)
}
