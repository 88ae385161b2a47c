package ports

import "context"

// AccountPort defines the interface for account profile access.
type AccountPort interface {
	// DisplayName resolves a user id to a human-readable name.
	// Returns an error if the account lookup fails; callers fall back to
	// the raw user id.
	DisplayName(ctx context.Context, userID string) (string, error)

	// UpdateProfile applies a username and display name to the account.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
