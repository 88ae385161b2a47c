package nakama

import (
	"context"
	"fmt"

	"pokebattle/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaAccountAdapter implements ports.AccountPort using Nakama's account API.
type NakamaAccountAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaAccountAdapter creates a new account adapter.
func NewNakamaAccountAdapter(nk runtime.NakamaModule) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// DisplayName resolves a user's display name, falling back to their username
// when no display name is set.
func (a *NakamaAccountAdapter) DisplayName(ctx context.Context, userID string) (string, error) {
	if a.nk == nil {
		return "", fmt.Errorf("nakama module unavailable")
	}
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("account lookup for %s: %w", userID, err)
	}
	user := account.GetUser()
	if user == nil {
		return "", fmt.Errorf("account %s has no user record", userID)
	}
	if name := user.GetDisplayName(); name != "" {
		return name, nil
	}
	return user.GetUsername(), nil
}

// UpdateProfile updates the account username and display name in Nakama.
func (a *NakamaAccountAdapter) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	if a.nk == nil {
		return fmt.Errorf("nakama module unavailable")
	}
	return a.nk.AccountUpdateId(ctx, userID, username, nil, displayName, "", "", "", "")
}

var _ ports.AccountPort = (*NakamaAccountAdapter)(nil)
