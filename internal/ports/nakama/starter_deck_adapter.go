package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pokebattle/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	collectionCards = "cards"
	starterDeckKey  = "starter_deck_v1"
)

// NakamaStarterDeckAdapter grants the starter card collection using Nakama
// storage. The conditional write ("*" version) makes the grant once-only.
type NakamaStarterDeckAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStarterDeckAdapter creates a new starter deck adapter.
func NewNakamaStarterDeckAdapter(nk runtime.NakamaModule) *NakamaStarterDeckAdapter {
	return &NakamaStarterDeckAdapter{nk: nk}
}

// GrantStarterDeckOnce writes the starter card list for the user. A second
// grant is rejected by the storage version check and reported as granted=false.
func (a *NakamaStarterDeckAdapter) GrantStarterDeckOnce(ctx context.Context, userID string, cardIDs []string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if len(cardIDs) == 0 {
		return false, fmt.Errorf("cardIDs must not be empty")
	}

	record := map[string]interface{}{
		"card_ids":   cardIDs,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to marshal starter deck record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      collectionCards,
			Key:             starterDeckKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant starter deck: %w", err)
	}

	return true, nil
}

var _ ports.StarterDeckPort = (*NakamaStarterDeckAdapter)(nil)
