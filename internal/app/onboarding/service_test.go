package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
}

func (f fakeAccountPort) DisplayName(ctx context.Context, userID string) (string, error) {
	return "", errors.New("not implemented")
}

func (f fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return f.updateErr
}

type fakeStarterDeckPort struct {
	grantErr error
	grants   []starterDeckCall
	granted  bool
}

type starterDeckCall struct {
	userID  string
	cardIDs []string
}

func (f *fakeStarterDeckPort) GrantStarterDeckOnce(ctx context.Context, userID string, cardIDs []string) (bool, error) {
	f.grants = append(f.grants, starterDeckCall{
		userID:  userID,
		cardIDs: cardIDs,
	})
	if f.grantErr != nil {
		return false, f.grantErr
	}
	return f.granted, nil
}

func TestOnboardNewUser_GrantsStarterDeck(t *testing.T) {
	decks := &fakeStarterDeckPort{granted: true}
	service := NewService(fakeAccountPort{}, decks, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}

	if len(decks.grants) != 1 {
		t.Fatalf("Expected 1 starter deck call, got %d", len(decks.grants))
	}
	if len(decks.grants[0].cardIDs) != len(starterDeckCardIDs) {
		t.Fatalf("Expected %d starter cards, got %d", len(starterDeckCardIDs), len(decks.grants[0].cardIDs))
	}
	if !result.StarterDeckGranted {
		t.Fatal("Expected starter deck to be marked as granted")
	}
}

func TestOnboardNewUser_AccountUpdateFailureStillGrantsDeck(t *testing.T) {
	decks := &fakeStarterDeckPort{granted: true}
	service := NewService(fakeAccountPort{updateErr: errors.New("update failed")}, decks, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}

	if len(decks.grants) != 1 {
		t.Fatalf("Expected 1 starter deck call, got %d", len(decks.grants))
	}
	if !result.StarterDeckGranted {
		t.Fatal("Expected starter deck to be marked as granted")
	}
}

func TestOnboardNewUser_StarterDeckFailureReturnsError(t *testing.T) {
	service := NewService(fakeAccountPort{}, &fakeStarterDeckPort{grantErr: errors.New("storage failed")}, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when starter deck grant fails")
	}
}

func TestOnboardNewUser_StarterDeckAlreadyGranted(t *testing.T) {
	decks := &fakeStarterDeckPort{granted: false}
	service := NewService(fakeAccountPort{}, decks, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.StarterDeckGranted {
		t.Fatal("Expected starter deck to be marked as already granted")
	}
}
