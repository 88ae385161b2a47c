package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pokebattle/internal/ports"
)

// starterDeckCardIDs are the catalogue ids granted to every new account.
// Stats live in the catalogue service; only the ids are stored here.
var starterDeckCardIDs = []string{
	"pikachu",
	"charmander",
	"squirtle",
	"bulbasaur",
	"eevee",
	"jigglypuff",
}

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// StarterDeckGranted is false when the deck was already granted earlier.
	StarterDeckGranted bool
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts     ports.AccountPort
	starterDecks ports.StarterDeckPort
	rng          *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/starterDecks must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, starterDecks ports.StarterDeckPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts:     accounts,
		starterDecks: starterDecks,
		rng:          rng,
	}
}

// OnboardNewUser initializes the profile and card collection for a newly
// created account. Returns a Result with any non-fatal issues and an error
// when the starter deck cannot be granted.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.starterDecks == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateTrainerName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the starter deck is what matters.
		result.ProfileUpdateErr = err
	}

	granted, err := s.starterDecks.GrantStarterDeckOnce(ctx, userID, starterDeckCardIDs)
	if err != nil {
		return result, fmt.Errorf("failed to grant starter deck: %w", err)
	}
	result.StarterDeckGranted = granted

	return result, nil
}

func (s *Service) generateTrainerName() string {
	adjectives := []string{"Brave", "Shiny", "Swift", "Clever", "Calm", "Mighty", "Witty", "Wild", "Bold", "Lucky"}
	nouns := []string{"Trainer", "Ranger", "Breeder", "Scout", "Catcher", "Champ", "Rookie", "Ace", "Drifter", "Wanderer"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
