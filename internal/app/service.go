package app

import (
	"errors"
	"math/rand"
	"time"

	"pokebattle/internal/domain"
)

// Service contains battle use-cases operating on domain state. Every method
// mutates the match and returns the events to dispatch; callers never touch
// activeCards or card HP directly.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrMatchFull      = errors.New("match already has two players")
	ErrMatchNotActive = errors.New("match not active")
	ErrUnknownPlayer  = errors.New("player not found in match")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotAttackPhase = errors.New("match not in attack phase")
	ErrNoActiveCard   = errors.New("no active card")
	ErrCardNotInHand  = errors.New("card not in hand")
	ErrCardKnockedOut = errors.New("card is knocked out")
	ErrDeckTooSmall   = errors.New("deck has too few cards")
)

// ValidateDeck checks a declared deck before any state is created and
// normalizes each instance: HP starts at the catalogue value, status clear.
func ValidateDeck(deck []domain.CardInstance, minSize int) error {
	if minSize <= 0 {
		minSize = MinDeckSize
	}
	if len(deck) < minSize {
		return ErrDeckTooSmall
	}
	for i := range deck {
		deck[i].CurrentHP = deck[i].Card.HP
		deck[i].Status = ""
	}
	return nil
}

// PlayerJoined registers a player. With one player present the match keeps
// waiting; the second join activates the match, deals opening hands and
// assigns the first turn uniformly at random. handSize is how many cards to
// deal from the top of each declared deck.
func (s *Service) PlayerJoined(m *domain.MatchState, p *domain.Player, handSize int) ([]Event, error) {
	if m.Status == domain.StatusFinished {
		return nil, ErrMatchNotActive
	}
	if !m.AddPlayer(p) {
		return nil, ErrMatchFull
	}

	if len(m.Players) < MaxPlayersPerMatch {
		return []Event{{
			Kind:       EventJoinedMatch,
			Payload:    JoinedMatchPayload{UserID: p.UserID},
			Recipients: []string{p.UserID},
		}}, nil
	}

	// Pairing complete: deal and pick who goes first.
	m.Status = domain.StatusActive
	m.Phase = domain.PhaseSelect
	m.TurnUserID = m.Order[s.rng.Intn(len(m.Order))]

	for _, uid := range m.Order {
		pl := m.Players[uid]
		n := handSize
		if n > len(pl.Deck) {
			n = len(pl.Deck)
		}
		pl.Hand = append([]domain.CardInstance{}, pl.Deck[:n]...)
		pl.Deck = pl.Deck[n:]
	}

	events := make([]Event, 0, len(m.Order))
	for _, uid := range m.Order {
		opponent := m.Players[m.Opponent(uid)]
		events = append(events, Event{
			Kind: EventMatchReady,
			Payload: MatchReadyPayload{
				UserID:           uid,
				Hand:             m.Players[uid].Hand,
				OpponentHandSize: len(opponent.Hand),
				FirstTurn:        uid == m.TurnUserID,
			},
			Recipients: []string{uid},
		})
	}
	return events, nil
}

// ChooseActiveCard promotes a hand card to the active slot. Replacing an
// existing active returns it to the front of the hand. Promoting the card
// that is already active is a no-op rebroadcast.
func (s *Service) ChooseActiveCard(m *domain.MatchState, actorUserID, cardID string) ([]Event, error) {
	pl, err := activePlayer(m, actorUserID)
	if err != nil {
		return nil, err
	}

	if pl.Active == nil || pl.Active.CardID != cardID {
		rest, promoted, ok := domain.RemoveCardByID(pl.Hand, cardID)
		if !ok {
			return nil, ErrCardNotInHand
		}
		if promoted.KnockedOut() {
			return nil, ErrCardKnockedOut
		}
		if pl.Active != nil {
			rest = append([]domain.CardInstance{*pl.Active}, rest...)
		}
		pl.Hand = rest
		pl.Active = &promoted
	}

	m.RecomputePhase()

	return []Event{{
		Kind:    EventActiveCardChosen,
		Payload: ActiveCardChosenPayload{ActiveCards: m.ActiveCards()},
	}}, nil
}

// PlayCard moves a hand card to the player's bench and notifies both sides.
func (s *Service) PlayCard(m *domain.MatchState, actorUserID, cardID string) ([]Event, error) {
	pl, err := activePlayer(m, actorUserID)
	if err != nil {
		return nil, err
	}

	rest, played, ok := domain.RemoveCardByID(pl.Hand, cardID)
	if !ok {
		return nil, ErrCardNotInHand
	}
	pl.Hand = rest
	pl.Board = append(pl.Board, played)

	events := []Event{{
		Kind:       EventOpponentDrawCard,
		Recipients: []string{actorUserID},
	}}
	if opponent := m.Opponent(actorUserID); opponent != "" {
		events = append(events, Event{
			Kind:       EventOpponentCardPlayed,
			Payload:    CardPlayedPayload{UserID: actorUserID, Card: played},
			Recipients: []string{opponent},
		})
	}
	return events, nil
}

// Attack resolves one attack by the turn holder: damage is the first
// declared attack of the attacker's active card, subtracted from the
// defender's active card and floored at zero. Both sides receive the
// updated instances from their own perspective. When the defender is left
// without a viable battler the match ends on the spot.
func (s *Service) Attack(m *domain.MatchState, actorUserID string) ([]Event, error) {
	attacker, err := activePlayer(m, actorUserID)
	if err != nil {
		return nil, err
	}
	if m.TurnUserID != actorUserID {
		return nil, ErrNotYourTurn
	}
	if m.Phase != domain.PhaseAttack {
		return nil, ErrNotAttackPhase
	}

	defenderID := m.Opponent(actorUserID)
	defender, ok := m.Players[defenderID]
	if !ok || defender.Active == nil || attacker.Active == nil {
		return nil, ErrNoActiveCard
	}
	if attacker.Active.KnockedOut() {
		return nil, ErrCardKnockedOut
	}

	damage := domain.FirstAttackDamage(attacker.Active.Card)
	domain.ApplyDamage(defender.Active, damage)

	events := make([]Event, 0, 2)
	for _, uid := range m.Order {
		other := m.Players[m.Opponent(uid)]
		events = append(events, Event{
			Kind: EventAttackResolved,
			Payload: AttackResolvedPayload{
				RecipientUserID: uid,
				OwnCard:         *m.Players[uid].Active,
				OpponentCard:    *other.Active,
				AttackerUserID:  actorUserID,
				Damage:          damage,
			},
			Recipients: []string{uid},
		})
	}

	// Server-side win evaluation: a defender with no live active and no
	// live hand card has lost, without waiting for the client to notice.
	if !domain.HasViableBattler(defender) {
		events = append(events, s.concede(m, defenderID)...)
	}
	return events, nil
}

// EndTurn flips the turn to the opponent and recomputes the phase from the
// active-card slots.
func (s *Service) EndTurn(m *domain.MatchState, actorUserID string) ([]Event, error) {
	if _, err := activePlayer(m, actorUserID); err != nil {
		return nil, err
	}
	if m.TurnUserID != actorUserID {
		return nil, ErrNotYourTurn
	}

	m.TurnUserID = m.Opponent(actorUserID)
	m.RecomputePhase()

	return []Event{{
		Kind: EventTurnChanged,
		Payload: TurnChangedPayload{
			NextTurnUserID: m.TurnUserID,
			EndedBy:        actorUserID,
			Phase:          m.Phase,
		},
	}}, nil
}

// NoBattlers processes an explicit concession: the caller is the loser.
func (s *Service) NoBattlers(m *domain.MatchState, actorUserID string) ([]Event, error) {
	if _, err := activePlayer(m, actorUserID); err != nil {
		return nil, err
	}
	return s.concede(m, actorUserID), nil
}

// PlayerLeft removes a player. If exactly one player remains in a not-yet-
// finished match, that player wins. Returns the events to dispatch; the
// caller decides whether to drop the empty match.
func (s *Service) PlayerLeft(m *domain.MatchState, userID string) []Event {
	if _, ok := m.Players[userID]; !ok {
		return nil
	}
	wasFinished := m.Status == domain.StatusFinished
	m.RemovePlayer(userID)

	if len(m.Players) != 1 || wasFinished {
		return nil
	}

	winner := m.Order[0]
	m.Status = domain.StatusFinished
	return []Event{{
		Kind: EventMatchEnd,
		Payload: MatchEndPayload{
			WinnerUserID: winner,
			Message:      "Opponent disconnected. You win!",
		},
		Recipients: []string{winner},
	}}
}

// concede finishes the match with loser declared out of battlers. The
// winner and loser are told apart so each client renders its own outcome.
func (s *Service) concede(m *domain.MatchState, loserUserID string) []Event {
	m.Status = domain.StatusFinished

	events := []Event{{
		Kind:       EventYouHaveNoBattlers,
		Recipients: []string{loserUserID},
	}}
	if winner := m.Opponent(loserUserID); winner != "" {
		events = append(events, Event{
			Kind:       EventOpponentNoBattlers,
			Recipients: []string{winner},
		})
	}
	return events
}

func activePlayer(m *domain.MatchState, userID string) (*domain.Player, error) {
	if m.Status != domain.StatusActive {
		return nil, ErrMatchNotActive
	}
	pl, ok := m.Players[userID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return pl, nil
}
