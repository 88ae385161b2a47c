package app

import "pokebattle/internal/domain"

// EventKind identifies emitted battle events for dispatch.
type EventKind string

const (
	EventJoinedMatch        EventKind = "joined_match"
	EventMatchReady         EventKind = "match_ready"
	EventActiveCardChosen   EventKind = "active_card_chosen"
	EventOpponentCardPlayed EventKind = "opponent_card_played"
	EventOpponentDrawCard   EventKind = "opponent_draw_card"
	EventAttackResolved     EventKind = "attack"
	EventTurnChanged        EventKind = "turn_changed"
	EventOpponentNoBattlers EventKind = "opponent_no_battlers"
	EventYouHaveNoBattlers  EventKind = "you_have_no_battlers"
	EventMatchEnd           EventKind = "match_end"
)

// Event is a battle event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast to the match room
}

// JoinedMatchPayload acknowledges a solo join while waiting for an opponent.
type JoinedMatchPayload struct {
	UserID string
}

// MatchReadyPayload is the personalized pairing-complete view for one player.
type MatchReadyPayload struct {
	UserID           string
	Hand             []domain.CardInstance
	OpponentHandSize int
	FirstTurn        bool // true when this recipient holds the first turn
}

// ActiveCardChosenPayload carries every player's current active card.
type ActiveCardChosenPayload struct {
	ActiveCards map[string]domain.CardInstance
}

// CardPlayedPayload notifies the opponent of a card played to the bench.
type CardPlayedPayload struct {
	UserID string
	Card   domain.CardInstance
}

// AttackResolvedPayload is one recipient's own-perspective view of an attack.
type AttackResolvedPayload struct {
	RecipientUserID string
	OwnCard         domain.CardInstance
	OpponentCard    domain.CardInstance
	AttackerUserID  string
	Damage          int
}

// TurnChangedPayload announces the new turn holder to the match room.
type TurnChangedPayload struct {
	NextTurnUserID string
	EndedBy        string
	Phase          domain.Phase
}

// MatchEndPayload is a terminal notification for one player.
type MatchEndPayload struct {
	WinnerUserID string
	Message      string
}
