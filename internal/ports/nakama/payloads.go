package nakama

import "pokebattle/internal/domain"

// Client -> Server request payloads. Field names mirror what the web client
// sends; embedded user ids are verified against the authenticated presence
// and never trusted on their own.

type ChooseActiveCardRequest struct {
	UserID string              `json:"userId,omitempty"`
	Card   domain.CardInstance `json:"card"`
}

type PlayCardRequest struct {
	CardID string `json:"cardId"`
}

type AttackRequest struct {
	UserID string `json:"userId,omitempty"`
	// PlayerPokemon/OpponentPokemon are what the client believes is on the
	// board. The server resolves the attack from its own state and ignores
	// the claimed instances beyond logging mismatches.
	PlayerPokemon   *domain.CardInstance `json:"playerPokemon,omitempty"`
	OpponentPokemon *domain.CardInstance `json:"opponentPokemon,omitempty"`
}

type EndTurnRequest struct {
	UserID string `json:"userId,omitempty"`
}

// Server -> Client event payloads.

type JoinedMatchEvent struct {
	Success bool   `json:"success"`
	MatchID string `json:"matchId"`
}

type PlayerInfo struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type BoardView struct {
	Player   []domain.CardInstance `json:"player"`
	Opponent []domain.CardInstance `json:"opponent"`
}

type MatchReadyEvent struct {
	MatchID          string                `json:"matchId"`
	Players          []PlayerInfo          `json:"players"`
	YourHand         []domain.CardInstance `json:"yourHand"`
	OpponentHandSize int                   `json:"opponentHandSize"`
	FirstTurn        string                `json:"firstTurn"` // "you" or "opponent"
	Board            BoardView             `json:"board"`
}

type ActiveCardChosenEvent struct {
	ActiveCards map[string]domain.CardInstance `json:"activeCards"`
}

type AttackEvent struct {
	// Player1Card is always the recipient's own card; Player2Card the
	// opponent's. Each player gets the battle from their own perspective.
	Player1Card    domain.CardInstance `json:"player1Card"`
	Player2Card    domain.CardInstance `json:"player2Card"`
	AttackerUserID string              `json:"attackerUserId"`
	Damage         int                 `json:"damage"`
}

type TurnChangedEvent struct {
	NextTurn       string `json:"nextTurn"`
	EndedBy        string `json:"endedBy"`
	NextTurnPlayer string `json:"nextTurnPlayer"`
	Phase          string `json:"phase"`
}

type MatchEndEvent struct {
	MatchID string `json:"matchId"`
	Message string `json:"message"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// RPC payloads.

type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

type CatalogTokenResponse struct {
	Token string `json:"token"`
}
