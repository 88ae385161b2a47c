package domain

// Status represents the lifecycle stage of a match.
type Status string

const (
	// StatusWaiting is the pre-game state with a single player waiting for an opponent.
	StatusWaiting Status = "waiting"
	// StatusActive is the in-game state with both players present.
	StatusActive Status = "active"
	// StatusFinished is the terminal state after a win, concession or disconnect.
	StatusFinished Status = "finished"
)

// Phase is the sub-state of an active match.
type Phase string

const (
	// PhaseSelect is the phase where players promote active cards.
	PhaseSelect Phase = "select"
	// PhaseAttack is the phase where combat is allowed.
	PhaseAttack Phase = "attack"
)

// CardStatusKO marks a knocked-out card instance. KO'd instances are inert:
// they cannot attack, be promoted, or be targeted meaningfully.
const CardStatusKO = "ko"

// AttackStats is one declared attack on a catalogue card.
type AttackStats struct {
	Name   string `json:"name"`
	Damage int    `json:"damage"`
	Cost   string `json:"cost,omitempty"`
}

// CardStats are the static catalogue stats for a card. The catalogue
// service owns these; the engine only reads them.
type CardStats struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Rarity      string        `json:"rarity,omitempty"`
	Type        string        `json:"type,omitempty"`
	HP          int           `json:"hp"`
	Attacks     []AttackStats `json:"attacks"`
	Weakness    []string      `json:"weakness,omitempty"`
	Resistance  []string      `json:"resistance,omitempty"`
	RetreatCost int           `json:"retreat_cost,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
}

// CardInstance is a single copy of a catalogue card inside one match.
// CurrentHP starts at the catalogue hit-point value and only ever goes down.
type CardInstance struct {
	CardID    string    `json:"card_id"`
	DeckID    string    `json:"deck_id,omitempty"`
	Card      CardStats `json:"card"`
	CurrentHP int       `json:"currentHp"`
	Status    string    `json:"status,omitempty"` // "" or CardStatusKO
}

// Player holds per-player state inside a match.
type Player struct {
	UserID string
	Deck   []CardInstance // declared deck, in the order the client submitted it
	Hand   []CardInstance
	Board  []CardInstance // cards played to the bench
	Active *CardInstance
}

// MatchState holds the authoritative state for one two-player battle.
type MatchState struct {
	Status Status
	Phase  Phase

	Players map[string]*Player // userId -> player
	Order   []string           // join order; Order[0] joined first

	TurnUserID string
}

// NewMatchState returns an empty match waiting for players.
func NewMatchState() *MatchState {
	return &MatchState{
		Status:  StatusWaiting,
		Phase:   PhaseSelect,
		Players: map[string]*Player{},
	}
}
