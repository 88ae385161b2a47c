package app

// InitialHandSize is how many cards each player is dealt when the match
// pairs up: the first N cards of their declared deck, in declared order.
const InitialHandSize = 5

// MinDeckSize is the smallest deck accepted at join time. Keep this
// centralized so tests or local runs can adjust the rule without touching
// multiple call sites.
const MinDeckSize = 5

// MaxPlayersPerMatch caps the match room at two battlers.
const MaxPlayersPerMatch = 2
