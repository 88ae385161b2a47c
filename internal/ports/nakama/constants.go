package nakama

const (
	// RpcQuickMatch is the RPC id clients call to find or create a waiting match.
	RpcQuickMatch = "quick_match"

	// RpcCatalogToken is the RPC id clients call for a card catalogue read token.
	RpcCatalogToken = "catalog_token"

	// MatchNamePokeBattle is the authoritative match handler name registered with Nakama.
	MatchNamePokeBattle = "pokebattle_match"
)

// Join metadata keys supplied by the client on socket match join.
const (
	JoinMetadataDeck   = "deck"
	JoinMetadataUserID = "userId"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpChooseActiveCard int64 = 1
	OpPlayCard         int64 = 2
	OpAttack           int64 = 3
	OpEndTurn          int64 = 4
	OpNoBattlers       int64 = 5
	OpForceDisconnect  int64 = 6

	// Server -> Client events
	OpJoinedMatch        int64 = 101 // solo acknowledgment while waiting
	OpMatchReady         int64 = 102 // send privately, personalized per player
	OpActiveCardChosen   int64 = 103
	OpOpponentCardPlayed int64 = 104
	OpOpponentDrawCard   int64 = 105
	OpAttackResolved     int64 = 106 // send privately, own-perspective cards
	OpTurnChanged        int64 = 107
	OpOpponentNoBattlers int64 = 108
	OpYouHaveNoBattlers  int64 = 109
	OpMatchEnd           int64 = 110
	OpError              int64 = 111
)
