package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"pokebattle/internal/app"
	"pokebattle/internal/config"
	"pokebattle/internal/domain"
	"pokebattle/internal/ports"
	"pokebattle/internal/ports/catalog"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the runtime state for one battle room: the authoritative
// domain state plus the connection bookkeeping the dispatcher needs.
type MatchState struct {
	Battle    *domain.MatchState
	CreatedAt int64

	Presences    map[string]runtime.Presence      // userId -> presence for targeted messaging
	PendingDecks map[string][]domain.CardInstance // decks accepted at join-attempt, consumed at join

	App      *app.Service
	Accounts ports.AccountPort
	Catalog  ports.CatalogPort // nil when no catalogue is configured
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing battle match handler.")

	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Battle:       domain.NewMatchState(),
		CreatedAt:    time.Now().Unix(),
		Presences:    make(map[string]runtime.Presence),
		PendingDecks: make(map[string][]domain.CardInstance),
		App:          app.NewService(nil),
		Accounts:     NewNakamaAccountAdapter(nk),
	}

	// The catalogue collaborator is optional: without it the engine keeps
	// the source behavior of trusting client-declared card stats.
	if cat := config.GetCatalog(); cat != nil {
		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		secret := env["pokebattle_catalog_secret"]
		var tokens *app.CatalogTokenService
		if secret != "" {
			tokens = app.NewCatalogTokenService(secret, cat.Issuer, cat.Audience)
		}
		state.Catalog = catalog.NewClient(cat.BaseURL, tokens)
	}

	labelBytes, err := json.Marshal(domain.ComputeLabel(state.Battle, state.CreatedAt))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

// MatchJoinAttempt validates a join before any state is created: identity,
// capacity and the declared deck. A rejected attempt leaves no session.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	s, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if s.Battle.Status != domain.StatusWaiting {
		return state, false, "match_in_progress"
	}
	if len(s.Battle.Players)+len(s.PendingDecks) >= app.MaxPlayersPerMatch {
		return state, false, "match_full"
	}

	uid := presence.GetUserId()
	// The join payload's userId is accepted but never trusted: it must agree
	// with the authenticated session.
	if claimed := metadata[JoinMetadataUserID]; claimed != "" && claimed != uid {
		logger.Warn("MatchJoinAttempt: User %s claimed identity %s.", uid, claimed)
		return state, false, "identity_mismatch"
	}

	var deck []domain.CardInstance
	if err := json.Unmarshal([]byte(metadata[JoinMetadataDeck]), &deck); err != nil {
		logger.Warn("MatchJoinAttempt: User %s sent an unreadable deck: %v", uid, err)
		return state, false, "invalid_deck"
	}
	if err := app.ValidateDeck(deck, config.GetMinDeckSize()); err != nil {
		logger.Warn("MatchJoinAttempt: User %s deck rejected: %v", uid, err)
		return state, false, "deck_too_small"
	}

	s.PendingDecks[uid] = deck
	return s, true, ""
}

// MatchJoin admits validated players. The first joiner waits; the second
// activates the match, which deals hands and assigns the first turn.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		deck := s.PendingDecks[uid]
		delete(s.PendingDecks, uid)

		mh.resolveDeckStats(ctx, s, logger, deck)
		s.Presences[uid] = p

		events, err := s.App.PlayerJoined(s.Battle, &domain.Player{UserID: uid, Deck: deck}, config.GetInitialHandSize())
		if err != nil {
			logger.Warn("MatchJoin: User %s rejected: %v", uid, err)
			mh.sendError(s, dispatcher, logger, uid, err.Error())
			_ = dispatcher.MatchKick([]runtime.Presence{p})
			delete(s.Presences, uid)
			continue
		}

		for _, ev := range events {
			mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
		}
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// resolveDeckStats re-resolves client-declared cards against the catalogue
// when one is configured, overriding whatever stats the client supplied.
// Lookups are best-effort: an unreachable catalogue falls back to the
// declared stats rather than blocking the join.
func (mh *matchHandler) resolveDeckStats(ctx context.Context, s *MatchState, logger runtime.Logger, deck []domain.CardInstance) {
	if s.Catalog == nil {
		return
	}
	for i := range deck {
		catalogID := deck[i].Card.ID
		if catalogID == "" {
			catalogID = deck[i].CardID
		}
		stats, err := s.Catalog.GetCard(ctx, catalogID)
		if err != nil {
			logger.Warn("resolveDeckStats: Keeping declared stats for %s: %v", catalogID, err)
			continue
		}
		deck[i].Card = *stats
		deck[i].CurrentHP = stats.HP
	}
}

// MatchLeave removes players from the battle. Leaving is terminal: the
// remaining player (if any) is declared winner, and an empty room is
// dropped from the match registry.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)
		delete(s.PendingDecks, uid)

		events := s.App.PlayerLeft(s.Battle, uid)
		for _, ev := range events {
			mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
		}
		logger.Debug("MatchLeave: User %s left the battle.", uid)
	}

	if len(s.Battle.Players) == 0 {
		logger.Info("MatchLeave: Terminating drained match.")
		return nil
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLoop routes every inbound message through the battle service.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		uid := msg.GetUserId()
		if _, known := s.Battle.Players[uid]; !known {
			mh.sendError(s, dispatcher, logger, uid, "you are not part of this match")
			continue
		}

		switch msg.GetOpCode() {
		case OpChooseActiveCard:
			mh.handleChooseActiveCard(ctx, s, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, s, dispatcher, logger, msg)
		case OpAttack:
			mh.handleAttack(ctx, s, dispatcher, logger, msg)
		case OpEndTurn:
			mh.handleEndTurn(ctx, s, dispatcher, logger, msg)
		case OpNoBattlers:
			mh.handleNoBattlers(ctx, s, dispatcher, logger, msg)
		case OpForceDisconnect:
			mh.handleForceDisconnect(ctx, s, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return s
}

// verifyIdentity rejects payloads whose embedded userId disagrees with the
// authenticated sender. Empty claims are fine; the presence is the truth.
func (mh *matchHandler) verifyIdentity(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID, claimedID string) bool {
	if claimedID != "" && claimedID != senderID {
		logger.Warn("verifyIdentity: User %s sent a payload claiming to be %s.", senderID, claimedID)
		mh.sendError(s, dispatcher, logger, senderID, "payload identity does not match session")
		return false
	}
	return true
}

func (mh *matchHandler) handleChooseActiveCard(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request ChooseActiveCardRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleChooseActiveCard: Invalid request from %s: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, "invalid choose_active_card payload")
		return
	}
	if !mh.verifyIdentity(s, dispatcher, logger, senderID, request.UserID) {
		return
	}

	events, err := s.App.ChooseActiveCard(s.Battle, senderID, request.Card.CardID)
	if err != nil {
		logger.Warn("handleChooseActiveCard: User %s failed: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request PlayCardRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handlePlayCard: Invalid request from %s: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, "invalid play_card payload")
		return
	}

	events, err := s.App.PlayCard(s.Battle, senderID, request.CardID)
	if err != nil {
		logger.Warn("handlePlayCard: User %s failed to play %s: %v", senderID, request.CardID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleAttack(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request AttackRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleAttack: Invalid request from %s: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, "invalid attack payload")
		return
	}
	if !mh.verifyIdentity(s, dispatcher, logger, senderID, request.UserID) {
		return
	}

	events, err := s.App.Attack(s.Battle, senderID)
	if err != nil {
		logger.Warn("handleAttack: User %s failed: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleEndTurn(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request EndTurnRequest
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleEndTurn: Invalid request from %s: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, "invalid end_turn payload")
		return
	}
	if !mh.verifyIdentity(s, dispatcher, logger, senderID, request.UserID) {
		return
	}

	events, err := s.App.EndTurn(s.Battle, senderID)
	if err != nil {
		logger.Warn("handleEndTurn: User %s failed: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) handleNoBattlers(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	events, err := s.App.NoBattlers(s.Battle, senderID)
	if err != nil {
		logger.Warn("handleNoBattlers: User %s failed: %v", senderID, err)
		mh.sendError(s, dispatcher, logger, senderID, err.Error())
		return
	}
	for _, ev := range events {
		mh.broadcastEvent(ctx, s, dispatcher, logger, ev)
	}
	mh.updateLabel(s, dispatcher, logger)
}

// handleForceDisconnect acknowledges the leaver, then kicks them so the
// regular MatchLeave path settles the match for the opponent.
func (mh *matchHandler) handleForceDisconnect(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	mh.broadcastEvent(ctx, s, dispatcher, logger, app.Event{
		Kind:       app.EventMatchEnd,
		Payload:    app.MatchEndPayload{Message: "You left the match."},
		Recipients: []string{senderID},
	})

	if p, ok := s.Presences[senderID]; ok {
		if err := dispatcher.MatchKick([]runtime.Presence{p}); err != nil {
			logger.Error("handleForceDisconnect: Failed to kick %s: %v", senderID, err)
		}
	}
}

// broadcastEvent translates a battle event into a wire message and resolves
// its recipients: one player, the opponent, or the whole room. Opponents
// are resolved from the match's own player list, never by broadcasting and
// filtering client-side.
func (mh *matchHandler) broadcastEvent(ctx context.Context, s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	var opCode int64
	var payload any

	switch ev.Kind {
	case app.EventJoinedMatch:
		opCode = OpJoinedMatch
		payload = JoinedMatchEvent{Success: true, MatchID: matchID}
	case app.EventMatchReady:
		opCode = OpMatchReady
		p := ev.Payload.(app.MatchReadyPayload)
		firstTurn := "opponent"
		if p.FirstTurn {
			firstTurn = "you"
		}
		payload = MatchReadyEvent{
			MatchID:          matchID,
			Players:          mh.playerInfos(ctx, s, logger),
			YourHand:         p.Hand,
			OpponentHandSize: p.OpponentHandSize,
			FirstTurn:        firstTurn,
			Board:            BoardView{Player: []domain.CardInstance{}, Opponent: []domain.CardInstance{}},
		}
	case app.EventActiveCardChosen:
		opCode = OpActiveCardChosen
		p := ev.Payload.(app.ActiveCardChosenPayload)
		payload = ActiveCardChosenEvent{ActiveCards: p.ActiveCards}
	case app.EventOpponentCardPlayed:
		opCode = OpOpponentCardPlayed
		p := ev.Payload.(app.CardPlayedPayload)
		payload = p.Card
	case app.EventOpponentDrawCard:
		opCode = OpOpponentDrawCard
		payload = struct{}{}
	case app.EventAttackResolved:
		opCode = OpAttackResolved
		p := ev.Payload.(app.AttackResolvedPayload)
		payload = AttackEvent{
			Player1Card:    p.OwnCard,
			Player2Card:    p.OpponentCard,
			AttackerUserID: p.AttackerUserID,
			Damage:         p.Damage,
		}
	case app.EventTurnChanged:
		opCode = OpTurnChanged
		p := ev.Payload.(app.TurnChangedPayload)
		payload = TurnChangedEvent{
			NextTurn:       p.NextTurnUserID,
			EndedBy:        p.EndedBy,
			NextTurnPlayer: p.NextTurnUserID,
			Phase:          string(p.Phase),
		}
	case app.EventOpponentNoBattlers:
		opCode = OpOpponentNoBattlers
		payload = struct{}{}
	case app.EventYouHaveNoBattlers:
		opCode = OpYouHaveNoBattlers
		payload = struct{}{}
	case app.EventMatchEnd:
		opCode = OpMatchEnd
		p := ev.Payload.(app.MatchEndPayload)
		payload = MatchEndEvent{MatchID: matchID, Message: p.Message}
	default:
		logger.Warn("broadcastEvent: Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcastEvent: Failed to marshal %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to the whole room).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := s.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Every intended recipient is gone; do not leak the event to the room.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("broadcastEvent: Failed to dispatch %v: %v", ev.Kind, err)
	}
}

// playerInfos builds the roster for match_ready, resolving display names
// through the account port with the raw user id as fallback.
func (mh *matchHandler) playerInfos(ctx context.Context, s *MatchState, logger runtime.Logger) []PlayerInfo {
	infos := make([]PlayerInfo, 0, len(s.Battle.Order))
	for _, uid := range s.Battle.Order {
		name := uid
		if p, ok := s.Presences[uid]; ok && p.GetUsername() != "" {
			name = p.GetUsername()
		}
		if s.Accounts != nil {
			if display, err := s.Accounts.DisplayName(ctx, uid); err == nil && display != "" {
				name = display
			} else if err != nil {
				logger.Debug("playerInfos: No display name for %s: %v", uid, err)
			}
		}
		infos = append(infos, PlayerInfo{UserID: uid, DisplayName: name})
	}
	return infos
}

// sendError sends an ErrorEvent to a single user. Failures are local to one
// event; nothing here mutates battle state.
func (mh *matchHandler) sendError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID, message string) {
	bytes, err := json.Marshal(ErrorEvent{Message: message})
	if err != nil {
		logger.Error("sendError: Failed to marshal: %v", err)
		return
	}

	presence, ok := s.Presences[userID]
	if !ok {
		logger.Warn("sendError: Cannot notify %s: presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendError: Failed to dispatch: %v", err)
	}
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(domain.ComputeLabel(s.Battle, s.CreatedAt))
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

// MatchTerminate runs on match shutdown.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
