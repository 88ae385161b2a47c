package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"pokebattle/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcCatalogToken, RpcGetCatalogToken)
}

// rpcQuickMatch finds the oldest waiting battle with a free seat, or creates
// a new one when none exists.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	// Find any match that is open and is our game.
	query := "+label.open:T +label.game:" + domain.GameName

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := 1 // exactly one player waiting for an opponent

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	// First-come-first-served: the longest-waiting match is paired first.
	if len(matches) > 0 {
		best := matches[0]
		bestCreated := labelCreatedAt(best.GetLabel().GetValue())
		for _, m := range matches[1:] {
			if created := labelCreatedAt(m.GetLabel().GetValue()); created < bestCreated {
				best, bestCreated = m, created
			}
		}

		resp := QuickMatchResponse{MatchID: best.MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create new match; seating happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNamePokeBattle, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcQuickMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

func labelCreatedAt(label string) int64 {
	var parsed domain.LabelPayload
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		return 1<<63 - 1
	}
	return parsed.CreatedAt
}
