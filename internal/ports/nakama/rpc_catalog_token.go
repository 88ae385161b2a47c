package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"pokebattle/internal/app"
	"pokebattle/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// catalogTokenService is initialized lazily from config plus the runtime
// environment. Tests may replace it directly.
var catalogTokenService *app.CatalogTokenService

// RpcGetCatalogToken mints a read-scoped token for the card catalogue API.
// The subject is always the authenticated caller; the payload is unused.
func RpcGetCatalogToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", 16) // UNAUTHENTICATED
	}

	if catalogTokenService == nil {
		cat := config.GetCatalog()
		if cat == nil {
			return "", runtime.NewError("Catalogue is not configured", 12) // UNIMPLEMENTED
		}

		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		secret := env["pokebattle_catalog_secret"]
		if secret == "" {
			logger.Warn("RpcGetCatalogToken: Catalogue secret missing from env.")
			return "", runtime.NewError("Catalogue is not configured", 12)
		}
		catalogTokenService = app.NewCatalogTokenService(secret, cat.Issuer, cat.Audience)
	}

	token, err := catalogTokenService.GenerateToken(userID, app.CatalogTokenActionRead)
	if err != nil {
		logger.Error("RpcGetCatalogToken [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	resBytes, _ := json.Marshal(CatalogTokenResponse{Token: token})
	return string(resBytes), nil
}
