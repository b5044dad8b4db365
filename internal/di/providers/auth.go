package providers

import (
	"github.com/samber/do/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/config"
	"github.com/nesvesk-vienas/nesvesk-server/internal/logger"
)

// AuthKey wraps the identity token key bytes.
type AuthKey []byte

// ProvideAuthKey loads the configured key or the one generated on first start.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Auth.TokenKeyHex, cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	cfg.Auth.TokenKey = key

	log.Info("Identity token key loaded",
		"configured", cfg.Auth.TokenKeyHex != "",
		"token_duration", cfg.Auth.TokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.TokenDuration)
}
