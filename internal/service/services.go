package service

import (
	"github.com/credvault/credvault/internal/config"
	"github.com/credvault/credvault/internal/crypto"
	"github.com/credvault/credvault/internal/logger"
	"github.com/credvault/credvault/internal/store"
	"github.com/credvault/credvault/internal/token"
	"github.com/credvault/credvault/internal/totp"
)

type Services struct {
	AuthService  AuthService
	EntryService EntryService
}

func NewServices(storages store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	issuer, err := token.NewIssuer(cfg.App.TokenSignKey, cfg.App.TokenIssuer)
	if err != nil {
		return nil, err
	}

	keys := crypto.NewKeyService()
	totpEngine := totp.NewEngine(cfg.App.TotpIssuer, 0, 0)

	return &Services{
		AuthService:  NewAuthService(storages, keys, totpEngine, issuer, cfg.App, logger),
		EntryService: NewEntryService(storages.EntryRepository, logger),
	}, nil
}
