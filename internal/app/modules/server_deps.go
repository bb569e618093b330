package modules

import (
	"strings"

	"vme-analyzer.io/analyzer/internal/api/handlers"
	"vme-analyzer.io/analyzer/internal/api/middleware"
	"vme-analyzer.io/analyzer/internal/config"
)

// NewServerDeps lets each module contribute its part of the server deps.
func NewServerDeps(mods []Module) handlers.ServerDeps {
	var deps handlers.ServerDeps
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}

// NewJWTConfig builds the admin token settings from cfg.
func NewJWTConfig(cfg config.SecurityConfig) middleware.JWTConfig {
	verificationKeys := make([][]byte, 0, len(cfg.JWTVerificationKeys))
	for _, key := range cfg.JWTVerificationKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		verificationKeys = append(verificationKeys, []byte(key))
	}

	return middleware.JWTConfig{
		SigningKey:       []byte(cfg.JWTSigningKey),
		VerificationKeys: verificationKeys,
		Issuer:           cfg.JWTIssuer,
		ExpiresIn:        cfg.TokenTTL,
	}
}
