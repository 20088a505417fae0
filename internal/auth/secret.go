package auth

import (
	"errors"
	"strings"

	"go.uber.org/zap"
)

// DevelopmentSecret signs credentials when AUTH_SECRET is unset in a
// development environment. Tokens signed with it must never reach production.
const DevelopmentSecret = "tessalp-default-auth-secret-please-set-env"

// DevelopmentAccessPhrase is the shared visitor phrase used when
// AUTH_ACCESS_PHRASE is unset in a development environment.
const DevelopmentAccessPhrase = "tessalp143"

var (
	ErrMissingSigningSecret = errors.New("AUTH_SECRET is not configured")
	ErrMissingAccessPhrase  = errors.New("AUTH_ACCESS_PHRASE is not configured")
)

// ResolveSigningSecret returns the key material for the TokenManager. Outside
// development a missing secret is a startup error.
func ResolveSigningSecret(configured string, development bool, logger *zap.Logger) ([]byte, error) {
	if strings.TrimSpace(configured) != "" {
		return []byte(configured), nil
	}
	if !development {
		return nil, ErrMissingSigningSecret
	}
	logger.Warn("AUTH_SECRET not set; signing credentials with the development secret",
		zap.String("action", "set AUTH_SECRET before deploying"))
	return []byte(DevelopmentSecret), nil
}

// ResolveAccessPhrase mirrors ResolveSigningSecret for the shared visitor phrase.
func ResolveAccessPhrase(configured string, development bool, logger *zap.Logger) (string, error) {
	if strings.TrimSpace(configured) != "" {
		return configured, nil
	}
	if !development {
		return "", ErrMissingAccessPhrase
	}
	logger.Warn("AUTH_ACCESS_PHRASE not set; using the development access phrase")
	return DevelopmentAccessPhrase, nil
}
