package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/gym-access/internal/auth"
)

func TestResolveSigningSecret(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	secret, err := auth.ResolveSigningSecret("configured", false, logger)
	require.NoError(t, err)
	assert.Equal(t, []byte("configured"), secret)
	assert.Zero(t, logs.Len())

	secret, err = auth.ResolveSigningSecret("", true, logger)
	require.NoError(t, err)
	assert.Equal(t, []byte(auth.DevelopmentSecret), secret)
	assert.Equal(t, 1, logs.Len())

	_, err = auth.ResolveSigningSecret("  ", false, logger)
	assert.ErrorIs(t, err, auth.ErrMissingSigningSecret)
}

func TestResolveAccessPhrase(t *testing.T) {
	phrase, err := auth.ResolveAccessPhrase("", true, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, auth.DevelopmentAccessPhrase, phrase)

	_, err = auth.ResolveAccessPhrase("", false, zap.NewNop())
	assert.ErrorIs(t, err, auth.ErrMissingAccessPhrase)

	phrase, err = auth.ResolveAccessPhrase("open-sesame", false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "open-sesame", phrase)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.True(t, auth.PasswordMatches(&hash, "s3cret-pass"))
	assert.False(t, auth.PasswordMatches(&hash, "wrong"))
	assert.False(t, auth.PasswordMatches(nil, "s3cret-pass"))

	empty := ""
	assert.False(t, auth.PasswordMatches(&empty, ""))
}
