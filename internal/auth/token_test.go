package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/domain"
)

var testSecret = []byte("test-secret-with-enough-entropy-0123456789")

func newTestTokens(opts ...auth.TokenOption) *auth.TokenManager {
	base := []auth.TokenOption{auth.WithIssuer("tessalp-gyms"), auth.WithAudience("tessalp-users")}
	return auth.NewTokenManager(testSecret, append(base, opts...)...)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tm := newTestTokens()

	token, exp, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGym, SubjectID: 5, AdminCode: "ADM5"}, 7*24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectKindGym, claims.Kind)
	assert.Equal(t, int64(5), claims.SubjectID)
	assert.Equal(t, "ADM5", claims.AdminCode)
	assert.Equal(t, "5", claims.Subject)
	assert.Equal(t, "tessalp-gyms", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssueGeneratesUniqueIDs(t *testing.T) {
	tm := newTestTokens()
	a, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, time.Hour)
	require.NoError(t, err)
	b, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsEveryTamperedSignatureByte(t *testing.T) {
	tm := newTestTokens()
	token, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 3, AccessID: "phrase", Verified: true}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)

	for i := range sig {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		forged := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(mutated)

		_, err := tm.Verify(forged)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, "byte %d", i)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	tm := newTestTokens()
	token, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 3, Verified: true}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	swapped := strings.Replace(string(payload), `"subject_id":3`, `"subject_id":9`, 1)
	require.NotEqual(t, string(payload), swapped)

	forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(swapped)) + "." + parts[2]
	_, err = tm.Verify(forged)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	tm := newTestTokens()
	for _, raw := range []string{"", "abc", "a.b.c", "...", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := tm.Verify(raw)
		assert.ErrorIs(t, err, auth.ErrInvalidToken, raw)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-25 * time.Hour)
	issuer := newTestTokens(auth.WithClock(func() time.Time { return past }))
	token, exp, err := issuer.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 3, Verified: true}, 24*time.Hour)
	require.NoError(t, err)
	require.True(t, exp.Before(time.Now()))

	_, err = newTestTokens().Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyAcceptsTokenJustBeforeExpiry(t *testing.T) {
	past := time.Now().Add(-23 * time.Hour)
	issuer := newTestTokens(auth.WithClock(func() time.Time { return past }))
	token, _, err := issuer.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 3, Verified: true}, 24*time.Hour)
	require.NoError(t, err)

	_, err = newTestTokens().Verify(token)
	assert.NoError(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := newTestTokens().Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, time.Hour)
	require.NoError(t, err)

	other := auth.NewTokenManager([]byte("another-secret"), auth.WithIssuer("tessalp-gyms"), auth.WithAudience("tessalp-users"))
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsWrongAudienceAndIssuer(t *testing.T) {
	token, _, err := newTestTokens().Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, time.Hour)
	require.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, auth.WithIssuer("tessalp-gyms"), auth.WithAudience("someone-else")).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.NewTokenManager(testSecret, auth.WithIssuer("other"), auth.WithAudience("tessalp-users")).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	claims := auth.Claims{
		Kind:      domain.SubjectKindGym,
		SubjectID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			Issuer:    "tessalp-gyms",
			Audience:  jwt.ClaimStrings{"tessalp-users"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokens().Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsSubjectMismatch(t *testing.T) {
	claims := auth.Claims{
		Kind:      domain.SubjectKindGym,
		SubjectID: 5,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6",
			Issuer:    "tessalp-gyms",
			Audience:  jwt.ClaimStrings{"tessalp-users"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = newTestTokens().Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyKindIsolatesSubjectKinds(t *testing.T) {
	tm := newTestTokens()

	gymToken, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGym, SubjectID: 5}, time.Hour)
	require.NoError(t, err)
	accessToken, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 5, Verified: true}, time.Hour)
	require.NoError(t, err)
	userToken, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 5}, time.Hour)
	require.NoError(t, err)

	_, err = tm.VerifyKind(accessToken, domain.SubjectKindGym)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = tm.VerifyKind(gymToken, domain.SubjectKindGymAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = tm.VerifyKind(userToken, domain.SubjectKindGym)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = tm.VerifyKind(gymToken, domain.SubjectKindGym)
	assert.NoError(t, err)
	_, err = tm.VerifyKind(accessToken, domain.SubjectKindGymAccess)
	assert.NoError(t, err)
}

func TestVerifyKindRequiresVerifiedVisitor(t *testing.T) {
	tm := newTestTokens()
	token, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindGymAccess, SubjectID: 3}, time.Hour)
	require.NoError(t, err)

	_, err = tm.VerifyKind(token, domain.SubjectKindGymAccess)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueWithoutKeyMaterial(t *testing.T) {
	tm := auth.NewTokenManager(nil)
	_, _, err := tm.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, time.Hour)
	assert.ErrorIs(t, err, auth.ErrSigningKeyUnavailable)

	_, err = tm.Verify("a.b.c")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestIssueRejectsBadInput(t *testing.T) {
	tm := newTestTokens()
	_, _, err := tm.Issue(auth.Claims{Kind: "admin", SubjectID: 1}, time.Hour)
	assert.Error(t, err)
	_, _, err = tm.Issue(auth.Claims{Kind: domain.SubjectKindUser, SubjectID: 1}, 0)
	assert.Error(t, err)
}
