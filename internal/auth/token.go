package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/gym-access/internal/domain"
)

var (
	// ErrInvalidToken covers every verification failure: malformed input,
	// signature mismatch, expiry and unexpected claims. Callers must not try
	// to tell them apart.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSigningKeyUnavailable is returned by Issue when no key material was
	// configured.
	ErrSigningKeyUnavailable = errors.New("signing key unavailable")
)

// Claims describes the credential payload.
type Claims struct {
	Kind      domain.SubjectKind `json:"type"`
	SubjectID int64              `json:"subject_id"`
	AdminCode string             `json:"admin_code,omitempty"`
	AccessID  string             `json:"access_id,omitempty"`
	Verified  bool               `json:"verified,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 credentials with one process-wide key.
type TokenManager struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithIssuer sets and enforces the iss claim.
func WithIssuer(issuer string) TokenOption {
	return func(tm *TokenManager) { tm.issuer = issuer }
}

// WithAudience sets and enforces the aud claim.
func WithAudience(audience string) TokenOption {
	return func(tm *TokenManager) { tm.audience = audience }
}

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a manager around an already resolved secret.
func NewTokenManager(secret []byte, opts ...TokenOption) *TokenManager {
	tm := &TokenManager{secret: append([]byte(nil), secret...), now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// Issue signs claims valid for ttl. Kind, subject, iat, exp and jti are set
// here; any values the caller put in RegisteredClaims are replaced.
func (tm *TokenManager) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if len(tm.secret) == 0 {
		return "", time.Time{}, ErrSigningKeyUnavailable
	}
	if !claims.Kind.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: unknown subject kind %q", claims.Kind)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: ttl must be positive")
	}

	now := tm.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(claims.SubjectID, 10),
		Issuer:    tm.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if tm.audience != "" {
		claims.Audience = jwt.ClaimStrings{tm.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry, issuer and audience and returns the claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	if len(tm.secret) == 0 || tokenStr == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	if tm.audience != "" {
		opts = append(opts, jwt.WithAudience(tm.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || !claims.Kind.Valid() || claims.SubjectID <= 0 {
		return nil, ErrInvalidToken
	}
	if claims.Subject != strconv.FormatInt(claims.SubjectID, 10) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyKind is Verify plus a subject-kind check. A gym_access credential
// never satisfies a gym check and vice versa.
func (tm *TokenManager) VerifyKind(tokenStr string, kind domain.SubjectKind) (*Claims, error) {
	claims, err := tm.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if kind == domain.SubjectKindGymAccess && !claims.Verified {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
