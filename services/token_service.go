package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Имена JWT claims
const (
	claimSubject = "sub"
	claimTokenID = "jti"
	claimIssued  = "iat"
	claimExpires = "exp"
)

// SessionClaims is what a verified session token says.
type SessionClaims struct {
	UID       string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, now Clock) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

func (t *TokenIssuer) Issue(uid string) (string, *SessionClaims, error) {
	issued := t.now()
	sc := &SessionClaims{
		UID:       uid,
		TokenID:   uuid.NewString(),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(t.ttl),
	}
	claims := jwt.MapClaims{
		claimSubject: sc.UID,
		claimTokenID: sc.TokenID,
		claimIssued:  sc.IssuedAt.Unix(),
		claimExpires: sc.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, sc, nil
}

// Parse verifies the signature and expiry. Any failure is ErrSessionInvalid.
func (t *TokenIssuer) Parse(tokenString string) (*SessionClaims, error) {
	// expiry is checked below against the injected clock
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	if !claims.VerifyExpiresAt(t.now().Unix(), true) {
		return nil, fmt.Errorf("%w: token expired", ErrSessionInvalid)
	}

	sub, _ := claims[claimSubject].(string)
	jti, _ := claims[claimTokenID].(string)
	if sub == "" || jti == "" {
		return nil, fmt.Errorf("%w: missing subject or token id", ErrSessionInvalid)
	}
	iat, _ := claims[claimIssued].(float64)
	exp, _ := claims[claimExpires].(float64)
	return &SessionClaims{
		UID:       sub,
		TokenID:   jti,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}
