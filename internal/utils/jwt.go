package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation for token ids
	"crypto/sha256" // SHA‑256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of digests and ids
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token types carried in the token_type claim.
const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is presented where an
// access token is expected or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims is the payload of both tokens in a pair.  UserID and Rol are the
// application claims; the registered claims carry sub/iat/exp and, for
// refresh tokens, a unique jti so each issued token hashes differently.
type Claims struct {
	UserID    uint64 `json:"user_id"`
	Rol       string `json:"rol"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SignedToken is a serialized JWT with its expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	Access  SignedToken
	Refresh SignedToken
}

// Issuer signs token pairs with an HS256 secret.
type Issuer struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time // defaults to time.Now
}

// NewIssuer builds an Issuer from the configured TTLs (minutes / days).
func NewIssuer(secret string, accessTTLMin, refreshTTLDays int) *Issuer {
	return &Issuer{
		Secret:     []byte(secret),
		AccessTTL:  time.Duration(accessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now().UTC()
	}
	return time.Now().UTC()
}

// IssuePair signs a short-lived access token and a long-lived refresh token
// for the user.  Both carry user_id and rol.
func (i *Issuer) IssuePair(userID uint64, rol string) (TokenPair, error) {
	access, err := i.sign(userID, rol, AccessTokenType, i.AccessTTL, "")
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access: %w", err)
	}
	jti, err := randomHex(16)
	if err != nil {
		return TokenPair{}, fmt.Errorf("refresh id: %w", err)
	}
	refresh, err := i.sign(userID, rol, RefreshTokenType, i.RefreshTTL, jti)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) sign(userID uint64, rol, typ string, ttl time.Duration, jti string) (SignedToken, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:    userID,
		Rol:       rol,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// Parse verifies signature, expiry and token type and returns the claims.
func (i *Issuer) Parse(raw, wantType string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// HashToken returns the SHA‑256 hex digest stored in place of a refresh
// token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
