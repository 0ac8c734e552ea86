package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wordbridge/wordbridge/internal/core/ports"
)

const minSecretLen = 32

var ErrInvalidToken = errors.New("token is invalid")

// JWTMaker signs and verifies HS256 access tokens. In production only the
// verification half runs; tokens are minted by the upstream identity
// provider with the shared secret.
type JWTMaker struct {
	secretKey string
}

// NewJWTMaker validates the shared secret and returns the maker.
func NewJWTMaker(secretKey string) (ports.TokenMaker, error) {
	if len(secretKey) < minSecretLen {
		return nil, errors.New("invalid key size: must be at least 32 characters")
	}
	return &JWTMaker{secretKey}, nil
}

// CreateToken mints an access token for userID (local mode and tests).
func (maker *JWTMaker) CreateToken(userID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(duration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(maker.secretKey))
}

// VerifyToken checks the signature and expiry and extracts the subject.
func (maker *JWTMaker) VerifyToken(tokenString string) (*ports.TokenPayload, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(maker.secretKey), nil
	}

	jwtToken, err := jwt.Parse(tokenString, keyFunc)
	if err != nil {
		return nil, err
	}
	claims, ok := jwtToken.Claims.(jwt.MapClaims)
	if !ok || !jwtToken.Valid {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	payload := &ports.TokenPayload{UserID: sub}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		payload.ExpiredAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		payload.IssuedAt = iat.Time
	}
	return payload, nil
}
