package ports

import "time"

// TokenPayload is the verified identity carried by an access token.
type TokenPayload struct {
	UserID    string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiredAt time.Time `json:"exp"`
}

// TokenMaker creates and verifies access tokens. Verification is the only
// half used on the request path; CreateToken exists for local mode and tests,
// where no external identity provider issues tokens.
type TokenMaker interface {
	CreateToken(userID string, duration time.Duration) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
