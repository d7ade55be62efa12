package goToken

import "github.com/MrEthical07/goToken/jwt"

// TokenKind names a credential kind.
type TokenKind string

const (
	// TokenAccess is the short-lived credential checked on every protected request.
	TokenAccess TokenKind = TokenKind(jwt.KindAccess)
	// TokenRefresh is the longer-lived credential used only to obtain new access tokens.
	TokenRefresh TokenKind = TokenKind(jwt.KindRefresh)
)

// Claims is the decoded, verified content of a credential. Timestamps are
// Unix seconds. Claims are returned by value and never retained by the engine.
type Claims struct {
	Audience  string    `json:"aud"`
	Subject   string    `json:"sub"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
	TokenID   string    `json:"jti,omitempty"`
	Kind      TokenKind `json:"typ"`
}

// TokenPair is an access and refresh credential minted from one instant.
type TokenPair struct {
	AccessToken   string `json:"access_token"`
	RefreshToken  string `json:"refresh_token"`
	AccessClaims  Claims `json:"-"`
	RefreshClaims Claims `json:"-"`
}

func claimsFromWire(c *jwt.Claims) Claims {
	out := Claims{
		Subject: c.Subject,
		TokenID: c.ID,
		Kind:    TokenKind(c.Kind),
	}
	if len(c.Audience) > 0 {
		out.Audience = c.Audience[0]
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Unix()
	}
	return out
}
