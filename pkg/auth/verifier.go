package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity fields the API reads from an access token.
type Claims struct {
	Subject string
	Email   string
}

// Verifier checks access tokens issued by the hosted auth provider.
// HS256 tokens are checked against the project secret, RS256 tokens against JWKS.
type Verifier struct {
	secret []byte
	jwks   *Provider
}

func NewVerifier(secret string, jwks *Provider) *Verifier {
	v := &Verifier{jwks: jwks}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc, jwt.WithValidMethods([]string{"HS256", "RS256"}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := mc["email"].(string)
	return &Claims{Subject: sub, Email: email}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, errors.New("HS256 token received but SUPABASE_JWT_SECRET is not configured")
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, errors.New("RS256 token received but no JWKS provider is configured")
		}
		return v.jwks.KeyFunc(token)
	default:
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
}
