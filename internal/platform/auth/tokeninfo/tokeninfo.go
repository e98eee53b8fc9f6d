// Package tokeninfo reads the claims of the bearer tokens issued by the remote auth API.
//
// The edge never holds the signing secret, so Parse does not verify signatures; it is
// used only to learn when a token expires. VerifyHS256 exists for parties that do hold
// the secret (the dev API).
package tokeninfo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("malformed token")
	ErrSignature = errors.New("invalid token signature")
	ErrExpired   = errors.New("token expired")
)

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type rawClaims struct {
	UserID *int64 `json:"user_id"`
	Sub    string `json:"sub"`
	Exp    *int64 `json:"exp"`
	Iat    *int64 `json:"iat"`
}

// Claims are the token fields the edge cares about. Zero times mean "absent".
type Claims struct {
	Algorithm string
	UserID    int64
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Parse decodes a compact JWS without verifying its signature.
func Parse(token string) (Claims, error) {
	h, c, _, _, err := split(token)
	if err != nil {
		return Claims{}, err
	}
	out := Claims{Algorithm: h.Alg, Subject: c.Sub}
	if c.UserID != nil {
		out.UserID = *c.UserID
	}
	if c.Exp != nil {
		out.ExpiresAt = time.Unix(*c.Exp, 0).UTC()
	}
	if c.Iat != nil {
		out.IssuedAt = time.Unix(*c.Iat, 0).UTC()
	}
	return out, nil
}

// VerifyHS256 checks the HMAC-SHA256 signature and expiry of token.
func VerifyHS256(token string, secret []byte, now time.Time) (Claims, error) {
	h, _, signingInput, sig, err := split(token)
	if err != nil {
		return Claims{}, err
	}
	if h.Alg != "HS256" {
		return Claims{}, fmt.Errorf("%w: unexpected alg %q", ErrSignature, h.Alg)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Claims{}, ErrSignature
	}
	c, err := Parse(token)
	if err != nil {
		return Claims{}, err
	}
	if c.Expired(now) {
		return Claims{}, ErrExpired
	}
	return c, nil
}

func split(token string) (header, rawClaims, string, []byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: bad jwt parts", ErrMalformed)
	}
	headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claimsB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var h header
	if err := json.Unmarshal(headerB, &h); err != nil {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var c rawClaims
	if err := json.Unmarshal(claimsB, &c); err != nil {
		return header{}, rawClaims{}, "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, c, parts[0] + "." + parts[1], sig, nil
}
