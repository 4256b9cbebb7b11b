package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var b64 = base64.RawURLEncoding

// ErrInvalidToken indicates a session token that is malformed, forged or
// past its expiry.
var ErrInvalidToken = errors.New("invalid session token")

// TokenCodec signs and verifies compact HS256 session tokens. A token
// proves only that the bearer completed a code challenge for the subject
// identity; there is no revocation list.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec with the given signing secret and token
// lifetime.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type tokenClaims struct {
	Subject  string `json:"sub"`
	Kind     string `json:"kind"`
	IssuedAt int64  `json:"iat"`
	Expiry   int64  `json:"exp"`
}

// Sign creates a compact token binding the identity key.
func (t *TokenCodec) Sign(identityKey, kind string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := tokenClaims{Subject: identityKey, Kind: kind, IssuedAt: now.Unix(), Expiry: exp.Unix()}

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", time.Time{}, err
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	unsigned := b64.EncodeToString(header) + "." + b64.EncodeToString(payload)
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(unsigned))
	return unsigned + "." + b64.EncodeToString(mac.Sum(nil)), exp, nil
}

// Verify checks signature and expiry and returns the subject identity key.
func (t *TokenCodec) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}

	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidToken
	}
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidToken
	}

	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidToken
	}
	var claims tokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" || t.now().Unix() > claims.Expiry {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
