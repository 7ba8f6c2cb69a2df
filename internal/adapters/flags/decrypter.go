package flags

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
)

// CookieName is the cookie the flags toolbar writes overrides to.
const CookieName = "vercel-flag-overrides"

const overridesPurpose = "overrides"

var (
	ErrExpired = errors.New("flag overrides expired")
	ErrPurpose = errors.New("flag overrides: unexpected purpose")
)

// payload is the decrypted JWE body: overrides, purpose and expiry (unix seconds).
type payload struct {
	Overrides map[string]any `json:"o"`
	Purpose   string         `json:"pur"`
	Expires   int64          `json:"exp,omitempty"`
}

// Decrypter opens flag-override tokens (JWE, dir + A256GCM).
type Decrypter struct {
	key []byte
	now func() time.Time
}

// NewDecrypter parses a base64url-encoded 256-bit secret.
func NewDecrypter(secret string) (*Decrypter, error) {
	key, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, fmt.Errorf("flags secret: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("flags secret: want 32 bytes, got %d", len(key))
	}
	return &Decrypter{key: key, now: time.Now}, nil
}

// Decrypt returns the override map carried by token.
func (d *Decrypter) Decrypt(token string) (map[string]any, error) {
	obj, err := jose.ParseEncrypted(token,
		[]jose.KeyAlgorithm{jose.DIRECT},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil, fmt.Errorf("parse flag overrides: %w", err)
	}
	plain, err := obj.Decrypt(d.key)
	if err != nil {
		return nil, fmt.Errorf("decrypt flag overrides: %w", err)
	}

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return nil, fmt.Errorf("decode flag overrides: %w", err)
	}
	if p.Purpose != overridesPurpose {
		return nil, ErrPurpose
	}
	if p.Expires != 0 && d.now().Unix() > p.Expires {
		return nil, ErrExpired
	}
	if p.Overrides == nil {
		p.Overrides = map[string]any{}
	}
	return p.Overrides, nil
}

// EncryptOverrides produces a token Decrypt accepts. ttl of zero means no expiry.
func (d *Decrypter) EncryptOverrides(overrides map[string]any, ttl time.Duration) (string, error) {
	p := payload{Overrides: overrides, Purpose: overridesPurpose}
	if ttl > 0 {
		p.Expires = d.now().Add(ttl).Unix()
	}
	plain, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	enc, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.DIRECT, Key: d.key}, nil)
	if err != nil {
		return "", fmt.Errorf("flag overrides encrypter: %w", err)
	}
	obj, err := enc.Encrypt(plain)
	if err != nil {
		return "", fmt.Errorf("encrypt flag overrides: %w", err)
	}
	return obj.CompactSerialize()
}
