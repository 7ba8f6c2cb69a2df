package flags

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func newSecret(t *testing.T) string {
	t.Helper()
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func TestDecrypter_RoundTrip(t *testing.T) {
	d, err := NewDecrypter(newSecret(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := d.EncryptOverrides(map[string]any{"debugGeoMode": "near"}, time.Hour)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := d.Decrypt(token)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got["debugGeoMode"] != "near" {
		t.Errorf("expected near, got %v", got)
	}
}

func TestDecrypter_WrongKey(t *testing.T) {
	a, _ := NewDecrypter(newSecret(t))
	b, _ := NewDecrypter(newSecret(t))
	token, err := a.EncryptOverrides(map[string]any{"debugGeoMode": "in"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Decrypt(token); err == nil {
		t.Error("expected decryption failure with another key")
	}
}

func TestDecrypter_Expired(t *testing.T) {
	d, _ := NewDecrypter(newSecret(t))
	token, err := d.EncryptOverrides(map[string]any{"debugGeoMode": "in"}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	d.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := d.Decrypt(token); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestDecrypter_Garbage(t *testing.T) {
	d, _ := NewDecrypter(newSecret(t))
	if _, err := d.Decrypt("not-a-jwe"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewDecrypter_BadSecret(t *testing.T) {
	for _, s := range []string{"", "short", "!!!not base64!!!"} {
		if _, err := NewDecrypter(s); err == nil {
			t.Errorf("secret %q should be rejected", s)
		}
	}
}
