package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/parkpulse/web/internal/client/api"
	"github.com/parkpulse/web/internal/core/domain"
)

// cookieJar persists the API client's cookies between runs. The favorites
// cookie lives in its own file owned by the favorites store.
type cookieJar struct {
	path string
}

func (j cookieJar) load(c *api.Client) error {
	b, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie jar: %w", err)
	}
	var cookies map[string]string
	if err := json.Unmarshal(b, &cookies); err != nil {
		return fmt.Errorf("parse cookie jar %s: %w", j.path, err)
	}
	for k, v := range cookies {
		c.SetCookie(k, v)
	}
	return nil
}

func (j cookieJar) save(c *api.Client) error {
	cookies := c.Cookies()
	delete(cookies, domain.FavoritesCookieName)
	b, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, b, 0o600)
}
