package usecases

import (
	"log/slog"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/ports"
)

// DebugGeoModeFlag is the flag key holding the geolocation override.
const DebugGeoModeFlag = "debugGeoMode"

// DebugModeService reads the debug geolocation mode from the flag-override cookie.
type DebugModeService struct {
	flags ports.FlagDecrypter
}

// NewDebugModeService creates a new DebugModeService. A nil decrypter (no
// secret configured) pins the mode to real.
func NewDebugModeService(flags ports.FlagDecrypter) *DebugModeService {
	return &DebugModeService{flags: flags}
}

// Mode returns the mode encoded in cookie, or real on any failure.
func (s *DebugModeService) Mode(cookie string) domain.GeoMode {
	if s == nil || s.flags == nil || cookie == "" {
		return domain.GeoModeReal
	}
	overrides, err := s.flags.Decrypt(cookie)
	if err != nil {
		slog.Debug("flag override cookie rejected", "component", "debug-geo-mode", "error", err)
		return domain.GeoModeReal
	}
	v, _ := overrides[DebugGeoModeFlag].(string)
	mode, ok := domain.ParseGeoMode(v)
	if !ok {
		return domain.GeoModeReal
	}
	return mode
}
