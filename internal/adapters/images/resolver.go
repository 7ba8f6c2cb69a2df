package images

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/parkpulse/web/internal/core/domain"
)

// extensions are tried in order; the first existing file wins.
var extensions = []string{"jpg", "jpeg", "png", "webp"}

// Resolver implements ports.ImageResolver over a directory of park images
// named <slug>.<ext>.
type Resolver struct {
	dir    string
	prefix string
}

// NewResolver creates a resolver serving files from dir under urlPrefix.
func NewResolver(dir, urlPrefix string) *Resolver {
	return &Resolver{dir: dir, prefix: strings.TrimRight(urlPrefix, "/")}
}

// Resolve returns the public path of the park's background image, or nil.
func (r *Resolver) Resolve(slug string) *string {
	if r == nil || !domain.ValidSlug(slug) {
		return nil
	}
	for _, ext := range extensions {
		name := slug + "." + ext
		info, err := os.Stat(filepath.Join(r.dir, name))
		if err != nil || info.IsDir() {
			continue
		}
		p := r.prefix + "/" + name
		return &p
	}
	return nil
}
