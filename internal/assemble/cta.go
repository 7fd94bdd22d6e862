package assemble

import (
	"github.com/mailforge/mailforge-backend/internal/types"
)

// ResolveCTA looks an id up in the content type's catalog with the
// fallback chain: exact id, content-type default, first catalog entry.
// The second return is false when nothing could be resolved.
func ResolveCTA(catalog []types.CTA, id, defaultID, defaultURL string) (types.CTA, bool) {
	for _, c := range catalog {
		if c.ID == id && id != "" {
			return c, true
		}
	}
	if defaultID != "" {
		for _, c := range catalog {
			if c.ID == defaultID {
				return c, true
			}
		}
	}
	if defaultURL != "" {
		return types.CTA{ID: id, URL: defaultURL}, true
	}
	if len(catalog) > 0 {
		return catalog[0], true
	}
	return types.CTA{}, false
}
