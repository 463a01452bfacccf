// ABOUTME: Metadata filters applied before similarity ranking
// ABOUTME: Comma-joined list fields match on token membership
package vectorstore

import (
	"strings"

	"github.com/harper/wodsmith/internal/models"
)

// Filter maps a metadata field to its expected value. All entries must match.
type Filter map[string]string

// Matches reports whether the metadata satisfies every filter entry.
// A value equal to the expected text matches; otherwise a ", "-joined value
// matches when one of its tokens equals the expected text.
func (f Filter) Matches(metadata map[string]any) bool {
	for field, want := range f {
		v, ok := metadata[field]
		if !ok {
			return false
		}
		got := models.MetaText(v)
		if strings.EqualFold(got, want) {
			continue
		}
		if !containsToken(got, want) {
			return false
		}
	}
	return true
}

func containsToken(list, want string) bool {
	if !strings.Contains(list, ",") {
		return false
	}
	for _, tok := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(tok), strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}
