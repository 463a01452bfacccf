// ABOUTME: Helpers shared by the search surfaces: metadata filters and comma list parsing
// ABOUTME: The CLI, HTTP and MCP search paths all go through these
package rag

import (
	"strings"

	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/vectorstore"
)

// FilterFor builds a metadata filter on olympic lift and strength pattern. Returns nil when both are empty.
func FilterFor(olympic, pattern string) vectorstore.Filter {
	f := vectorstore.Filter{}
	if o := strings.TrimSpace(olympic); o != "" {
		f[models.MetaOlympicLifts] = o
	}
	if p := strings.TrimSpace(pattern); p != "" {
		f[models.MetaStrengthPatterns] = p
	}
	if len(f) == 0 {
		return nil
	}
	return f
}

// SplitList splits a comma separated value, dropping blanks
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return clean(strings.Split(s, ","))
}
