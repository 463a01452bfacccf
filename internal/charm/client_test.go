// ABOUTME: Tests for charm key helpers
// ABOUTME: The KV itself needs a charm account and is exercised manually through wodsmith sync
package charm

import (
	"strings"
	"testing"
)

func TestKeys(t *testing.T) {
	if got := CollectionKey("rutinas_crossfit"); got != "collection:rutinas_crossfit" {
		t.Errorf("CollectionKey() = %s", got)
	}

	key := DocumentKey("rutinas_crossfit", "semana_2025_W06")
	if key != "doc:rutinas_crossfit:semana_2025_W06" {
		t.Errorf("DocumentKey() = %s", key)
	}
	if !strings.HasPrefix(key, DocumentPrefixFor("rutinas_crossfit")) {
		t.Error("document key should start with its collection prefix")
	}
	if strings.HasPrefix(DocumentKey("rutinas", "x"), DocumentPrefixFor("rutinas_crossfit")) {
		t.Error("prefix of one collection must not match another")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("CHARM_HOST", "")
	cfg := DefaultConfig()
	if cfg.Host != "cloud.charm.sh" {
		t.Errorf("Host = %s, want cloud.charm.sh", cfg.Host)
	}
	if cfg.DBName != "wodsmith" {
		t.Errorf("DBName = %s, want wodsmith", cfg.DBName)
	}
	if !cfg.AutoSync {
		t.Error("AutoSync should default to true")
	}
}
