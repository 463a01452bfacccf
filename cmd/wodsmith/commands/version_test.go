// ABOUTME: Tests for version command
// ABOUTME: Verifies build info, the runtime summary and SetVersion

package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd_Output(t *testing.T) {
	original := versionInfo
	defer func() { versionInfo = original }()

	SetVersion("1.2.3", "abc123", "2026-01-31")

	cmd := NewVersionCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, expected := range []string{
		"wodsmith 1.2.3",
		"Commit: abc123",
		"Built:  2026-01-31",
	} {
		if !strings.Contains(output.String(), expected) {
			t.Errorf("Output should contain %q, got:\n%s", expected, output.String())
		}
	}
}

func TestSetVersion(t *testing.T) {
	original := versionInfo
	defer func() { versionInfo = original }()

	testCases := []struct {
		version string
		commit  string
		date    string
	}{
		{"1.0.0", "deadbeef", "2026-01-01"},
		{"dev", "none", "unknown"},
		{"2.0.0-beta", "1234567890abcdef", "2026-06-15T10:30:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.version, func(t *testing.T) {
			SetVersion(tc.version, tc.commit, tc.date)

			if versionInfo.Version != tc.version {
				t.Errorf("Version = %q, want %q", versionInfo.Version, tc.version)
			}
			if versionInfo.Commit != tc.commit {
				t.Errorf("Commit = %q, want %q", versionInfo.Commit, tc.commit)
			}
			if versionInfo.Date != tc.date {
				t.Errorf("Date = %q, want %q", versionInfo.Date, tc.date)
			}
		})
	}
}

func TestVersionCmd_Runtime(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "groq with local embeddings and sqlite",
			env: map[string]string{
				"LLM_API_KEY": "", "OPENAI_API_KEY": "", "GROQ_API_KEY": "gsk-test",
				"EMBEDDING_PROVIDER": "local", "LOCAL_EMBEDDING_DIM": "256",
				"VECTOR_BACKEND": "sqlite", "VECTOR_DB_PATH": "/tmp/rutinas.db",
			},
			want: []string{
				"via https://api.groq.com",
				"Embed:  local hash, 256 dims",
				"Store:  sqlite /tmp/rutinas.db (collection rutinas_crossfit, cosine)",
			},
		},
		{
			name: "no key on charm",
			env: map[string]string{
				"LLM_API_KEY": "", "OPENAI_API_KEY": "", "GROQ_API_KEY": "",
				"VECTOR_BACKEND": "charm", "CHARM_DB": "wods",
			},
			want: []string{"no API key, chat disabled", "Store:  charm wods@cloud.charm.sh"},
		},
		{
			name: "invalid config",
			env:  map[string]string{"VECTOR_BACKEND": "redis"},
			want: []string{"wodsmith ", "Config: invalid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cmd := NewVersionCmd()
			var output bytes.Buffer
			cmd.SetOut(&output)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			for _, expected := range tt.want {
				if !strings.Contains(output.String(), expected) {
					t.Errorf("Output should contain %q, got:\n%s", expected, output.String())
				}
			}
		})
	}
}
