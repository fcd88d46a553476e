package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	l := NewLoader(WithEnvPrefix("TASKBOARD_TEST_DEFAULTS_"))
	cfg, err := l.Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Origin != DefaultOrigin {
		t.Errorf("Origin = %q, want %q", cfg.Origin, DefaultOrigin)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if filepath.Base(cfg.SessionDB) != "session.db" {
		t.Errorf("SessionDB = %q", cfg.SessionDB)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
origin: "https://file.example.com"
api_url: "http://file-api:5000"
output: json
timeout: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKBOARD_PREC_API_URL", "http://env-api:5000")
	t.Setenv("TASKBOARD_PREC_SESSION_DB", filepath.Join(dir, "env.db"))

	l := NewLoader(WithConfigFile(path), WithEnvPrefix("TASKBOARD_PREC_"))
	cfg, err := l.Load(map[string]any{
		"output": "yaml",
		"origin": "",
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Origin != "https://file.example.com" {
		t.Errorf("Origin = %q, want file value (empty flag must not mask it)", cfg.Origin)
	}
	if cfg.APIURL != "http://env-api:5000" {
		t.Errorf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.SessionDB != filepath.Join(dir, "env.db") {
		t.Errorf("SessionDB = %q", cfg.SessionDB)
	}
	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want flag value", cfg.Output)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	l := NewLoader(
		WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")),
		WithEnvPrefix("TASKBOARD_TEST_MISSING_"),
	)
	if _, err := l.Load(nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadRejectsBadOutput(t *testing.T) {
	l := NewLoader(WithEnvPrefix("TASKBOARD_TEST_BAD_"))
	if _, err := l.Load(map[string]any{"output": "xml"}); err == nil {
		t.Fatal("expected error for unknown output format")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("origin: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(WithConfigFile(path), WithEnvPrefix("TASKBOARD_TEST_INVALID_"))
	if _, err := l.Load(nil); err == nil {
		t.Fatal("expected parse error")
	}
}
