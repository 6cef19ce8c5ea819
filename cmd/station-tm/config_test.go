package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadCallerProfileDefaultsAndOverrides(t *testing.T) {
	path := writeProfile(t, `
addr = "bbs.example.net:6400"
`)
	cfg, err := loadCallerProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if cfg.Addr != "bbs.example.net:6400" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.Charset != "legacy-petscii" {
		t.Fatalf("charset default lost: %q", cfg.Charset)
	}
}

func TestLoadCallerProfileIgnoresBlankValues(t *testing.T) {
	path := writeProfile(t, `
addr = "   "
charset = ""
`)
	cfg, err := loadCallerProfile(path)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	def := defaultCallerProfile()
	if cfg.Addr != def.Addr || cfg.Charset != def.Charset {
		t.Fatalf("blank values should keep defaults: %+v", cfg)
	}
}

func TestLoadCallerProfileMissingFile(t *testing.T) {
	if _, err := loadCallerProfile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected load error for missing file")
	}
}
