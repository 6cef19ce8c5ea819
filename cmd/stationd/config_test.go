package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "station.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestResolveConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := resolveConfig("", flagOverrides{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.BoardName != "STATION-64" || cfg.Telnet.Addr != ":2323" || cfg.Web.Addr != ":8064" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestResolveConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
board_name = "FILE BOARD"

[telnet]
addr = ":7000"

[web]
addr = ":7001"
`)
	cfg, err := resolveConfig(path, flagOverrides{
		telnetAddr: ":8000",
		boardName:  "FLAG BOARD",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Telnet.Addr != ":8000" {
		t.Fatalf("flag should override file telnet addr: %q", cfg.Telnet.Addr)
	}
	if cfg.BoardName != "FLAG BOARD" {
		t.Fatalf("flag should override file board name: %q", cfg.BoardName)
	}
	if cfg.Web.Addr != ":7001" {
		t.Fatalf("file web addr should survive: %q", cfg.Web.Addr)
	}
}

func TestResolveConfigRejectsInvalidCharsetFlag(t *testing.T) {
	if _, err := resolveConfig("", flagOverrides{charset: "ebcdic"}); err == nil {
		t.Fatal("expected charset validation error")
	}
}

func TestTransportConfigConversion(t *testing.T) {
	cfg, err := resolveConfig("", flagOverrides{charset: "ascii-passthrough"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	tc := telnetConfig(cfg)
	if string(tc.Charset) != "ascii-passthrough" {
		t.Fatalf("charset not converted: %q", tc.Charset)
	}
	if tc.IdleTimeout != 600*time.Second {
		t.Fatalf("idle timeout not converted: %v", tc.IdleTimeout)
	}

	wc := webConfig(cfg)
	if wc.Addr != cfg.Web.Addr || len(wc.CORSOrigins) != len(cfg.Web.CorsOrigins) {
		t.Fatalf("web config not converted: %+v", wc)
	}
}
