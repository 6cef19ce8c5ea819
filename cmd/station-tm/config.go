package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// callerProfile is the dial target a caller keeps in a profile file.
type callerProfile struct {
	Addr    string `toml:"addr"`
	Charset string `toml:"charset"`
}

func defaultCallerProfile() callerProfile {
	return callerProfile{
		Addr:    "localhost:2323",
		Charset: "legacy-petscii",
	}
}

func loadCallerProfile(path string) (callerProfile, error) {
	cfg := defaultCallerProfile()

	var raw callerProfile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return callerProfile{}, fmt.Errorf("load caller profile: %w", err)
	}

	if meta.IsDefined("addr") {
		addr := strings.TrimSpace(raw.Addr)
		if addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("charset") {
		cs := strings.TrimSpace(raw.Charset)
		if cs != "" {
			cfg.Charset = cs
		}
	}

	return cfg, nil
}
