package main

import (
	"time"

	"github.com/danmuck/station64/internal/config"
	"github.com/danmuck/station64/internal/petscii"
	"github.com/danmuck/station64/internal/telnet"
	"github.com/danmuck/station64/internal/web"
)

// flagOverrides are command-line values layered over the file config.
// Empty strings mean "not set".
type flagOverrides struct {
	telnetAddr string
	webAddr    string
	boardName  string
	logLevel   string
	charset    string
}

func resolveConfig(path string, flags flagOverrides) (config.StationConfig, error) {
	cfg := config.DefaultStationConfig()
	if path != "" {
		loaded, err := config.LoadStationConfig(path)
		if err != nil {
			return config.StationConfig{}, err
		}
		cfg = loaded
	}

	if flags.telnetAddr != "" {
		cfg.Telnet.Addr = flags.telnetAddr
	}
	if flags.webAddr != "" {
		cfg.Web.Addr = flags.webAddr
	}
	if flags.boardName != "" {
		cfg.BoardName = flags.boardName
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.charset != "" {
		cfg.Telnet.Charset = flags.charset
	}

	if err := config.ValidateStationConfig(cfg); err != nil {
		return config.StationConfig{}, err
	}
	return cfg, nil
}

func telnetConfig(cfg config.StationConfig) telnet.Config {
	cs, _ := petscii.ParseCharset(cfg.Telnet.Charset)
	return telnet.Config{
		Addr:           cfg.Telnet.Addr,
		Charset:        cs,
		IdleTimeout:    time.Duration(cfg.Telnet.IdleSeconds) * time.Second,
		LinesPerSecond: cfg.Telnet.LinesPerSecond,
		LineBurst:      cfg.Telnet.LineBurst,
	}
}

func webConfig(cfg config.StationConfig) web.Config {
	return web.Config{
		Addr:        cfg.Web.Addr,
		CORSOrigins: cfg.Web.CorsOrigins,
		IdleTimeout: time.Duration(cfg.Web.IdleSeconds) * time.Second,
	}
}
