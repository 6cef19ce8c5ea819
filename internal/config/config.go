// Package config loads the station's TOML configuration file and
// validates it before any listener starts.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/station64/internal/petscii"
)

type StationConfig struct {
	BoardName string       `toml:"board_name"`
	LogLevel  string       `toml:"log_level"`
	Telnet    TelnetConfig `toml:"telnet"`
	Web       WebConfig    `toml:"web"`
}

type TelnetConfig struct {
	Addr           string  `toml:"addr"`
	Charset        string  `toml:"charset"`
	IdleSeconds    int     `toml:"idle_seconds"`
	LinesPerSecond float64 `toml:"lines_per_second"`
	LineBurst      int     `toml:"line_burst"`
}

type WebConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	IdleSeconds int      `toml:"idle_seconds"`
}

func DefaultStationConfig() StationConfig {
	return StationConfig{
		BoardName: "STATION-64",
		LogLevel:  "info",
		Telnet: TelnetConfig{
			Addr:           ":2323",
			Charset:        string(petscii.CharsetPETSCII),
			IdleSeconds:    600,
			LinesPerSecond: 10,
			LineBurst:      20,
		},
		Web: WebConfig{
			Addr:        ":8064",
			CorsOrigins: []string{"http://localhost:8064"},
			IdleSeconds: 600,
		},
	}
}

func LoadStationConfig(path string) (StationConfig, error) {
	cfg := DefaultStationConfig()
	if err := loadToml(path, &cfg); err != nil {
		return StationConfig{}, err
	}
	if cfg.BoardName == "" {
		cfg.BoardName = "STATION-64"
	}
	if err := ValidateStationConfig(cfg); err != nil {
		return StationConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateStationConfig(cfg StationConfig) error {
	if strings.TrimSpace(cfg.BoardName) == "" {
		return fmt.Errorf("station config missing board_name")
	}
	if strings.TrimSpace(cfg.Telnet.Addr) == "" {
		return fmt.Errorf("station config missing telnet addr")
	}
	if _, err := petscii.ParseCharset(cfg.Telnet.Charset); err != nil {
		return fmt.Errorf("station config telnet charset invalid: %w", err)
	}
	if cfg.Telnet.IdleSeconds < 0 {
		return fmt.Errorf("station config telnet idle_seconds must not be negative")
	}
	if cfg.Telnet.LinesPerSecond < 0 {
		return fmt.Errorf("station config telnet lines_per_second must not be negative")
	}
	if strings.TrimSpace(cfg.Web.Addr) == "" {
		return fmt.Errorf("station config missing web addr")
	}
	if cfg.Web.IdleSeconds < 0 {
		return fmt.Errorf("station config web idle_seconds must not be negative")
	}
	return nil
}
