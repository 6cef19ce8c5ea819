// stationd hosts the board on both transports: a raw line-oriented
// TCP listener for character terminals and an HTTP/websocket listener
// for browsers. One shared engine serves every caller.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/danmuck/station64/internal/board"
	"github.com/danmuck/station64/internal/config"
	"github.com/danmuck/station64/internal/logging"
	"github.com/danmuck/station64/internal/telnet"
	"github.com/danmuck/station64/internal/web"
)

func main() {
	var (
		configPath = pflag.String("config", "", "path to station TOML config")
		flags      flagOverrides
	)
	pflag.StringVar(&flags.telnetAddr, "telnet-addr", "", "raw transport listen address (overrides config)")
	pflag.StringVar(&flags.webAddr, "web-addr", "", "web transport listen address (overrides config)")
	pflag.StringVar(&flags.boardName, "board-name", "", "banner name (overrides config)")
	pflag.StringVar(&flags.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	pflag.StringVar(&flags.charset, "charset", "", "raw transport charset (overrides config)")
	pflag.Parse()

	logging.ConfigureRuntime()

	cfg, err := resolveConfig(*configPath, flags)
	if err != nil {
		log.Error().Err(err).Msg("stationd config invalid")
		os.Exit(1)
	}
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("stationd exited")
		os.Exit(1)
	}
}

func run(cfg config.StationConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := board.NewEngine(cfg.BoardName)
	if err != nil {
		return err
	}

	telnetSrv := telnet.NewServer(telnetConfig(cfg), engine)
	webSrv := web.NewServer(webConfig(cfg), engine)

	log.Info().
		Str("board", cfg.BoardName).
		Str("telnet_addr", cfg.Telnet.Addr).
		Str("web_addr", cfg.Web.Addr).
		Msg("stationd starting")

	telnetErr := make(chan error, 1)
	webErr := make(chan error, 1)
	go func() { telnetErr <- telnetSrv.Serve(ctx) }()
	go func() { webErr <- webSrv.Serve(ctx) }()

	select {
	case <-ctx.Done():
		log.Info().Msg("stationd shutdown")
		return nil
	case err := <-telnetErr:
		return err
	case err := <-webErr:
		return err
	}
}
