// station-tm is an interactive terminal caller for the raw transport:
// it dials the station, translates the configured charset both ways,
// and bridges stdin/stdout to the line protocol.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/danmuck/station64/internal/observability"
	"github.com/danmuck/station64/internal/petscii"
)

func main() {
	var (
		addr        = pflag.String("addr", "", "station address (host:port)")
		charsetFlag = pflag.String("charset", "", "wire charset: legacy-petscii|ascii-passthrough|utf8-passthrough")
		configPath  = pflag.String("config", "", "path to caller profile TOML")
	)
	pflag.Parse()

	observability.InitLogger("station-tm")

	profile := defaultCallerProfile()
	if *configPath != "" {
		loaded, err := loadCallerProfile(*configPath)
		if err != nil {
			log.Error().Err(err).Msg("station-tm profile invalid")
			os.Exit(1)
		}
		profile = loaded
	}
	if *addr != "" {
		profile.Addr = *addr
	}
	if *charsetFlag != "" {
		profile.Charset = *charsetFlag
	}

	cs, err := petscii.ParseCharset(profile.Charset)
	if err != nil {
		log.Error().Err(err).Msg("station-tm charset invalid")
		os.Exit(1)
	}

	if err := runCaller(profile.Addr, cs); err != nil {
		log.Error().Err(err).Msg("station-tm exited")
		os.Exit(1)
	}
}

func runCaller(addr string, cs petscii.Charset) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s (%s); ctrl-d to hang up\n\n", addr, cs)

	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				os.Stdout.WriteString(petscii.Decode(buf[:n], cs))
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	inputErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			payload := append(petscii.Encode(scanner.Text(), cs), '\r', '\n')
			if _, err := conn.Write(payload); err != nil {
				inputErr <- err
				return
			}
		}
		inputErr <- scanner.Err()
	}()

	select {
	case err := <-readErr:
		if errors.Is(err, io.EOF) {
			fmt.Println("\nconnection closed by station")
			return nil
		}
		return err
	case err := <-inputErr:
		return err
	}
}
