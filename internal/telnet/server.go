package telnet

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/danmuck/station64/internal/board"
	"github.com/danmuck/station64/internal/observability"
	"github.com/danmuck/station64/internal/petscii"
)

const transportName = "telnet"

// Config sets the raw transport's listen address and per-connection
// policy. Idle timeout and rate limits are adapter concerns; the
// engine never sees them.
type Config struct {
	Addr        string
	Charset     petscii.Charset
	IdleTimeout time.Duration
	// LinesPerSecond caps inbound dispatch rate per connection; a
	// flooding caller stalls only itself. Zero disables the limit.
	LinesPerSecond float64
	LineBurst      int
}

func DefaultConfig() Config {
	return Config{
		Addr:           ":2323",
		Charset:        petscii.CharsetPETSCII,
		IdleTimeout:    10 * time.Minute,
		LinesPerSecond: 10,
		LineBurst:      20,
	}
}

// Server accepts raw terminal connections and runs one session loop
// per caller. It owns connection lifecycle; session state belongs to
// the engine.
type Server struct {
	cfg         Config
	engine      *board.Engine
	activeConns atomic.Int64
}

func NewServer(cfg Config, engine *board.Engine) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}
	if cfg.Charset == "" {
		cfg.Charset = petscii.CharsetPETSCII
	}
	return &Server{cfg: cfg, engine: engine}
}

// Serve blocks on the accept loop until ctx is cancelled or the
// listener fails.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(s.cfg.Addr))
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info().
		Str("addr", ln.Addr().String()).
		Str("charset", string(s.cfg.Charset)).
		Msg("telnet listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	remote := conn.RemoteAddr().String()
	active := s.activeConns.Add(1)
	observability.SessionOpened(transportName)
	log.Info().Str("remote", remote).Int64("active_conns", active).Msg("telnet caller connected")
	defer func() {
		remaining := s.activeConns.Add(-1)
		observability.SessionClosed(transportName)
		log.Info().Str("remote", remote).Int64("active_conns", remaining).Msg("telnet caller disconnected")
	}()

	sess, greeting := s.engine.NewSession(s.cfg.Charset, transportName, remote)
	if err := s.write(conn, greeting); err != nil {
		log.Warn().Str("session", sess.ID).Err(err).Msg("telnet greeting write failed")
		return
	}

	var limiter *rate.Limiter
	if s.cfg.LinesPerSecond > 0 {
		burst := s.cfg.LineBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.LinesPerSecond), burst)
	}

	filter := &iacFilter{caps: &sess.Caps}
	reader := bufio.NewReader(conn)
	for {
		if s.cfg.IdleTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		line, err := readLine(reader, filter)
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Warn().Str("session", sess.ID).Err(err).Msg("telnet read failed")
			}
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}

		// Echo the caller's own line so unbuffered terminals see it,
		// unless the terminal announced it echoes locally.
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 && !sess.Caps.Echo {
			echo := make([]byte, 0, len(trimmed)+1)
			echo = append(append(echo, trimmed...), '\n')
			if err := s.write(conn, echo); err != nil {
				return
			}
		}

		out, keepOpen := sess.HandleLine(line)
		if err := s.write(conn, out); err != nil {
			log.Warn().Str("session", sess.ID).Err(err).Msg("telnet write failed")
			return
		}
		if !keepOpen {
			return
		}
	}
}

// write flushes one encoded block, translating bare LF to CRLF for
// terminals that need the carriage return.
func (s *Server) write(conn net.Conn, block []byte) error {
	if len(block) == 0 {
		return nil
	}
	_, err := conn.Write(crlf(block))
	return err
}

// readLine accumulates plain data bytes through the IAC filter until
// a line terminator. CR, LF, and CRLF all end a line.
func readLine(r *bufio.Reader, filter *iacFilter) ([]byte, error) {
	var line []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			if len(line) > 0 && errors.Is(err, io.EOF) {
				return line, nil
			}
			return nil, err
		}
		data, ok := filter.feed(b)
		if !ok {
			continue
		}
		switch data {
		case '\r':
			// Swallow the LF of a CRLF pair only when it is already
			// buffered. Peeking the socket here would block a bare-CR
			// terminal until its next keystroke.
			if r.Buffered() > 0 {
				if next, err := r.Peek(1); err == nil && next[0] == '\n' {
					_, _ = r.Discard(1)
				}
			}
			return line, nil
		case '\n':
			return line, nil
		default:
			line = append(line, data)
		}
	}
}

func crlf(b []byte) []byte {
	if !bytes.ContainsRune(b, '\n') {
		return b
	}
	out := make([]byte, 0, len(b)+16)
	var prev byte
	for _, c := range b {
		if c == '\n' && prev != '\r' {
			out = append(out, '\r')
		}
		out = append(out, c)
		prev = c
	}
	return out
}
