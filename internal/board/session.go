package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/station64/internal/observability"
	"github.com/danmuck/station64/internal/petscii"
)

const (
	outcomeOK      = "ok"
	outcomeUnknown = "unknown"
	outcomeFault   = "fault"
)

// Caps records capabilities negotiated by the transport adapter for
// one connection. Echo means the terminal echoes its own input
// locally, so the adapter must not echo it back. Zero value for the
// web.
type Caps struct {
	Echo            bool
	SuppressGoAhead bool
}

// Session is the mutable per-connection state plus dispatch entry
// point. One Session is owned by exactly one transport connection;
// all mutation happens inside that connection's dispatch calls, so no
// locking is needed.
type Session struct {
	ID          string
	Charset     petscii.Charset
	RemoteAddr  string
	Transport   string
	ConnectedAt time.Time
	Nickname    string
	Caps        Caps

	engine *Engine
	stack  []*Menu
	closed bool
}

// Close requests disconnect. Monotonic: once set it never clears.
func (s *Session) Close() { s.closed = true }

// Closed reports whether the session has ended.
func (s *Session) Closed() bool { return s.closed }

// Active is the menu consulted for the next command lookup.
func (s *Session) Active() *Menu { return s.stack[len(s.stack)-1] }

// Depth is the current menu stack size.
func (s *Session) Depth() int { return len(s.stack) }

// Push enters a submenu by registry name.
func (s *Session) Push(name string) error {
	m, ok := s.engine.registry.Resolve(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMenuNotFound, name)
	}
	s.stack = append(s.stack, m)
	return nil
}

// Pop leaves the current submenu. Popping the root is a deliberate
// no-op, never an error: the root menu cannot be navigated away.
func (s *Session) Pop() bool {
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

// SetNickname stores the caller's display name, trimmed and bounded
// to 16 runes. Truncation is rune-aware so a multi-byte glyph at the
// boundary is dropped whole, never split into invalid UTF-8.
func (s *Session) SetNickname(name string) {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > 16 {
		name = string(runes[:16])
	}
	s.Nickname = name
}

// HandleLine turns one inbound raw line into exactly one rendered,
// encoded output block and the keep-open flag. The adapter decodes
// nothing; the session's charset drives both directions.
//
// Every input yields a visible response: a command result, the
// unknown-command block, a generic fault block, or a re-rendered
// prompt for a blank line. Handler panics and errors are contained
// here and never tear down the connection.
func (s *Session) HandleLine(line []byte) ([]byte, bool) {
	if s.closed {
		return nil, false
	}

	text := petscii.Decode(line, s.Charset)
	text = strings.TrimRight(text, "\r\n")
	trimmed := strings.TrimSpace(text)
	active := s.Active()

	var block, outcome string
	switch {
	case trimmed == "":
		if active.fallback != nil && s.Pop() {
			// Blank line in a capture menu cancels the prompt.
			block = "CANCELLED.\n\n" + s.Active().Render()
		} else {
			block = active.Render()
		}
		outcome = outcomeOK
	default:
		if h, ok := active.Lookup(trimmed); ok {
			block, outcome = s.dispatch(active, h, Normalize(trimmed))
		} else if active.fallback != nil {
			block, outcome = s.dispatch(active, active.fallback, trimmed)
		} else {
			block = unknownCommandBlock + "\n\n" + active.Render()
			outcome = outcomeUnknown
		}
	}

	observability.RecordCommand(active.name, outcome)
	return petscii.Encode(block, s.Charset), !s.closed
}

// dispatch invokes one handler inside the containment boundary. A
// panic or returned error becomes the generic fault block; the fault
// detail goes to the log, never to the caller.
func (s *Session) dispatch(m *Menu, h Handler, arg string) (block, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("session", s.ID).
				Str("menu", m.name).
				Str("command", arg).
				Interface("panic", r).
				Msg("command handler panic")
			block, outcome = handlerFaultBlock, outcomeFault
		}
	}()

	out, err := h(s, arg)
	if err != nil {
		log.Error().
			Str("session", s.ID).
			Str("menu", m.name).
			Str("command", arg).
			Err(err).
			Msg("command handler failed")
		return handlerFaultBlock, outcomeFault
	}
	return out, outcomeOK
}

func newSessionID() string {
	return uuid.NewString()
}
