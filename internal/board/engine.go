// Package board is the shared interactive session engine: the menu
// registry, per-connection sessions, and the dispatch loop that turns
// one inbound line into one rendered output block. Transports feed it
// raw bytes and write back whatever it returns; they never interpret
// content themselves.
package board

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/station64/internal/petscii"
	"github.com/danmuck/station64/internal/screen"
)

const (
	unknownCommandBlock = "INVALID COMMAND. TYPE ? FOR HELP."
	handlerFaultBlock   = "INTERNAL ERROR. TRY AGAIN."
)

// Engine holds the immutable menu registry shared by every session.
// Construct once at process start; safe for concurrent use because
// nothing in it is mutated afterward.
type Engine struct {
	registry  *Registry
	rootName  string
	boardName string
}

// NewEngine wires the builtin menu set for a board.
func NewEngine(boardName string) (*Engine, error) {
	if boardName == "" {
		boardName = "STATION-64"
	}
	e := &Engine{
		registry:  NewRegistry(),
		rootName:  menuMain,
		boardName: boardName,
	}
	if err := registerBuiltinMenus(e); err != nil {
		return nil, err
	}
	e.registry.Freeze()
	return e, nil
}

// Registry exposes the menu table for adapters and tests; read-only.
func (e *Engine) Registry() *Registry { return e.registry }

// BoardName reports the banner name this engine greets callers with.
func (e *Engine) BoardName() string { return e.boardName }

// NewSession binds a fresh session to a charset and returns it with
// the greeting block already encoded for that charset.
func (e *Engine) NewSession(cs petscii.Charset, transport, remoteAddr string) (*Session, []byte) {
	root, ok := e.registry.Resolve(e.rootName)
	if !ok {
		// Registration happens in NewEngine; a missing root is a
		// wiring bug, not a runtime condition.
		panic("board: root menu not registered")
	}
	s := &Session{
		ID:          newSessionID(),
		Charset:     cs,
		RemoteAddr:  remoteAddr,
		Transport:   transport,
		ConnectedAt: time.Now().UTC(),
		engine:      e,
		stack:       []*Menu{root},
	}
	log.Info().
		Str("session", s.ID).
		Str("transport", transport).
		Str("charset", string(cs)).
		Str("remote", remoteAddr).
		Msg("session opened")

	greeting := e.greeting() + "\n" + root.Render()
	return s, petscii.Encode(greeting, cs)
}

// greeting is the banner shown once at connect, before the root menu.
func (e *Engine) greeting() string {
	return "\n\n" +
		screen.Center(e.boardName) + "\n" +
		screen.Center("========================") + "\n\n" +
		screen.Center("WELCOME, CALLER!") + "\n"
}
