package board

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/station64/internal/screen"
)

var (
	ErrCommandExists = errors.New("board: command key already registered")
	ErrEmptyCommand  = errors.New("board: command key is empty")
)

// Handler executes one command for one session. It may mutate the
// session (navigate, set the nickname, close) and returns the text
// block shown to the caller. A returned error or a panic is contained
// at the dispatch boundary and never reaches the transport.
type Handler func(s *Session, arg string) (string, error)

type command struct {
	key     string
	label   string
	handler Handler
}

// Menu is a named, read-only command table plus display title.
// Built once at process start; sessions only ever read it, so many
// concurrent sessions can share one Menu without locking.
type Menu struct {
	name     string
	title    string
	commands []command
	byKey    map[string]int

	// fallback, when set, receives any line that matches no command
	// key. Used by capture-style menus (nickname entry).
	fallback Handler

	prompt string
}

// NewMenu creates an empty menu. Name is the stable registry key.
func NewMenu(name, title string) *Menu {
	return &Menu{
		name:   name,
		title:  title,
		byKey:  make(map[string]int),
		prompt: "ENTER COMMAND: ",
	}
}

func (m *Menu) Name() string  { return m.name }
func (m *Menu) Title() string { return m.title }

// Add appends one command in display order. Keys are canonicalized;
// two keys that normalize identically collide.
func (m *Menu) Add(key, label string, h Handler) error {
	canon := Normalize(key)
	if canon == "" {
		return ErrEmptyCommand
	}
	if _, ok := m.byKey[canon]; ok {
		return fmt.Errorf("%w: menu=%q key=%q", ErrCommandExists, m.name, canon)
	}
	m.byKey[canon] = len(m.commands)
	m.commands = append(m.commands, command{key: canon, label: label, handler: h})
	return nil
}

// MustAdd is Add for static process-start wiring.
func (m *Menu) MustAdd(key, label string, h Handler) *Menu {
	if err := m.Add(key, label, h); err != nil {
		panic(err)
	}
	return m
}

// SetFallback installs the free-text handler for capture menus.
func (m *Menu) SetFallback(h Handler) *Menu {
	m.fallback = h
	return m
}

// SetPrompt overrides the input prompt line.
func (m *Menu) SetPrompt(prompt string) *Menu {
	m.prompt = prompt
	return m
}

// Lookup resolves a normalized command key. A miss is not an error;
// the engine answers it with the unknown-command block.
func (m *Menu) Lookup(key string) (Handler, bool) {
	idx, ok := m.byKey[Normalize(key)]
	if !ok {
		return nil, false
	}
	return m.commands[idx].handler, true
}

// Keys returns command keys in insertion order.
func (m *Menu) Keys() []string {
	keys := make([]string, len(m.commands))
	for i, c := range m.commands {
		keys[i] = c.key
	}
	return keys
}

// Render produces the menu block: title header, one line per command
// in insertion order, and the input prompt.
func (m *Menu) Render() string {
	var sb strings.Builder
	sb.WriteString(screen.Header(m.title))
	sb.WriteString("\n\n")
	for _, c := range m.commands {
		fmt.Fprintf(&sb, "  %s - %s\n", c.key, c.label)
	}
	sb.WriteString("\n")
	sb.WriteString(m.prompt)
	return sb.String()
}

// Normalize canonicalizes a command token: surrounding whitespace is
// stripped and the token is uppercased.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
