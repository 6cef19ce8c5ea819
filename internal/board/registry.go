package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMenuExists   = errors.New("board: menu already registered")
	ErrMenuNil      = errors.New("board: menu is nil")
	ErrMenuInvalid  = errors.New("board: invalid menu")
	ErrMenuNotFound = errors.New("board: menu not found")
)

// Registry stores menus by stable name. Populated once at process
// start and read-only afterward; sessions resolve against it with no
// locking.
type Registry struct {
	items  map[string]*Menu
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]*Menu)}
}

// Freeze marks the registry complete. Sessions assume the menu table
// never changes while they run.
func (r *Registry) Freeze() { r.frozen = true }

// Register adds a menu. Names and command keys are validated here so
// a bad table fails at startup, not mid-session. Registering after
// Freeze is a programmer error.
func (r *Registry) Register(m *Menu) error {
	if r.frozen {
		panic("board: registry is frozen")
	}
	if m == nil {
		return ErrMenuNil
	}
	name := strings.TrimSpace(m.name)
	if name == "" || strings.TrimSpace(m.title) == "" {
		return fmt.Errorf("%w: name and title are required", ErrMenuInvalid)
	}
	if len(m.commands) == 0 && m.fallback == nil {
		return fmt.Errorf("%w: menu %q has no commands", ErrMenuInvalid, name)
	}
	if _, ok := r.items[name]; ok {
		return fmt.Errorf("%w: %q", ErrMenuExists, name)
	}
	r.items[name] = m
	return nil
}

// Resolve returns a menu by name.
func (r *Registry) Resolve(name string) (*Menu, bool) {
	m, ok := r.items[name]
	return m, ok
}

// Names returns registered menu names in deterministic order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
