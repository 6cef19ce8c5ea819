package board

import (
	"errors"
	"strings"
	"testing"
)

func nopHandler(_ *Session, _ string) (string, error) { return "", nil }

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"q":      "Q",
		"  C  ":  "C",
		"?":      "?",
		"zz":     "ZZ",
		"\t b ":  "B",
		"":       "",
		"  \r  ": "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q want %q", in, got, want)
		}
	}
}

func TestMenuRejectsCollidingKeys(t *testing.T) {
	m := NewMenu("t", "TEST")
	if err := m.Add("Q", "QUIT", nopHandler); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := m.Add("q", "QUIT AGAIN", nopHandler); !errors.Is(err, ErrCommandExists) {
		t.Fatalf("expected ErrCommandExists, got %v", err)
	}
	if err := m.Add(" ", "BLANK", nopHandler); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
}

func TestMenuLookupNormalizes(t *testing.T) {
	m := NewMenu("t", "TEST").MustAdd("Q", "QUIT", nopHandler)
	if _, ok := m.Lookup("  q "); !ok {
		t.Fatalf("normalized lookup missed")
	}
	if _, ok := m.Lookup("X"); ok {
		t.Fatalf("lookup invented a command")
	}
}

func TestMenuRenderIsInsertionOrdered(t *testing.T) {
	m := NewMenu("t", "TEST").
		MustAdd("Z", "LAST REGISTERED FIRST", nopHandler).
		MustAdd("A", "FIRST ALPHABETICALLY", nopHandler)
	out := m.Render()
	if strings.Index(out, "Z - ") > strings.Index(out, "A - ") {
		t.Fatalf("render order not insertion order:\n%s", out)
	}
	if out != m.Render() {
		t.Fatalf("render not deterministic")
	}
}

func TestRegistryRejectsDuplicatesAndInvalid(t *testing.T) {
	r := NewRegistry()
	m := NewMenu("main", "MAIN").MustAdd("Q", "QUIT", nopHandler)
	if err := r.Register(m); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(m); !errors.Is(err, ErrMenuExists) {
		t.Fatalf("expected ErrMenuExists, got %v", err)
	}
	if err := r.Register(nil); !errors.Is(err, ErrMenuNil) {
		t.Fatalf("expected ErrMenuNil, got %v", err)
	}
	if err := r.Register(NewMenu("", "X")); !errors.Is(err, ErrMenuInvalid) {
		t.Fatalf("expected ErrMenuInvalid, got %v", err)
	}
	if err := r.Register(NewMenu("empty", "EMPTY")); !errors.Is(err, ErrMenuInvalid) {
		t.Fatalf("expected ErrMenuInvalid for commandless menu, got %v", err)
	}
}

func TestRegistryFreezePanicsOnLateRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewMenu("main", "MAIN").MustAdd("Q", "QUIT", nopHandler)); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering into a frozen registry")
		}
	}()
	_ = r.Register(NewMenu("late", "LATE").MustAdd("X", "X", nopHandler))
}

func TestBuiltinMenusHaveUniqueKeys(t *testing.T) {
	e, err := NewEngine("STATION-64")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for _, name := range e.Registry().Names() {
		m, _ := e.Registry().Resolve(name)
		seen := make(map[string]bool)
		for _, key := range m.Keys() {
			canon := Normalize(key)
			if seen[canon] {
				t.Fatalf("menu %q key %q collides", name, canon)
			}
			seen[canon] = true
		}
	}
}
