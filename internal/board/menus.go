package board

import (
	"fmt"
	"strings"

	"github.com/danmuck/station64/internal/petscii"
	"github.com/danmuck/station64/internal/screen"
)

const (
	menuMain     = "main"
	menuSettings = "settings"
	menuNickname = "nickname"
)

const pressReturnHint = "PRESS RETURN TO CONTINUE..."

func registerBuiltinMenus(e *Engine) error {
	main := NewMenu(menuMain, e.boardName).
		MustAdd("C", "VIEW CHARACTER SET", handleCharsetTable).
		MustAdd("?", "HELP", handleHelp).
		MustAdd("N", "SET NICKNAME", handleEnterNickname).
		MustAdd("S", "SETTINGS", handleEnterSettings).
		MustAdd("B", "BACK", handleBack).
		MustAdd("Q", "LOG OFF", handleQuit)

	settings := NewMenu(menuSettings, "SETTINGS").
		MustAdd("W", "WHO AM I", handleWhoAmI).
		MustAdd("C", "VIEW CHARACTER SET", handleCharsetTable).
		MustAdd("B", "BACK TO MAIN MENU", handleBack).
		MustAdd("Q", "LOG OFF", handleQuit)

	nickname := NewMenu(menuNickname, "NICKNAME").
		SetPrompt("ENTER NICKNAME (RETURN TO CANCEL): ").
		SetFallback(handleCaptureNickname)

	for _, m := range []*Menu{main, settings, nickname} {
		if err := e.registry.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// handleCharsetTable shows the full mapped character set for the
// session's own charset, fixed at 40 cells per line.
func handleCharsetTable(s *Session, _ string) (string, error) {
	return petscii.Table(s.Charset) + "\n\n" + screen.Pad(pressReturnHint), nil
}

func handleHelp(s *Session, _ string) (string, error) {
	lines := []string{
		screen.Header("STATION-64 HELP"),
		"",
		screen.Wrap("THIS BOARD SPEAKS THE SAME MENUS OVER EVERY LINE TYPE. " +
			"COMMANDS ARE SINGLE KEYS AND CASE DOES NOT MATTER."),
		"",
		"  C - VIEW THE CHARACTER SET",
		"  ? - SHOW THIS HELP",
		"  N - CHOOSE A NICKNAME",
		"  S - SETTINGS",
		"  B - BACK ONE MENU",
		"  Q - LOG OFF",
		"",
		pressReturnHint,
	}
	return strings.Join(lines, "\n"), nil
}

func handleEnterNickname(s *Session, _ string) (string, error) {
	if err := s.Push(menuNickname); err != nil {
		return "", err
	}
	return s.Active().Render(), nil
}

func handleEnterSettings(s *Session, _ string) (string, error) {
	if err := s.Push(menuSettings); err != nil {
		return "", err
	}
	return s.Active().Render(), nil
}

// handleBack pops one menu. At the root the pop is ignored and the
// root simply re-renders.
func handleBack(s *Session, _ string) (string, error) {
	s.Pop()
	return s.Active().Render(), nil
}

func handleQuit(s *Session, _ string) (string, error) {
	s.Close()
	name := s.Nickname
	if name == "" {
		name = "CALLER"
	}
	return fmt.Sprintf("\nTHANK YOU FOR CALLING, %s!\n\nGOODBYE!\n", name), nil
}

func handleWhoAmI(s *Session, _ string) (string, error) {
	nick := s.Nickname
	if nick == "" {
		nick = "(NONE)"
	}
	lines := []string{
		screen.Header("YOUR SESSION"),
		"",
		"NICKNAME " + nick,
		"CHARSET  " + string(s.Charset),
		"ON SINCE " + s.ConnectedAt.Format("2006-01-02 15:04:05 MST"),
		"",
		screen.StatusBar("LINK "+s.Transport, shortID(s.ID)),
		screen.Separator(),
		"",
		pressReturnHint,
	}
	return strings.Join(lines, "\n"), nil
}

// handleCaptureNickname consumes free text from the nickname capture
// menu, stores it, and returns to the previous menu.
func handleCaptureNickname(s *Session, raw string) (string, error) {
	s.SetNickname(raw)
	s.Pop()
	return fmt.Sprintf("NICKNAME SET TO %s.\n\n%s", s.Nickname, s.Active().Render()), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
