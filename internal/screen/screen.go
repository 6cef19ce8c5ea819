// Package screen holds rendering helpers for the 40-column target
// terminal: padding, centering, wrapping, headers, and the per-charset
// clear-screen sequences. Widths are display cells, not bytes.
package screen

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/danmuck/station64/internal/petscii"
)

// Width is the terminal column count everything is laid out against.
const Width = 40

const (
	ansiClearScreen = "\x1b[2J"
	ansiCursorHome  = "\x1b[H"
	ansiReset       = "\x1b[0m"

	// petsciiClear is CHR$(147), the hardware clear-screen code.
	petsciiClear = ""
)

// Clear returns the clear-screen sequence for a charset: the hardware
// code for legacy terminals, ANSI for everything else.
func Clear(cs petscii.Charset) string {
	if cs == petscii.CharsetPETSCII {
		return petsciiClear
	}
	return ansiClearScreen + ansiCursorHome
}

// Pad right-pads s with spaces to exactly Width cells, truncating
// first if it is too long.
func Pad(s string) string {
	return PadTo(s, Width)
}

// PadTo right-pads s to exactly width cells.
func PadTo(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "")
	}
	return runewidth.FillRight(s, width)
}

// Truncate cuts s to at most Width cells.
func Truncate(s string) string {
	return runewidth.Truncate(s, Width, "")
}

// Center centers s within Width cells.
func Center(s string) string {
	w := runewidth.StringWidth(s)
	if w >= Width {
		return runewidth.Truncate(s, Width, "")
	}
	return strings.Repeat(" ", (Width-w)/2) + s
}

// Wrap splits text into lines no wider than Width cells, breaking at
// spaces. A single word wider than the screen hard-breaks at the cell
// boundary. Existing newlines are respected.
func Wrap(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= Width {
			out = append(out, line)
			continue
		}
		var cur string
		for _, word := range strings.Fields(line) {
			for runewidth.StringWidth(word) > Width {
				if cur != "" {
					out = append(out, cur)
					cur = ""
				}
				head := runewidth.Truncate(word, Width, "")
				out = append(out, head)
				word = strings.TrimPrefix(word, head)
			}
			switch {
			case cur == "":
				cur = word
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(word) <= Width:
				cur += " " + word
			default:
				out = append(out, cur)
				cur = word
			}
		}
		if cur != "" {
			out = append(out, cur)
		}
	}
	return strings.Join(out, "\n")
}

// Header renders a centered title between full-width rules.
func Header(title string) string {
	rule := strings.Repeat("=", Width)
	return rule + "\n" + Center(title) + "\n" + rule
}

// Separator is a full-width horizontal rule.
func Separator() string {
	return strings.Repeat("-", Width)
}

// StatusBar lays out left- and right-aligned text on one line.
func StatusBar(left, right string) string {
	lw, rw := runewidth.StringWidth(left), runewidth.StringWidth(right)
	if lw+rw >= Width {
		avail := Width - rw - 1
		if avail < 0 {
			avail = 0
		}
		left = runewidth.Truncate(left, avail, "")
		return left + " " + right
	}
	return left + strings.Repeat(" ", Width-lw-rw) + right
}
