package petscii

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TableWidth is the fixed display width of every charset table line,
// matching the 40-column target terminal.
const TableWidth = 40

// Table renders the mapped character set as a fixed-width block for
// the given charset: one row of sixteen glyphs per line from 0x20 to
// 0xFF. Glyphs that would translate to a control rune render as '.'
// so the block stays rectangular on any terminal.
func Table(cs Charset) string {
	var lines []string
	lines = append(lines, fitLine("CHARACTER SET"))
	lines = append(lines, fitLine(strings.Repeat("=", TableWidth)))
	for row := 0x20; row <= 0xF0; row += 16 {
		cells := make([]string, 0, 16)
		for i := 0; i < 16; i++ {
			r := TranslateByte(byte(row+i), cs)
			if r < 0x20 || r == 0x7F {
				r = '.'
			}
			cells = append(cells, string(r))
		}
		lines = append(lines, fitLine(fmt.Sprintf("0x%02X: %s", row, strings.Join(cells, " "))))
	}
	return strings.Join(lines, "\n")
}

// fitLine pads or truncates to exactly TableWidth display cells.
func fitLine(s string) string {
	if runewidth.StringWidth(s) > TableWidth {
		return runewidth.Truncate(s, TableWidth, "")
	}
	return runewidth.FillRight(s, TableWidth)
}
