package screen

// Color is a hardware palette index (0-15).
type Color int

const (
	Black Color = iota
	White
	Red
	Cyan
	Purple
	Green
	Blue
	Yellow
	Orange
	Brown
	LightRed
	DarkGrey
	Grey
	LightGreen
	LightBlue
	LightGrey
)

// ansiByColor approximates the hardware palette with ANSI SGR codes
// for terminals that render escapes (the browser emulator).
var ansiByColor = map[Color]string{
	Black:      "\x1b[30m",
	White:      "\x1b[37m",
	Red:        "\x1b[31m",
	Cyan:       "\x1b[36m",
	Purple:     "\x1b[35m",
	Green:      "\x1b[32m",
	Blue:       "\x1b[34m",
	Yellow:     "\x1b[33m",
	Orange:     "\x1b[38;5;208m",
	Brown:      "\x1b[38;5;130m",
	LightRed:   "\x1b[91m",
	DarkGrey:   "\x1b[90m",
	Grey:       "\x1b[37m",
	LightGreen: "\x1b[92m",
	LightBlue:  "\x1b[94m",
	LightGrey:  "\x1b[97m",
}

// ANSI returns the escape sequence for c, or the empty string for an
// out-of-palette value.
func (c Color) ANSI() string {
	return ansiByColor[c]
}

// ResetANSI clears color and attributes.
const ResetANSI = ansiReset

// Colorize wraps s in the ANSI sequence for c. Transport-layer only;
// engine output stays plain text.
func Colorize(s string, c Color) string {
	seq := c.ANSI()
	if seq == "" {
		return s
	}
	return seq + s + ResetANSI
}
