// Package petscii implements the character codec shared by every
// transport: a total, bidirectional mapping between the 8-bit terminal
// byte stream and Unicode text.
//
// Reference for the legacy table: https://sta.c64.org/cbm64pet.html
// Codes $00-$1F and $80-$9F are control codes, $93 is clear-screen,
// $FF is the BASIC token for pi.
package petscii

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Charset identifies which byte<->text mapping a connection uses.
// Fixed at session construction, never renegotiated mid-session.
type Charset string

const (
	// CharsetPETSCII is the legacy 8-bit terminal mapping.
	CharsetPETSCII Charset = "legacy-petscii"
	// CharsetASCII is the identity mapping over printable 7-bit bytes.
	CharsetASCII Charset = "ascii-passthrough"
	// CharsetUTF8 carries text verbatim for clients that render Unicode
	// themselves (the browser terminal).
	CharsetUTF8 Charset = "utf8-passthrough"
)

// Placeholder substitutes for any byte or rune with no mapping.
// Substitution is deterministic; nothing is ever dropped.
const Placeholder = '?'

var ErrUnknownCharset = errors.New("petscii: unknown charset")

// ParseCharset maps a config string to a Charset value.
func ParseCharset(raw string) (Charset, error) {
	switch Charset(strings.ToLower(strings.TrimSpace(raw))) {
	case CharsetPETSCII, "petscii":
		return CharsetPETSCII, nil
	case CharsetASCII, "ascii":
		return CharsetASCII, nil
	case CharsetUTF8, "utf8":
		return CharsetUTF8, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCharset, raw)
	}
}

// petsciiToUnicode maps every byte value 0-255 to a Unicode rune.
// Control codes render as spaces (CR excepted) so decoding is total;
// graphics codes map to the closest block/box-drawing glyph.
var petsciiToUnicode = [256]rune{
	// Control codes (0x00-0x1F): CR survives, ESC shows as '[',
	// everything else collapses to space.
	0x0000, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x000D, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x005B, 0x0020, 0x0020, 0x0020, 0x0020,
	// Printable ASCII range (0x20-0x5F).
	0x0020, 0x0021, 0x0022, 0x0023, 0x0024, 0x0025, 0x0026, 0x0027,
	0x0028, 0x0029, 0x002A, 0x002B, 0x002C, 0x002D, 0x002E, 0x002F,
	0x0030, 0x0031, 0x0032, 0x0033, 0x0034, 0x0035, 0x0036, 0x0037,
	0x0038, 0x0039, 0x003A, 0x003B, 0x003C, 0x003D, 0x003E, 0x003F,
	0x0040, 0x0041, 0x0042, 0x0043, 0x0044, 0x0045, 0x0046, 0x0047,
	0x0048, 0x0049, 0x004A, 0x004B, 0x004C, 0x004D, 0x004E, 0x004F,
	0x0050, 0x0051, 0x0052, 0x0053, 0x0054, 0x0055, 0x0056, 0x0057,
	0x0058, 0x0059, 0x005A, 0x005B, 0x005C, 0x005D, 0x005E, 0x005F,
	// Lowercase and symbols (0x60-0x7F).
	0x0060, 0x0061, 0x0062, 0x0063, 0x0064, 0x0065, 0x0066, 0x0067,
	0x0068, 0x0069, 0x006A, 0x006B, 0x006C, 0x006D, 0x006E, 0x006F,
	0x0070, 0x0071, 0x0072, 0x0073, 0x0074, 0x0075, 0x0076, 0x0077,
	0x0078, 0x0079, 0x007A, 0x007B, 0x007C, 0x007D, 0x007E, 0x007F,
	// Control codes (0x80-0x9F): function keys, colors, cursor moves.
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020, 0x0020,
	// Block graphics (0xA0-0xBF).
	0x2588, 0x258C, 0x2584, 0x2580, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2590, 0x258C, 0x2584, 0x2580, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	// Shades and box drawing (0xC0-0xDF).
	0x2591, 0x2592, 0x2593, 0x2588, 0x2500, 0x2502, 0x250C, 0x2510,
	0x2514, 0x2518, 0x251C, 0x2524, 0x252C, 0x2534, 0x253C, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	// 0xE0-0xFE mirror 0xC0-0xDE on real hardware; 0xFF is pi.
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588,
	0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x2588, 0x03C0,
}

// unicodeToPETSCII is the reverse table. Built first-writer-wins over
// the non-control byte ranges so the printable/graphic subset round
// trips; control bytes never win a reverse slot (a space must encode
// as 0x20, not as a color code).
var unicodeToPETSCII = buildReverseTable()

func buildReverseTable() map[rune]byte {
	rev := make(map[rune]byte, 256)
	claim := func(b int) {
		r := petsciiToUnicode[b]
		if _, taken := rev[r]; !taken {
			rev[r] = byte(b)
		}
	}
	for b := 0x20; b < 0x80; b++ {
		claim(b)
	}
	for b := 0xA0; b <= 0xFF; b++ {
		claim(b)
	}
	rev['\r'] = 0x0D
	return rev
}

// TranslateByte maps one byte value to the rune a terminal using cs
// would display for it. Pure; used for charset table output.
func TranslateByte(b byte, cs Charset) rune {
	switch cs {
	case CharsetPETSCII:
		return petsciiToUnicode[b]
	case CharsetASCII:
		if b >= 0x20 && b < 0x7F {
			return rune(b)
		}
		return Placeholder
	default:
		// Unicode terminals see Latin-1 for the high half.
		if b >= 0x20 && b < 0x7F || b >= 0xA1 {
			return rune(b)
		}
		return Placeholder
	}
}

// Decode converts raw transport bytes to text. Total: every input byte
// produces a defined rune, unmappable bytes become the placeholder.
func Decode(data []byte, cs Charset) string {
	switch cs {
	case CharsetPETSCII:
		var sb strings.Builder
		sb.Grow(len(data))
		for _, b := range data {
			sb.WriteRune(petsciiToUnicode[b])
		}
		return sb.String()
	case CharsetASCII:
		var sb strings.Builder
		sb.Grow(len(data))
		for _, b := range data {
			switch {
			case b >= 0x20 && b < 0x7F:
				sb.WriteByte(b)
			case b == '\r' || b == '\n' || b == '\t':
				sb.WriteByte(b)
			default:
				sb.WriteRune(Placeholder)
			}
		}
		return sb.String()
	default:
		var sb strings.Builder
		sb.Grow(len(data))
		for len(data) > 0 {
			r, size := utf8.DecodeRune(data)
			if r == utf8.RuneError && size == 1 {
				sb.WriteRune(Placeholder)
			} else {
				sb.WriteRune(r)
			}
			data = data[size:]
		}
		return sb.String()
	}
}

// Encode converts text to transport bytes for cs. Total: runes with no
// byte mapping substitute the placeholder, never fail or truncate.
// For the legacy charset, unmapped runes below 0x100 fall back to
// their code point so newlines and Latin-1 text survive.
func Encode(text string, cs Charset) []byte {
	switch cs {
	case CharsetPETSCII:
		out := make([]byte, 0, len(text))
		for _, r := range text {
			if b, ok := unicodeToPETSCII[r]; ok {
				out = append(out, b)
			} else if r < 0x100 {
				out = append(out, byte(r))
			} else {
				out = append(out, Placeholder)
			}
		}
		return out
	case CharsetASCII:
		out := make([]byte, 0, len(text))
		for _, r := range text {
			switch {
			case r >= 0x20 && r < 0x7F:
				out = append(out, byte(r))
			case r == '\r' || r == '\n' || r == '\t':
				out = append(out, byte(r))
			default:
				out = append(out, Placeholder)
			}
		}
		return out
	default:
		return []byte(text)
	}
}
