// Package telnet is the raw line-oriented transport adapter: it owns
// the TCP listener and per-connection loops, strips telnet protocol
// negotiation from the byte stream, and feeds whole lines to the
// session engine. It never interprets command content.
package telnet

import "github.com/danmuck/station64/internal/board"

// Telnet command and option codes (RFC 854/857/858).
const (
	cmdSE   byte = 240 // subnegotiation end
	cmdSB   byte = 250 // subnegotiation begin
	cmdWILL byte = 251
	cmdWONT byte = 252
	cmdDO   byte = 253
	cmdDONT byte = 254
	cmdIAC  byte = 255 // interpret as command

	optEcho byte = 1
	optSGA  byte = 3 // suppress go-ahead
)

const (
	stData = iota
	stIAC
	stOpt
	stSB
	stSBIAC
)

// iacFilter removes IAC sequences from an inbound byte stream and
// tracks the option state the client announces. Stateful so commands
// split across reads are still recognized.
type iacFilter struct {
	state int
	cmd   byte
	caps  *board.Caps
}

// feed consumes one raw byte and reports the plain data byte to pass
// through, if any.
func (f *iacFilter) feed(b byte) (byte, bool) {
	switch f.state {
	case stData:
		if b == cmdIAC {
			f.state = stIAC
			return 0, false
		}
		return b, true
	case stIAC:
		switch b {
		case cmdIAC:
			// Escaped 0xFF data byte.
			f.state = stData
			return b, true
		case cmdWILL, cmdWONT, cmdDO, cmdDONT:
			f.cmd = b
			f.state = stOpt
		case cmdSB:
			f.state = stSB
		default:
			f.state = stData
		}
		return 0, false
	case stOpt:
		f.recordOption(f.cmd, b)
		f.state = stData
		return 0, false
	case stSB:
		if b == cmdIAC {
			f.state = stSBIAC
		}
		return 0, false
	default: // stSBIAC
		if b == cmdSE {
			f.state = stData
		} else {
			f.state = stSB
		}
		return 0, false
	}
}

// recordOption tracks the negotiated capabilities relevant to a
// character terminal; everything else is consumed and ignored.
func (f *iacFilter) recordOption(cmd, opt byte) {
	if f.caps == nil {
		return
	}
	switch opt {
	case optEcho:
		// WILL ECHO announces the terminal echoes its own input; the
		// server must then stop echoing or every keystroke doubles.
		// DO ECHO asks the server to echo, which it already does.
		switch cmd {
		case cmdWILL:
			f.caps.Echo = true
		case cmdWONT:
			f.caps.Echo = false
		}
	case optSGA:
		if cmd == cmdWILL || cmd == cmdDO {
			f.caps.SuppressGoAhead = true
		}
	}
}
