package telnet

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/station64/internal/board"
	"github.com/danmuck/station64/internal/petscii"
	"github.com/danmuck/station64/internal/testutil/testlog"
)

func filterAll(t *testing.T, f *iacFilter, in []byte) []byte {
	t.Helper()
	var out []byte
	for _, b := range in {
		if data, ok := f.feed(b); ok {
			out = append(out, data)
		}
	}
	return out
}

func TestFilterPassesPlainData(t *testing.T) {
	testlog.Start(t)
	f := &iacFilter{}
	got := filterAll(t, f, []byte("HELLO\r\n"))
	if string(got) != "HELLO\r\n" {
		t.Fatalf("plain data mangled: %q", got)
	}
}

func TestFilterStripsNegotiation(t *testing.T) {
	testlog.Start(t)
	f := &iacFilter{}
	in := []byte{cmdIAC, cmdDO, optSGA, 'A', cmdIAC, cmdWONT, optEcho, 'B'}
	got := filterAll(t, f, in)
	if string(got) != "AB" {
		t.Fatalf("negotiation leaked into data: %q", got)
	}
}

func TestFilterStripsSubnegotiation(t *testing.T) {
	testlog.Start(t)
	f := &iacFilter{}
	// IAC SB <terminal-type payload, including an escaped IAC> IAC SE
	in := []byte{'X', cmdIAC, cmdSB, 24, 0, 'v', 't', cmdIAC, cmdIAC, '0', cmdIAC, cmdSE, 'Y'}
	got := filterAll(t, f, in)
	if string(got) != "XY" {
		t.Fatalf("subnegotiation leaked into data: %q", got)
	}
}

func TestFilterPassesEscapedIAC(t *testing.T) {
	testlog.Start(t)
	f := &iacFilter{}
	got := filterAll(t, f, []byte{cmdIAC, cmdIAC})
	if len(got) != 1 || got[0] != 0xFF {
		t.Fatalf("expected single 0xFF data byte, got %v", got)
	}
}

func TestFilterRecordsCapabilities(t *testing.T) {
	testlog.Start(t)
	caps := &board.Caps{}
	f := &iacFilter{caps: caps}
	filterAll(t, f, []byte{cmdIAC, cmdWILL, optEcho, cmdIAC, cmdDO, optSGA})
	if !caps.Echo || !caps.SuppressGoAhead {
		t.Fatalf("capabilities not recorded: %+v", caps)
	}
	filterAll(t, f, []byte{cmdIAC, cmdWONT, optEcho})
	if caps.Echo {
		t.Fatal("WONT ECHO should clear the echo capability")
	}
	filterAll(t, f, []byte{cmdIAC, cmdDO, optEcho})
	if caps.Echo {
		t.Fatal("DO ECHO asks the server to echo; it does not mean the terminal echoes locally")
	}
}

func TestFilterSurvivesSplitSequences(t *testing.T) {
	testlog.Start(t)
	caps := &board.Caps{}
	f := &iacFilter{caps: caps}
	// One byte per feed across a negotiation and a data byte, as if
	// the sequence straddled two reads.
	var out []byte
	for _, b := range []byte{cmdIAC, cmdWILL, optSGA, 'Q'} {
		if data, ok := f.feed(b); ok {
			out = append(out, data)
		}
	}
	if string(out) != "Q" {
		t.Fatalf("split negotiation leaked: %q", out)
	}
	if !caps.SuppressGoAhead {
		t.Fatal("split negotiation not recorded")
	}
}

func TestReadLineTerminators(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"lf", "ONE\nTWO\n", []string{"ONE", "TWO"}},
		{"crlf", "ONE\r\nTWO\r\n", []string{"ONE", "TWO"}},
		{"bare cr", "ONE\rTWO\r", []string{"ONE", "TWO"}},
		{"mixed", "ONE\r\nTWO\rTHREE\n", []string{"ONE", "TWO", "THREE"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := bufio.NewReader(bytes.NewReader([]byte(tc.in)))
			f := &iacFilter{}
			for i, want := range tc.want {
				line, err := readLine(r, f)
				if err != nil {
					t.Fatalf("line %d: %v", i, err)
				}
				if string(line) != want {
					t.Fatalf("line %d: got %q want %q", i, line, want)
				}
			}
			if _, err := readLine(r, f); !errors.Is(err, io.EOF) {
				t.Fatalf("expected EOF after last line, got %v", err)
			}
		})
	}
}

func TestReadLineReturnsPartialLineAtEOF(t *testing.T) {
	testlog.Start(t)
	r := bufio.NewReader(bytes.NewReader([]byte("NO TERMINATOR")))
	line, err := readLine(r, &iacFilter{})
	if err != nil {
		t.Fatalf("partial line should be returned, got err %v", err)
	}
	if string(line) != "NO TERMINATOR" {
		t.Fatalf("got %q", line)
	}
}

func TestReadLineStripsInlineNegotiation(t *testing.T) {
	testlog.Start(t)
	in := append([]byte{cmdIAC, cmdDO, optEcho}, []byte("HI\r\n")...)
	r := bufio.NewReader(bytes.NewReader(in))
	line, err := readLine(r, &iacFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if string(line) != "HI" {
		t.Fatalf("got %q", line)
	}
}

// Legacy terminals terminate lines with a bare CR. The reader must
// hand the line over immediately, not wait for a following byte to
// rule out CRLF.
func TestReadLineBareCRReturnsPromptly(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	type result struct {
		line []byte
		err  error
	}
	got := make(chan result, 1)
	go func() {
		line, err := readLine(bufio.NewReader(server), &iacFilter{})
		got <- result{line, err}
	}()

	if _, err := client.Write([]byte("Q\r")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case res := <-got:
		if res.err != nil {
			t.Fatalf("readLine: %v", res.err)
		}
		if string(res.line) != "Q" {
			t.Fatalf("line = %q", res.line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bare-CR line not returned until more input arrives")
	}
}

func TestConnLoopBareCRAndLocalEcho(t *testing.T) {
	testlog.Start(t)
	engine, err := board.NewEngine("STATION-64")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	srv := NewServer(Config{Addr: ":0", Charset: petscii.CharsetUTF8}, engine)

	client, server := net.Pipe()
	defer client.Close()
	done := make(chan struct{})
	go func() {
		srv.handleConn(context.Background(), server)
		close(done)
	}()

	_ = client.SetDeadline(time.Now().Add(3 * time.Second))

	var sb strings.Builder
	buf := make([]byte, 1024)
	for !strings.Contains(sb.String(), "ENTER COMMAND:") {
		n, err := client.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			t.Fatalf("reading greeting: %v (got %q)", err, sb.String())
		}
	}

	// Announce local echo, then log off with a bare-CR line.
	if _, err := client.Write([]byte{cmdIAC, cmdWILL, optEcho, 'Q', '\r'}); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb.Reset()
	for {
		n, err := client.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	out := sb.String()
	if !strings.Contains(out, "GOODBYE") {
		t.Fatalf("no farewell for a bare-CR quit: %q", out)
	}
	if strings.Contains(out, "Q\r\n") {
		t.Fatalf("input echoed despite WILL ECHO: %q", out)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("connection loop did not finish")
	}
}

func TestCRLFTranslation(t *testing.T) {
	testlog.Start(t)
	cases := []struct{ in, want string }{
		{"A\nB\n", "A\r\nB\r\n"},
		{"already\r\nthere\r\n", "already\r\nthere\r\n"},
		{"no newline", "no newline"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := string(crlf([]byte(tc.in))); got != tc.want {
			t.Fatalf("crlf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	if cfg.Addr == "" || cfg.Charset == "" {
		t.Fatalf("defaults incomplete: %+v", cfg)
	}
	if cfg.LinesPerSecond <= 0 || cfg.LineBurst <= 0 {
		t.Fatalf("rate limit defaults disabled: %+v", cfg)
	}
}
