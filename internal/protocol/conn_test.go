package protocol

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// memConn is an in-memory ReadWriteCloser for exercising line framing
// without a real socket.
type memConn struct {
	io.Reader
	out    strings.Builder
	closes int
}

func (m *memConn) Write(p []byte) (int, error) { return m.out.WriteString(string(p)) }

func (m *memConn) Close() error {
	m.closes++
	if m.closes > 1 {
		return errors.New("already closed")
	}
	return nil
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lines []string // expected lines before io.EOF
	}{
		{"single line", "hello\n", []string{"hello"}},
		{"two lines", "one\ntwo\n", []string{"one", "two"}},
		{"crlf terminator stripped", "hello\r\n", []string{"hello"}},
		{"empty line", "\n", []string{""}},
		{"empty crlf line", "\r\n", []string{""}},
		{"unterminated trailing line", "head\ntail", []string{"head", "tail"}},
		{"unterminated line with bare cr", "tail\r", []string{"tail"}},
		{"empty stream", "", nil},
		{"stop command line", "STOP\n", []string{"STOP"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConn(&memConn{Reader: strings.NewReader(tt.input)})

			for i, want := range tt.lines {
				got, err := c.ReadLine()
				if err != nil {
					t.Fatalf("line %d: ReadLine() error = %v", i, err)
				}
				if got != want {
					t.Errorf("line %d: ReadLine() = %q, want %q", i, got, want)
				}
			}

			if _, err := c.ReadLine(); !errors.Is(err, io.EOF) {
				t.Errorf("after %d lines: ReadLine() error = %v, want io.EOF", len(tt.lines), err)
			}
		})
	}
}

func TestWriteLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"ordinary line", "hello", "hello\n"},
		{"empty line", "", "\n"},
		{"line content is not escaped", "a\tb", "a\tb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &memConn{Reader: strings.NewReader("")}
			c := NewConn(m)

			if err := c.WriteLine(tt.line); err != nil {
				t.Fatalf("WriteLine(%q) error = %v", tt.line, err)
			}
			if got := m.out.String(); got != tt.want {
				t.Errorf("WriteLine(%q) wrote %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestWriteLineFlushesImmediately(t *testing.T) {
	// net.Pipe is unbuffered: the write below only completes if WriteLine
	// flushes, so a blocked reader on the far end is the proof.
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()

	go func() {
		c := NewConn(local)
		_ = c.WriteLine("ping")
	}()

	_ = remote.SetReadDeadline(time.Now().Add(2 * time.Second))
	got, err := NewConn(remote).ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}
	if got != "ping" {
		t.Errorf("ReadLine() = %q, want %q", got, "ping")
	}
}

func TestCloseSwallowsNothingButIsSafeTwice(t *testing.T) {
	m := &memConn{Reader: strings.NewReader("")}
	c := NewConn(m)

	if err := c.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	// The duplicate close error is reported to the caller, who swallows it;
	// the call itself must be safe.
	if err := c.Close(); err == nil {
		t.Error("second Close() should report the underlying duplicate-close error")
	}
	if m.closes != 2 {
		t.Errorf("underlying Close called %d times, want 2", m.closes)
	}
}
