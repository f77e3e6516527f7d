package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Conn frames a byte stream into newline-delimited protocol lines.
//
// Reads are buffered; writes are buffered and flushed on every WriteLine so
// a peer waiting for its echo is never stuck behind a partial buffer.
type Conn struct {
	rwc io.ReadWriteCloser
	br  *bufio.Reader
	bw  *bufio.Writer
}

// NewConn wraps rwc, typically a net.Conn, in protocol line framing.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		rwc: rwc,
		br:  bufio.NewReader(rwc),
		bw:  bufio.NewWriter(rwc),
	}
}

// ReadLine reads the next line and strips its terminator ("\n" or "\r\n").
//
// A clean end of stream is reported as io.EOF. If the stream ends in an
// unterminated line, that line is returned first with a nil error and the
// io.EOF is reported by the following call.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// WriteLine writes line followed by the line terminator and flushes, so the
// peer sees the response immediately.
func (c *Conn) WriteLine(line string) error {
	if _, err := c.bw.WriteString(line); err != nil {
		return err
	}
	if err := c.bw.WriteByte('\n'); err != nil {
		return err
	}
	return c.bw.Flush()
}

// Close flushes any buffered output and closes the underlying connection.
// The flush is best-effort: on the shutdown path the peer, or a closer
// goroutine, may already have closed the socket. Closing an already-closed
// connection is safe; the duplicate close error surfaces here and is
// swallowed by callers.
func (c *Conn) Close() error {
	_ = c.bw.Flush()
	return c.rwc.Close()
}
