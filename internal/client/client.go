package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/muurk/echoline/internal/protocol"
)

const (
	// DefaultDialTimeout bounds how long Dial waits for a connection
	DefaultDialTimeout = 5 * time.Second

	// stopConfirmTimeout bounds how long Stop waits for the server to close
	// the connection after a STOP line
	stopConfirmTimeout = 5 * time.Second
)

// Client is a line-oriented TCP client for the echo service.
type Client struct {
	conn net.Conn
	pc   *protocol.Conn
}

// Dial connects to an echo server at addr (host:port). A zero timeout uses
// DefaultDialTimeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &Client{
		conn: conn,
		pc:   protocol.NewConn(conn),
	}, nil
}

// RemoteAddr returns the address of the connected server
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send sends one line and returns the server's echo. Reserved lines (the
// empty line and STOP) get no echo; use SendRaw or Stop for those.
func (c *Client) Send(line string) (string, error) {
	if err := c.pc.WriteLine(line); err != nil {
		return "", fmt.Errorf("failed to send line: %w", err)
	}

	echo, err := c.pc.ReadLine()
	if err != nil {
		return "", fmt.Errorf("failed to read echo: %w", err)
	}

	return echo, nil
}

// SendRaw sends one line without waiting for a response.
func (c *Client) SendRaw(line string) error {
	return c.pc.WriteLine(line)
}

// Stop sends the STOP line, asking the server to shut the whole service
// down, and waits for the server to close the connection as confirmation.
func (c *Client) Stop() error {
	if err := c.pc.WriteLine(protocol.StopCommand); err != nil {
		return fmt.Errorf("failed to send stop: %w", err)
	}

	// The server acknowledges by closing the connection, not by replying
	if err := c.conn.SetReadDeadline(time.Now().Add(stopConfirmTimeout)); err != nil {
		return fmt.Errorf("failed to set read deadline: %w", err)
	}

	line, err := c.pc.ReadLine()
	if err == nil {
		return fmt.Errorf("unexpected response to stop: %q", line)
	}
	if !errors.Is(err, io.EOF) {
		return fmt.Errorf("no shutdown confirmation: %w", err)
	}

	return nil
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.pc.Close()
}
