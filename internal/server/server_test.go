package server

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer runs a server on an ephemeral port and returns its address
// and the channel Serve's result will arrive on. Cleanup stops the server and
// waits for Serve to return so tests never leave goroutines behind.
func startTestServer(t *testing.T, cfg *Config) (*Server, string, chan error) {
	t.Helper()

	if cfg == nil {
		cfg = &Config{GracePeriod: 2 * time.Second}
	}

	srv, err := New(cfg)
	require.NoError(t, err, "Failed to create server")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to listen on ephemeral port")

	serveErr := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		serveErr <- srv.Serve(ln)
		close(finished)
	}()

	t.Cleanup(func() {
		srv.Stop()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after Stop")
		}
	})

	return srv, ln.Addr().String(), serveErr
}

func dialServer(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err, "Failed to connect to server")
	return conn
}

func sendLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := fmt.Fprintf(conn, "%s\n", line)
	require.NoError(t, err, "Failed to send line")
}

func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err, "Failed to read echo")
	return strings.TrimSuffix(line, "\n")
}

func waitServe(t *testing.T, serveErr chan error) error {
	t.Helper()
	select {
	case err := <-serveErr:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
		return nil
	}
}

func TestEchoSingleLine(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()

	sendLine(t, conn, "hello")
	assert.Equal(t, "hello", readLine(t, bufio.NewReader(conn)))
}

func TestEchoPreservesOrder(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()

	// Pipeline several lines before reading any echoes
	_, err := conn.Write([]byte("first\nsecond\nthird\n"))
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	assert.Equal(t, "first", readLine(t, reader))
	assert.Equal(t, "second", readLine(t, reader))
	assert.Equal(t, "third", readLine(t, reader))
}

func TestEchoNormalizesCRLF(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()

	_, err := conn.Write([]byte("windows line\r\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "windows line\n", line)
}

func TestClientsEchoIndependently(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	connA := dialServer(t, addr)
	defer connA.Close()
	connB := dialServer(t, addr)
	defer connB.Close()

	readerA := bufio.NewReader(connA)
	readerB := bufio.NewReader(connB)

	sendLine(t, connA, "from A")
	sendLine(t, connB, "from B")

	assert.Equal(t, "from A", readLine(t, readerA))
	assert.Equal(t, "from B", readLine(t, readerB))

	// Interleave the other way around
	sendLine(t, connB, "B again")
	sendLine(t, connA, "A again")

	assert.Equal(t, "A again", readLine(t, readerA))
	assert.Equal(t, "B again", readLine(t, readerB))
}

func TestEmptyLineClosesConnection(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	sendLine(t, conn, "before")
	assert.Equal(t, "before", readLine(t, reader))

	// Empty line closes the connection with no response
	sendLine(t, conn, "")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	data, err := io.ReadAll(conn)
	assert.NoError(t, err, "connection should close cleanly, not time out")
	assert.Empty(t, data, "empty line must not be echoed")

	// The service itself keeps running
	other := dialServer(t, addr)
	defer other.Close()
	sendLine(t, other, "still alive")
	assert.Equal(t, "still alive", readLine(t, bufio.NewReader(other)))
}

func TestClosingOneConnectionLeavesOthersAlone(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	survivor := dialServer(t, addr)
	defer survivor.Close()
	doomed := dialServer(t, addr)
	defer doomed.Close()

	sendLine(t, doomed, "")
	_, err := doomed.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	sendLine(t, survivor, "unaffected")
	assert.Equal(t, "unaffected", readLine(t, bufio.NewReader(survivor)))
}

func TestStopLineShutsDownService(t *testing.T) {
	srv, addr, serveErr := startTestServer(t, nil)

	// Several idle connections that never send anything
	var idle []net.Conn
	for i := 0; i < 3; i++ {
		conn := dialServer(t, addr)
		defer conn.Close()
		idle = append(idle, conn)
	}

	sender := dialServer(t, addr)
	defer sender.Close()
	sendLine(t, sender, "STOP")

	// A clean shutdown: Serve returns nil
	assert.NoError(t, waitServe(t, serveErr))
	assert.Equal(t, 0, srv.ActiveConnections())

	// STOP is not echoed; the sender's connection just closes
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(2*time.Second)))
	data, err := io.ReadAll(sender)
	assert.NoError(t, err)
	assert.Empty(t, data)

	// Idle connections are closed even though they were blocked in reads
	for _, conn := range idle {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err := conn.Read(make([]byte, 1))
		assert.ErrorIs(t, err, io.EOF)
	}

	// No new connections are accepted
	_, err = net.Dial("tcp", addr)
	assert.Error(t, err, "dial should fail after shutdown")
}

func TestStopRequiresExactMatch(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// None of these shut the service down; they are ordinary lines
	for _, line := range []string{"stop", "Stop", "STOP ", " STOP", "STOPPED", "please STOP"} {
		sendLine(t, conn, line)
		assert.Equal(t, line, readLine(t, reader))
	}

	other := dialServer(t, addr)
	defer other.Close()
	sendLine(t, other, "service still up")
	assert.Equal(t, "service still up", readLine(t, bufio.NewReader(other)))
}

func TestStopMethodShutsDownService(t *testing.T) {
	srv, addr, serveErr := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()
	sendLine(t, conn, "hello")
	assert.Equal(t, "hello", readLine(t, bufio.NewReader(conn)))

	srv.Stop()

	assert.NoError(t, waitServe(t, serveErr))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestStopIsIdempotentUnderRace(t *testing.T) {
	srv, addr, serveErr := startTestServer(t, nil)

	// Many clients race to stop the service at once
	const stoppers = 8
	for i := 0; i < stoppers; i++ {
		conn := dialServer(t, addr)
		defer conn.Close()
		go func(c net.Conn) {
			_, _ = fmt.Fprintf(c, "STOP\n")
		}(conn)
	}
	srv.Stop()

	assert.NoError(t, waitServe(t, serveErr))
	assert.Equal(t, 0, srv.ActiveConnections())
}

func TestAcceptFailurePropagates(t *testing.T) {
	cfg := &Config{GracePeriod: 2 * time.Second}
	srv, err := New(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	conn := dialServer(t, addr)
	defer conn.Close()
	sendLine(t, conn, "hello")
	assert.Equal(t, "hello", readLine(t, bufio.NewReader(conn)))

	// Close the listener behind the server's back. Stop was never called,
	// so the accept failure is genuine and must be returned, not retried.
	require.NoError(t, ln.Close())

	err = waitServe(t, serveErr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accept")

	// The failure still tears down existing connections
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestUnterminatedFinalLineIsEchoed(t *testing.T) {
	_, addr, _ := startTestServer(t, nil)

	conn := dialServer(t, addr)
	defer conn.Close()

	tcpConn, ok := conn.(*net.TCPConn)
	require.True(t, ok)

	_, err := tcpConn.Write([]byte("no newline"))
	require.NoError(t, err)
	require.NoError(t, tcpConn.CloseWrite())

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "no newline\n", line)
}

func TestActiveConnectionsTracksHandlers(t *testing.T) {
	srv, addr, _ := startTestServer(t, nil)

	connA := dialServer(t, addr)
	defer connA.Close()
	connB := dialServer(t, addr)
	defer connB.Close()

	require.Eventually(t, func() bool {
		return srv.ActiveConnections() == 2
	}, 2*time.Second, 10*time.Millisecond)

	sendLine(t, connA, "")
	sendLine(t, connB, "")

	require.Eventually(t, func() bool {
		return srv.ActiveConnections() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewAppliesGracePeriodDefault(t *testing.T) {
	srv, err := New(&Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultGracePeriod, srv.config.GracePeriod)
}

func TestNewLeavesCallerConfigUntouched(t *testing.T) {
	cfg := &Config{Port: 7000}

	srv, err := New(cfg)
	require.NoError(t, err)

	// The default is applied to the server's own copy only
	assert.Equal(t, DefaultGracePeriod, srv.config.GracePeriod)
	assert.Equal(t, time.Duration(0), cfg.GracePeriod)

	// And later caller edits don't reach into the running server
	cfg.Port = 9999
	assert.Equal(t, 7000, srv.config.Port)
}

func TestWebSocketBridge(t *testing.T) {
	wsPort := freePort(t)
	_, addr, serveErr := startTestServer(t, &Config{
		GracePeriod: 2 * time.Second,
		WSPort:      wsPort,
	})

	wsURL := fmt.Sprintf("ws://127.0.0.1:%d/echo", wsPort)

	var ws *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return false
		}
		ws = conn
		return true
	}, 2*time.Second, 50*time.Millisecond, "bridge did not come up")
	defer ws.Close()

	// Text messages echo like TCP lines
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("over websocket")))
	msgType, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "over websocket", string(data))

	// An empty message closes only this WebSocket connection
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("")))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure),
		"expected a normal close, got %v", err)

	// The TCP side is untouched
	conn := dialServer(t, addr)
	defer conn.Close()
	sendLine(t, conn, "tcp still up")
	assert.Equal(t, "tcp still up", readLine(t, bufio.NewReader(conn)))

	// STOP over the bridge shuts the whole service down
	ws2, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws2.Close()
	require.NoError(t, ws2.WriteMessage(websocket.TextMessage, []byte("STOP")))

	assert.NoError(t, waitServe(t, serveErr))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF, "TCP connections close when STOP arrives over the bridge")
}

// freePort reserves an ephemeral port and releases it for the bridge to bind.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
