package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SessionConn is the connection surface the interactive session needs.
// *client.Client satisfies it.
type SessionConn interface {
	// Send sends one ordinary line and returns its echo.
	Send(line string) (string, error)
	// Stop sends the protocol's STOP line and waits for the server to
	// confirm by closing the connection.
	Stop() error
}

// Messages for async operations
type echoMsg struct {
	line string
	echo string
}
type echoErrMsg struct{ err error }
type stoppedMsg struct{ err error }

// sessionKeyMap defines key bindings for the session screen
type sessionKeyMap struct {
	Send key.Binding
	Quit key.Binding
}

var sessionKeys = sessionKeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "leave session"),
	),
}

// sessionModel is the Bubble Tea model for the interactive echo session.
// It keeps a transcript of sent lines and their echoes, a text input for
// the next line, and a spinner shown while an echo is outstanding.
type sessionModel struct {
	conn SessionConn
	addr string

	input      textinput.Model
	spin       spinner.Model
	transcript []string
	waiting    bool
	stopping   bool
	quitting   bool
	err        error
}

func newSessionModel(conn SessionConn, addr string) sessionModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = PromptStyle
	ti.Placeholder = "line to echo (STOP shuts the server down)"
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return sessionModel{
		conn:  conn,
		addr:  addr,
		input: ti,
		spin:  sp,
	}
}

// Init implements tea.Model
func (m sessionModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, sessionKeys.Quit):
			// Leave the session; the server keeps running
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, sessionKeys.Send):
			if m.waiting {
				return m, nil
			}
			line := m.input.Value()
			if line == "" {
				// The protocol reserves the empty line for closing the
				// connection; quitting the session does that anyway
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			if line == "STOP" {
				m.stopping = true
				return m, tea.Batch(m.spin.Tick, sendStop(m.conn))
			}
			return m, tea.Batch(m.spin.Tick, sendLine(m.conn, line))
		}

	case echoMsg:
		m.waiting = false
		m.transcript = append(m.transcript,
			SentLineStyle.Render(SentMarker+" "+msg.line),
			EchoLineStyle.Render(EchoMarker+" "+msg.echo),
		)
		return m, nil

	case echoErrMsg:
		m.waiting = false
		m.quitting = true
		m.err = msg.err
		return m, tea.Quit

	case stoppedMsg:
		m.waiting = false
		m.quitting = true
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.transcript = append(m.transcript,
				NoticeStyle.Render(NoticeMarker+" STOP sent, server confirmed shutdown"))
		}
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m sessionModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("ECHO SESSION"))
	b.WriteString(" ")
	b.WriteString(AddrStyle.Render(m.addr))
	b.WriteString("\n\n")

	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.transcript) > 0 {
		b.WriteString("\n")
	}

	switch {
	case m.quitting:
		b.WriteString(NoticeStyle.Render(NoticeMarker + " session closed"))
		b.WriteString("\n")
	case m.waiting:
		if m.stopping {
			b.WriteString(m.spin.View() + NoticeStyle.Render(" stopping server..."))
		} else {
			b.WriteString(m.spin.View() + NoticeStyle.Render(" waiting for echo..."))
		}
		b.WriteString("\n")
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(NoticeStyle.Render("enter: send  •  esc: leave session"))
		b.WriteString("\n")
	}

	return b.String()
}

// sendLine sends one line and reports its echo as a message
func sendLine(conn SessionConn, line string) tea.Cmd {
	return func() tea.Msg {
		echo, err := conn.Send(line)
		if err != nil {
			return echoErrMsg{err: err}
		}
		return echoMsg{line: line, echo: echo}
	}
}

// sendStop asks the server to shut down and waits for confirmation
func sendStop(conn SessionConn) tea.Cmd {
	return func() tea.Msg {
		return stoppedMsg{err: conn.Stop()}
	}
}

// RunSession runs the interactive echo session against conn until the user
// leaves, the server shuts down, or the connection fails. The addr is shown
// in the session header.
func RunSession(conn SessionConn, addr string) error {
	p := tea.NewProgram(newSessionModel(conn, addr))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	if m, ok := finalModel.(sessionModel); ok && m.err != nil {
		return fmt.Errorf("session ended: %w", m.err)
	}
	return nil
}
