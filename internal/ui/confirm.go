package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmServiceShutdown displays a warning box and prompts the user to type
// "STOP" before shutting down a server. Stopping a server is the one client
// operation that affects every other connected client, so it gets the same
// typed-confirmation treatment a destructive operation would. Returns true
// if the user confirmed, false otherwise.
func ConfirmServiceShutdown(target string) bool {
	width := GetTerminalWidth()
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	// Title with warning marker
	titleLine := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true).
		Render(fmt.Sprintf("   ⚠  WARNING  ─  STOPPING %s", target))
	lines = append(lines, "")
	lines = append(lines, titleLine)
	lines = append(lines, "")

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range []string{
		"This shuts down the entire echo service, not just your connection",
		"Every other client's open connection will be force-closed",
		"The server stops listening and must be restarted manually",
	} {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	box := ResultBoxStyle(width, WarningColor).Render(strings.Join(lines, "\n"))

	fmt.Println(box)
	fmt.Println()

	// Prompt for confirmation; the confirmation word doubles as the
	// protocol line that will be sent
	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	fmt.Print(promptStyle.Render("To proceed, type \"STOP\" and press Enter: "))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}

	if strings.TrimSpace(input) == "STOP" {
		fmt.Println()
		return true
	}

	fmt.Println()
	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	fmt.Println(cancelStyle.Render("  Operation cancelled."))
	fmt.Println()
	return false
}
