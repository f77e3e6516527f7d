package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrinterComponentOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHeader("Server Discovery", "echoline-client discover", map[string]string{
		"Timeout": "5s",
	})
	p.PrintSuccess("Server stopped", map[string]string{
		"Server": "127.0.0.1:5432",
	})
	p.PrintError("Server did not confirm shutdown",
		errors.New("connection refused"),
		[]string{"Check the address"})

	out := buf.String()
	for _, want := range []string{
		"SERVER DISCOVERY", "echoline-client discover", "Timeout",
		"SUCCESS", "127.0.0.1:5432",
		"FAILED", "connection refused", "Troubleshooting",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printer output missing %q", want)
		}
	}
}

func TestPrinterLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Println("one")
	p.PrintLines("two", "three")
	p.Newline()

	if got, want := buf.String(), "one\ntwo\nthree\n\n"; got != want {
		t.Errorf("printer wrote %q, want %q", got, want)
	}
}
