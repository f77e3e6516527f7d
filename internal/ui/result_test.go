package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestResultRenderSuccess(t *testing.T) {
	out := NewSuccessResult("Server stopped", map[string]string{
		"Server": "192.168.1.50:5432",
	}).SetWidth(80).Render()

	for _, want := range []string{"SUCCESS", "Server stopped", "192.168.1.50:5432"} {
		if !strings.Contains(out, want) {
			t.Errorf("success render missing %q", want)
		}
	}
}

func TestResultRenderFailure(t *testing.T) {
	out := NewFailureResult("Server did not confirm shutdown",
		errors.New("connection refused"),
		[]string{"Check the address"},
	).SetWidth(80).Render()

	for _, want := range []string{"FAILED", "connection refused", "Troubleshooting", "Check the address"} {
		if !strings.Contains(out, want) {
			t.Errorf("failure render missing %q", want)
		}
	}
}

func TestResultRenderWarning(t *testing.T) {
	out := NewWarningResult("Multiple servers found", map[string]string{
		"Found": "3",
		"Using": "echoline on workshop at 192.168.4.16:5432",
	}).SetWidth(80).Render()

	for _, want := range []string{"WARNING", "Multiple servers found", "echoline on workshop"} {
		if !strings.Contains(out, want) {
			t.Errorf("warning render missing %q", want)
		}
	}
}

func TestResultAddDetail(t *testing.T) {
	r := NewSuccessResult("done", nil).AddDetail("Lines", "3")
	if r.Details["Lines"] != "3" {
		t.Errorf("AddDetail did not record the detail: %v", r.Details)
	}
}
