package protocol

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Action
	}{
		{"ordinary line", "hello", ActionEcho},
		{"line with spaces", "hello there", ActionEcho},
		{"empty line", "", ActionClose},
		{"stop command", "STOP", ActionShutdown},
		{"stop is case sensitive", "stop", ActionEcho},
		{"stop with trailing space is ordinary", "STOP ", ActionEcho},
		{"stop embedded in a longer line is ordinary", "STOP THAT", ActionEcho},
		{"whitespace-only line is ordinary", " ", ActionEcho},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionEcho, "echo"},
		{ActionClose, "close"},
		{ActionShutdown, "shutdown"},
		{Action(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.action.String(); got != tt.want {
				t.Errorf("Action(%d).String() = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}
