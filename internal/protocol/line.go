package protocol

// StopCommand is the literal line that asks the service to shut down.
const StopCommand = "STOP"

// Action describes what the server must do with one received line.
type Action int

const (
	// ActionEcho echoes the line back unchanged.
	ActionEcho Action = iota
	// ActionClose closes the connection without a response.
	ActionClose
	// ActionShutdown closes the connection and initiates service shutdown.
	ActionShutdown
)

// Classify maps one received line to the action the protocol prescribes.
// The match is exact and case sensitive: only the empty line and the
// literal "STOP" are special.
func Classify(line string) Action {
	switch line {
	case "":
		return ActionClose
	case StopCommand:
		return ActionShutdown
	default:
		return ActionEcho
	}
}

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionEcho:
		return "echo"
	case ActionClose:
		return "close"
	case ActionShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
