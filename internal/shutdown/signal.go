package shutdown

import "sync"

// Signal is a write-once broadcast latch used to coordinate graceful
// termination across independent goroutines.
//
// Set marks the signal fired and is safe to call any number of times from any
// goroutine; only the first call has an effect. Done returns a channel that is
// closed once the signal fires, so any number of goroutines can block on it.
// IsSet is the non-blocking form, used to decide whether an I/O error was
// caused by shutdown or is a genuine failure.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns a new, unfired Signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Set fires the signal, unblocking every waiter. Later calls are no-ops.
func (s *Signal) Set() {
	s.once.Do(func() { close(s.done) })
}

// Done returns the channel that is closed when the signal fires. Receive from
// it to block until shutdown is requested.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// IsSet reports whether the signal has fired, without blocking.
func (s *Signal) IsSet() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
