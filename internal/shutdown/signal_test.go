package shutdown

import (
	"sync"
	"testing"
	"time"
)

func TestSignalStartsUnset(t *testing.T) {
	sig := NewSignal()

	if sig.IsSet() {
		t.Error("new signal should not be set")
	}

	select {
	case <-sig.Done():
		t.Error("Done() channel should not be closed before Set()")
	default:
	}
}

func TestSetFiresSignal(t *testing.T) {
	sig := NewSignal()
	sig.Set()

	if !sig.IsSet() {
		t.Error("IsSet() = false after Set()")
	}

	select {
	case <-sig.Done():
	default:
		t.Error("Done() channel should be closed after Set()")
	}
}

func TestSetUnblocksAllWaiters(t *testing.T) {
	sig := NewSignal()

	const waiters = 8
	unblocked := make(chan struct{}, waiters)
	var ready sync.WaitGroup
	ready.Add(waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			ready.Done()
			<-sig.Done()
			unblocked <- struct{}{}
		}()
	}

	// All waiters parked before the signal fires.
	ready.Wait()
	sig.Set()

	for i := 0; i < waiters; i++ {
		select {
		case <-unblocked:
		case <-time.After(2 * time.Second):
			t.Fatalf("waiter %d still blocked after Set()", i)
		}
	}
}

func TestSetIsIdempotent(t *testing.T) {
	sig := NewSignal()

	sig.Set()
	sig.Set() // must not panic on the already-closed channel

	if !sig.IsSet() {
		t.Error("signal should remain set after repeated Set()")
	}
}

func TestConcurrentSetIsSafe(t *testing.T) {
	sig := NewSignal()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sig.Set()
		}()
	}
	wg.Wait()

	if !sig.IsSet() {
		t.Error("signal should be set after concurrent Set() calls")
	}
}
