package event

// Signal is a flow control flag attached to a single dispatch.
// Any observer may cancel it; the dispatcher stops invoking the
// remaining observers once it is cancelled.
// A Signal must not be reused across dispatches.
type Signal struct {
	cancelled bool
}

// NewSignal returns a fresh, not cancelled signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Cancel marks the signal as cancelled. Calling it again has no effect.
func (s *Signal) Cancel() {
	s.cancelled = true
}

// Cancelled reports whether some observer has cancelled the signal.
func (s *Signal) Cancelled() bool {
	return s.cancelled
}
