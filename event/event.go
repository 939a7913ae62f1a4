package event

import "fmt"

// Name identifies a transaction lifecycle point.
type Name int

const (
	BeforeBegin Name = iota + 1
	AfterBegin
	BeforeCommit
	AfterCommit
	BeforeRollback
	AfterRollback
)

// Names lists every lifecycle point in emission order.
var Names = []Name{
	BeforeBegin,
	AfterBegin,
	BeforeCommit,
	AfterCommit,
	BeforeRollback,
	AfterRollback,
}

func (n Name) String() string {
	switch n {
	case BeforeBegin:
		return "before_begin"
	case AfterBegin:
		return "after_begin"
	case BeforeCommit:
		return "before_commit"
	case AfterCommit:
		return "after_commit"
	case BeforeRollback:
		return "before_rollback"
	case AfterRollback:
		return "after_rollback"
	}
	return fmt.Sprintf("event(%d)", int(n))
}

// Before reports whether n is emitted ahead of the state change.
func (n Name) Before() bool {
	return n == BeforeBegin || n == BeforeCommit || n == BeforeRollback
}

// Vetoable reports whether cancelling n stops the transition.
// Rollback can not be refused, so BeforeRollback is not vetoable.
func (n Name) Vetoable() bool {
	return n == BeforeBegin || n == BeforeCommit
}

// Payload is what observers receive alongside the signal. Depth and
// RollbackOnly describe the coordinator at the moment of emission: for
// Before events that is the state prior to the transition, for After
// events the state after it.
type Payload struct {
	Name         Name
	Depth        int
	RollbackOnly bool
}

func (p Payload) String() string {
	return fmt.Sprintf("%s depth=%d rollback_only=%t", p.Name, p.Depth, p.RollbackOnly)
}

// Observer is invoked synchronously for each matching dispatch.
type Observer func(Payload, *Signal)

// Emitter publishes a payload to its observers.
// Implementations must run observers synchronously and stop as soon as
// sig is cancelled.
type Emitter interface {
	Emit(p Payload, sig *Signal)
}

// Nop is an Emitter without observers.
var Nop Emitter = nopEmitter{}

type nopEmitter struct{}

func (nopEmitter) Emit(Payload, *Signal) {}
