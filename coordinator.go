package sqlx

import (
	"fmt"

	"github.com/juju/loggo"

	"github.com/Code-Hex/sqlx-nestedtx/event"
)

var logger = loggo.GetLogger("sqlx.nestedtx")

// Coordinator keeps track of nested transaction levels of one session.
// It only does the bookkeeping and emits lifecycle events; the caller
// talks to the database around its transitions.
//
// A Coordinator is not safe for concurrent use.
type Coordinator struct {
	emitter      event.Emitter
	depth        int
	rollbackOnly bool
}

// NewCoordinator returns a coordinator at depth 0 that publishes to
// emitter. A nil emitter is replaced by event.Nop.
func NewCoordinator(emitter event.Emitter) *Coordinator {
	if emitter == nil {
		emitter = event.Nop
	}
	return &Coordinator{emitter: emitter}
}

// Depth returns the number of open transaction levels.
func (c *Coordinator) Depth() int { return c.depth }

// IsRollbackOnly reports whether an inner level rolled back and commit
// is refused until the stack unwinds.
func (c *Coordinator) IsRollbackOnly() bool { return c.rollbackOnly }

func (c *Coordinator) String() string {
	return fmt.Sprintf("depth=%d rollback_only=%t", c.depth, c.rollbackOnly)
}

// Begin opens a new nesting level unless an observer of BeforeBegin
// cancels it.
func (c *Coordinator) Begin() (Outcome, error) {
	if c.emit(event.BeforeBegin) {
		logger.Debugf("begin at depth %d cancelled", c.depth)
		return Cancelled, nil
	}
	c.depth++
	logger.Tracef("begin: depth %d", c.depth)
	c.emit(event.AfterBegin)
	return Applied, nil
}

// Commit closes the innermost level.
func (c *Coordinator) Commit() (Outcome, error) {
	if c.depth == 0 {
		return Applied, newTxError(NoTransaction, c.depth)
	}
	if c.rollbackOnly {
		return Applied, newTxError(RollbackOnly, c.depth)
	}
	if c.emit(event.BeforeCommit) {
		logger.Debugf("commit at depth %d cancelled", c.depth)
		return Cancelled, nil
	}
	c.depth--
	if c.depth == 0 {
		c.rollbackOnly = false
	}
	logger.Tracef("commit: depth %d", c.depth)
	c.emit(event.AfterCommit)
	return Applied, nil
}

// Rollback closes the innermost level. Rolling back a nested level
// marks every enclosing level rollback-only. Rollback cannot be vetoed,
// so the outcome is always Applied.
func (c *Coordinator) Rollback() (Outcome, error) {
	if c.depth == 0 {
		return Applied, newTxError(NoTransaction, c.depth)
	}
	if c.emit(event.BeforeRollback) {
		logger.Warningf("ignoring cancellation of rollback at depth %d", c.depth)
	}
	c.depth--
	if c.depth > 0 {
		if !c.rollbackOnly {
			logger.Debugf("nested rollback: depth %d is now rollback only", c.depth)
		}
		c.rollbackOnly = true
	} else {
		c.rollbackOnly = false
	}
	logger.Tracef("rollback: depth %d", c.depth)
	c.emit(event.AfterRollback)
	return Applied, nil
}

// emit dispatches name with a fresh signal and reports whether it was
// cancelled.
func (c *Coordinator) emit(name event.Name) bool {
	sig := event.NewSignal()
	c.emitter.Emit(event.Payload{
		Name:         name,
		Depth:        c.depth,
		RollbackOnly: c.rollbackOnly,
	}, sig)
	return sig.Cancelled()
}
