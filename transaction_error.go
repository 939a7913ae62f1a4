package sqlx

import "fmt"

const (
	noTxErrMsg    = "Tried to finish a transaction but no transaction is active"
	commitErrMsg  = "Tried to commit but already rollbacked in nested transaction"
	unknownErrMsg = "Unknown nested transaction error"
)

// TxErrorKind is the closed set of illegal nested transaction operations.
type TxErrorKind int

const (
	// NoTransaction means commit or rollback was attempted at depth 0.
	NoTransaction TxErrorKind = iota + 1
	// RollbackOnly means commit was attempted after an inner transaction
	// rolled back and the enclosing levels have not rolled back yet.
	RollbackOnly
)

func (k TxErrorKind) String() string {
	switch k {
	case NoTransaction:
		return "no transaction"
	case RollbackOnly:
		return "rollback only"
	}
	return fmt.Sprintf("TxErrorKind(%d)", int(k))
}

// TxError reports misuse of the nested transaction stack.
// It is never retryable.
type TxError struct {
	Kind TxErrorKind
	// Depth is the nesting depth at the time of the failed call.
	Depth int
}

var (
	// ErrNoTransaction matches every *TxError of kind NoTransaction.
	ErrNoTransaction error = kindError(NoTransaction)
	// ErrRollbackOnly matches every *TxError of kind RollbackOnly.
	ErrRollbackOnly error = kindError(RollbackOnly)
)

// kindError is the immutable sentinel form of a TxErrorKind.
type kindError TxErrorKind

func (k kindError) Error() string {
	return TxErrorKind(k).message()
}

func (k TxErrorKind) message() string {
	switch k {
	case NoTransaction:
		return noTxErrMsg
	case RollbackOnly:
		return commitErrMsg
	}
	return unknownErrMsg
}

func (e *TxError) Error() string {
	return e.Kind.message()
}

// Is makes errors.Is match on Kind, against the sentinels as well as
// other *TxError values.
func (e *TxError) Is(target error) bool {
	switch t := target.(type) {
	case kindError:
		return TxErrorKind(t) == e.Kind
	case *TxError:
		return t.Kind == e.Kind
	}
	return false
}

func newTxError(kind TxErrorKind, depth int) *TxError {
	return &TxError{Kind: kind, Depth: depth}
}
