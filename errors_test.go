package sqlx

import (
	"testing"

	"github.com/pkg/errors"
)

func TestErrors(t *testing.T) {
	noTx := newTxError(NoTransaction, 0)
	if noTx.Error() != noTxErrMsg {
		t.Fatal("Something error")
	}

	cterr := newTxError(RollbackOnly, 3)
	if cterr.Error() != commitErrMsg {
		t.Fatal("Something error")
	}

	if (&TxError{}).Error() != unknownErrMsg {
		t.Fatal("Something error")
	}

	if ErrNoTransaction.Error() != noTxErrMsg || ErrRollbackOnly.Error() != commitErrMsg {
		t.Fatal("Sentinels must carry the kind message")
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := errors.Wrap(newTxError(RollbackOnly, 2), "commit")
	if !errors.Is(wrapped, ErrRollbackOnly) {
		t.Fatal("Failed to match wrapped rollback only error")
	}
	if errors.Is(wrapped, ErrNoTransaction) {
		t.Fatal("Rollback only error must not match no transaction")
	}

	if !errors.Is(wrapped, &TxError{Kind: RollbackOnly}) {
		t.Fatal("Failed to match by kind")
	}
	if errors.Is(ErrRollbackOnly, ErrNoTransaction) {
		t.Fatal("Sentinels of different kinds must not match")
	}

	var txErr *TxError
	if !errors.As(wrapped, &txErr) || txErr.Depth != 2 {
		t.Fatalf("Failed to extract TxError: %#v", txErr)
	}
	if txErr.Kind.String() != "rollback only" || NoTransaction.String() != "no transaction" {
		t.Fatal("Unexpected kind names")
	}
}
