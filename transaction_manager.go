package sqlx

import (
	"context"
	"database/sql"

	sqlxx "github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Code-Hex/sqlx-nestedtx/event"
)

type DB struct {
	*sqlxx.DB
	tx *Txm

	coord *Coordinator
	hub   *event.Hub
}

// Txm is the transaction shared by every nesting level of a DB.
// Only the outermost commit or rollback reaches the database.
type Txm struct {
	*sqlxx.Tx

	coord *Coordinator
	done  bool
}

// Open returns pointer of DB struct to manage transaction
// It struct wrapped *github.com/jmoiron/sqlx.DB
// So we can use some methods of *github.com/jmoiron/sqlx.DB
func Open(driverName, dataSourceName string, opts ...Option) (*DB, error) {
	db, err := sqlxx.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	return NewDb(db, opts...), nil
}

// MustOpen returns only pointer of DB struct to manage transaction
// But If you cause something error, It will do panic
func MustOpen(driverName, dataSourceName string, opts ...Option) *DB {
	db, err := Open(driverName, dataSourceName, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// NewDb wraps an already opened *github.com/jmoiron/sqlx.DB.
func NewDb(db *sqlxx.DB, opts ...Option) *DB {
	o := newOptions(opts)
	return &DB{
		DB:    db,
		coord: NewCoordinator(o.emitter),
		hub:   o.hub,
	}
}

// Close closes *github.com/jmoiron/sqlx.DB
func (db *DB) Close() error {
	return db.DB.Close()
}

// Sql returns *sql.DB
// The reason for writing this method is that it needs to be written as db.DB.DB to access *sql.DB
func (db *DB) Sql() *sql.DB {
	return db.DB.DB
}

// Status is a read-only view of the nesting bookkeeping of a DB.
type Status interface {
	Depth() int
	IsRollbackOnly() bool
	String() string
}

type status struct{ c *Coordinator }

func (s status) Depth() int           { return s.c.Depth() }
func (s status) IsRollbackOnly() bool { return s.c.IsRollbackOnly() }
func (s status) String() string       { return s.c.String() }

// Coordinator returns the nesting bookkeeping of db. Transitions go
// through BeginTxm, Txm.Commit and Txm.Rollback only.
func (db *DB) Coordinator() Status {
	return status{c: db.coord}
}

// Subscribe registers observer on the hub db publishes to.
// It fails if db was configured WithEmitter.
func (db *DB) Subscribe(name event.Name, observer event.Observer) (unsubscribe func(), err error) {
	if db.hub == nil {
		return nil, errors.New("lifecycle events go to a custom emitter")
	}
	return db.hub.Subscribe(name, observer), nil
}

// BeginTxm starts a transaction, or opens one more nesting level of the
// active one. It returns Cancelled with a nil *Txm if an observer vetoed
// the begin.
func (db *DB) BeginTxm() (*Txm, Outcome, error) {
	return db.begin(func() (*sqlxx.Tx, error) {
		return db.DB.Beginx()
	})
}

func (db *DB) MustBeginTxm() *Txm {
	txm, outcome, err := db.BeginTxm()
	if err != nil {
		panic(err)
	}
	if outcome == Cancelled {
		panic(errors.New("begin cancelled"))
	}
	return txm
}

// BeginTxxm is BeginTxm with a context and options for the outermost
// transaction. Nested levels ignore ctx and opts.
func (db *DB) BeginTxxm(ctx context.Context, opts *sql.TxOptions) (*Txm, Outcome, error) {
	return db.begin(func() (*sqlxx.Tx, error) {
		return db.DB.BeginTxx(ctx, opts)
	})
}

func (db *DB) MustBeginTxxm(ctx context.Context, opts *sql.TxOptions) *Txm {
	txm, outcome, err := db.BeginTxxm(ctx, opts)
	if err != nil {
		panic(err)
	}
	if outcome == Cancelled {
		panic(errors.New("begin cancelled"))
	}
	return txm
}

func (db *DB) begin(start func() (*sqlxx.Tx, error)) (*Txm, Outcome, error) {
	if depth := db.coord.Depth(); depth > 0 {
		if db.tx == nil || db.tx.done {
			return nil, Applied, errors.Errorf("no open transaction at depth %d", depth)
		}
		outcome, err := db.coord.Begin()
		if err != nil || outcome == Cancelled {
			return nil, outcome, err
		}
		return db.tx, Applied, nil
	}

	tx, err := start()
	if err != nil {
		return nil, Applied, errors.Wrap(err, "failed to begin transaction")
	}
	outcome, err := db.coord.Begin()
	if err != nil || outcome == Cancelled {
		if rerr := tx.Rollback(); rerr != nil {
			return nil, outcome, errors.Wrap(rerr, "failed to release vetoed transaction")
		}
		return nil, outcome, err
	}
	db.tx = &Txm{Tx: tx, coord: db.coord}
	return db.tx, Applied, nil
}

// Depth returns the number of open nesting levels, 0 once the
// transaction is finished.
func (t *Txm) Depth() int {
	if t.done {
		return 0
	}
	return t.coord.Depth()
}

// IsRollbackOnly reports whether a nested level rolled back.
func (t *Txm) IsRollbackOnly() bool {
	return !t.done && t.coord.IsRollbackOnly()
}

// Commit closes the innermost level. The database transaction is
// committed when the outermost level commits.
func (t *Txm) Commit() (Outcome, error) {
	if t.done {
		return Applied, newTxError(NoTransaction, 0)
	}
	outcome, err := t.coord.Commit()
	if err != nil || outcome == Cancelled {
		return outcome, err
	}
	if t.coord.Depth() > 0 {
		return Applied, nil
	}
	t.done = true
	return Applied, errors.Wrap(t.Tx.Commit(), "failed to commit transaction")
}

// Rollback closes the innermost level. A nested rollback makes every
// enclosing Commit fail with ErrRollbackOnly; the database transaction
// is rolled back when the outermost level rolls back.
func (t *Txm) Rollback() error {
	if t.done {
		return newTxError(NoTransaction, 0)
	}
	if _, err := t.coord.Rollback(); err != nil {
		return err
	}
	if t.coord.Depth() > 0 {
		return nil
	}
	t.done = true
	return errors.Wrap(t.Tx.Rollback(), "failed to rollback transaction")
}

// MustRollback rolls back every open level.
func (t *Txm) MustRollback() {
	for {
		if err := t.Rollback(); err != nil {
			panic(err)
		}
		if t.done {
			return
		}
	}
}

// MustCommit commits every open level.
func (t *Txm) MustCommit() {
	for {
		outcome, err := t.Commit()
		if err != nil {
			panic(err)
		}
		if outcome == Cancelled {
			panic(errors.Errorf("commit at depth %d cancelled", t.coord.Depth()))
		}
		if t.done {
			return
		}
	}
}
