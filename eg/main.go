package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	sqlx "github.com/Code-Hex/sqlx-nestedtx"
	"github.com/Code-Hex/sqlx-nestedtx/event"
	"github.com/Code-Hex/sqlx-nestedtx/metrics"
	"github.com/Code-Hex/sqlx-nestedtx/tm"
)

type Person struct {
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	AddedAt   time.Time `db:"added_at"`
}

func (p *Person) String() string {
	return fmt.Sprintf("%s %s: (%s) %s", p.FirstName, p.LastName, p.Email, p.AddedAt.String())
}

func dsn() string {
	// You can use environment vatiables from .envrc.
	// See https://github.com/direnv/direnv If you want to use .envrc.
	return os.Getenv("SQLX_MYSQL_DSN")
}

func Connect(driver, dsn string, opts ...sqlx.Option) *sqlx.DB {
	db := sqlx.MustOpen(driver, dsn, opts...)
	if err := db.Ping(); err != nil {
		panic(err)
	}
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return db
}

func main() {
	var (
		driver  string
		source  string
		logging string
	)
	fs := gnuflag.NewFlagSet("eg", gnuflag.ExitOnError)
	fs.StringVar(&driver, "driver", "mysql", "database driver: mysql, postgres or sqlite3")
	fs.StringVar(&source, "dsn", dsn(), "data source name")
	fs.StringVar(&logging, "logging-config", "sqlx.nestedtx=DEBUG", "loggo configuration")
	if err := fs.Parse(true, os.Args[1:]); err != nil {
		panic(err)
	}
	if err := loggo.ConfigureLoggers(logging); err != nil {
		panic(err)
	}

	switch driver {
	case "mysql":
		Mysql = true
	case "postgres":
		Postgres = true
	case "sqlite3":
		Sqlite = true
		if source == "" {
			source = ":memory:"
		}
	default:
		panic(errors.Errorf("unknown driver %q", driver))
	}

	hub := event.NewHub()
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	db := Connect(driver, source, sqlx.WithHub(hub), sqlx.WithEmitter(collector.Wrap(hub)))
	defer db.Close()

	// See drivername
	fmt.Printf("Using: %s\n", db.DriverName())

	RunWithSchema(defaultSchema, db, DoTransaction(db))
	RunWithSchema(defaultSchema, db, DoNestedTransaction(db))

	families, err := registry.Gather()
	if err != nil {
		panic(err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Printf("%s %v %v\n", mf.GetName(), m.GetLabel(), m.GetCounter().GetValue()+m.GetGauge().GetValue())
		}
	}
}

// DoTransaction is example for transaction
// See transaction_manager_test.go if you want to know detail.
func DoTransaction(db *sqlx.DB) func(*sqlx.DB) {
	return func(db *sqlx.DB) {
		tx := db.MustBeginTxm()
		// Do rollbacks if fail something in transaction.
		// But do not rollbacks if already commits in transaction.
		defer func() {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sqlx.ErrNoTransaction) {
				// Actually, you should do something...
				panic(err)
			}
		}()

		tx.MustExec(tx.Rebind("INSERT INTO person (first_name, last_name, email) VALUES (?, ?, ?)"), "Code", "Hex", "x00.x7f@gmail.com")
		tx.MustExec(tx.Rebind("UPDATE person SET email = ? WHERE first_name = ? AND last_name = ?"), "a@b.com", "Code", "Hex")

		var p Person
		if err := tx.Get(&p, "SELECT * FROM person LIMIT 1"); err != nil {
			panic(err)
		}

		if _, err := tx.Commit(); err != nil {
			panic(err)
		}
		println(&p)
	}
}

// DoNestedTransaction shows an observer refusing nested levels deeper
// than two, and a failed inner block forcing the whole transaction to
// roll back.
func DoNestedTransaction(db *sqlx.DB) func(*sqlx.DB) {
	return func(db *sqlx.DB) {
		unsubscribe, err := db.Subscribe(event.BeforeBegin, func(p event.Payload, sig *event.Signal) {
			if p.Depth >= 2 {
				sig.Cancel()
			}
		})
		if err != nil {
			panic(err)
		}
		defer unsubscribe()

		tx := db.MustBeginTxm()
		defer tx.MustRollback()

		outcome, err := tm.RunNested(context.Background(), db, func(e tm.Executorx) error {
			e.MustExec(e.Rebind("INSERT INTO person (first_name, last_name, email) VALUES (?, ?, ?)"), "Al", "paca", "kei@gmail.com")
			inner, err := tm.RunNested(context.Background(), db, func(tm.Executorx) error { return nil })
			fmt.Printf("depth 3 begin: %s %v\n", inner, err)
			return errors.New("inner block failed")
		})
		fmt.Printf("nested block: %s %v (rollback only: %t)\n", outcome, err, tx.IsRollbackOnly())

		if _, err := tx.Commit(); errors.Is(err, sqlx.ErrRollbackOnly) {
			fmt.Println(err)
		}
	}
}

func println(str fmt.Stringer) {
	fmt.Println(str)
}
