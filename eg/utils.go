package main

import (
	"strings"

	osqlx "github.com/jmoiron/sqlx"
	"github.com/juju/loggo"

	sqlx "github.com/Code-Hex/sqlx-nestedtx"
)

var logger = loggo.GetLogger("sqlx.nestedtx.eg")

var (
	Postgres bool
	Mysql    bool
	Sqlite   bool
)

type Schema struct {
	create string
	drop   string
}

func (s Schema) Postgres() (string, string) {
	return s.create, s.drop
}

func (s Schema) MySQL() (string, string) {
	return strings.Replace(s.create, `"`, "`", -1), s.drop
}

func (s Schema) Sqlite3() (string, string) {
	return strings.Replace(s.create, `now()`, `CURRENT_TIMESTAMP`, -1), s.drop
}

var defaultSchema = Schema{
	create: `
CREATE TABLE person (
	first_name text,
	last_name text,
	email text,
	added_at timestamp default now()
);
`,
	drop: `
drop table person;
`,
}

// MultiExec runs every statement of query, logging the ones that fail.
func MultiExec(e osqlx.Execer, query string) {
	for _, s := range strings.Split(query, ";\n") {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, err := e.Exec(s); err != nil {
			logger.Warningf("%v: %s", err, s)
		}
	}
}

func RunWithSchema(schema Schema, db *sqlx.DB, run func(db *sqlx.DB)) {
	var create, drop string
	switch {
	case Postgres:
		create, drop = schema.Postgres()
	case Sqlite:
		create, drop = schema.Sqlite3()
	case Mysql:
		create, drop = schema.MySQL()
	default:
		return
	}
	defer MultiExec(db, drop)
	MultiExec(db, create)
	run(db)
}
