// Package sqlite exports flattened tables into a SQLite database.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS patents (
	patent_number TEXT NOT NULL,
	patent_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS inventors (
	patent_number TEXT NOT NULL,
	inventor_key_id TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	valid INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS assignees (
	patent_number TEXT NOT NULL,
	assignee_key_id TEXT NOT NULL,
	organization TEXT NOT NULL,
	type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS citations (
	patent_number TEXT NOT NULL,
	cited_patent_number TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventors_patent ON inventors(patent_number);
CREATE INDEX IF NOT EXISTS idx_assignees_patent ON assignees(patent_number);
CREATE INDEX IF NOT EXISTS idx_citations_patent ON citations(patent_number);
`

var inserts = map[string]string{
	pdk.TablePatents:   `INSERT INTO patents (patent_number, patent_type) VALUES (?, ?)`,
	pdk.TableInventors: `INSERT INTO inventors (patent_number, inventor_key_id, latitude, longitude, valid) VALUES (?, ?, ?, ?, ?)`,
	pdk.TableAssignees: `INSERT INTO assignees (patent_number, assignee_key_id, organization, type) VALUES (?, ?, ?, ?)`,
	pdk.TableCitations: `INSERT INTO citations (patent_number, cited_patent_number) VALUES (?, ?)`,
}

// Sink is a pdk.Sink which appends rows to the tables of a SQLite
// database. Each Write is a single transaction.
type Sink struct {
	db   *sql.DB
	path string
}

// NewSink opens or creates the database at path and creates the tables
// if they do not exist yet.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating database dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// one writer at a time; sqlite would answer SQLITE_BUSY otherwise
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return &Sink{db: db, path: path}, nil
}

// Path returns the database file.
func (s *Sink) Path() string {
	return s.path
}

// DB returns the underlying database handle.
func (s *Sink) DB() *sql.DB {
	return s.db
}

// Write implements pdk.Sink.
func (s *Sink) Write(t *pdk.Tables) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	for _, name := range pdk.TableNames {
		if err := insert(tx, name, args(t, name)); err != nil {
			return errors.Wrapf(err, "inserting into %s", name)
		}
	}
	return errors.Wrap(tx.Commit(), "committing")
}

func insert(tx *sql.Tx, table string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(inserts[table])
	if err != nil {
		return errors.Wrap(err, "preparing statement")
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}
	return nil
}

// args returns the typed column values of each row of table.
func args(t *pdk.Tables, table string) [][]interface{} {
	var rows [][]interface{}
	switch table {
	case pdk.TablePatents:
		for _, r := range t.Patents {
			rows = append(rows, []interface{}{r.PatentNumber, r.PatentType})
		}
	case pdk.TableInventors:
		for _, r := range t.Inventors {
			rows = append(rows, []interface{}{r.PatentNumber, r.InventorKeyID, r.Latitude, r.Longitude, r.Valid})
		}
	case pdk.TableAssignees:
		for _, r := range t.Assignees {
			rows = append(rows, []interface{}{r.PatentNumber, r.AssigneeKeyID, r.Organization, r.Type})
		}
	case pdk.TableCitations:
		for _, r := range t.Citations {
			rows = append(rows, []interface{}{r.PatentNumber, r.CitedPatentNumber})
		}
	}
	return rows
}

// Close closes the database.
func (s *Sink) Close() error {
	return errors.Wrap(s.db.Close(), "closing database")
}
