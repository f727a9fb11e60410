package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA busy_timeout = 5000;
CREATE TABLE IF NOT EXISTS transcripts (
	persona_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	position INTEGER NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (persona_id, kind, position)
);
`

func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return db, nil
}

// writeSQLite replaces the rows of the snapshot's persona and kind in a
// single transaction.
func writeSQLite(ctx context.Context, path string, s *Snapshot) (err error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM transcripts WHERE persona_id = ? AND kind = ?`,
		s.PersonaID, string(s.Kind),
	); err != nil {
		return errors.Wrap(err, "delete previous export")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transcripts (persona_id, kind, position, role, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, r := range s.Rows {
		if _, err = stmt.ExecContext(ctx, s.PersonaID, string(s.Kind), i, r.Role, r.Content); err != nil {
			return errors.Wrapf(err, "insert row %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// ReadSQLite loads an exported snapshot back from the shared database.
func ReadSQLite(ctx context.Context, path string, kind Kind, personaID int) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx,
		`SELECT role, content FROM transcripts WHERE persona_id = ? AND kind = ? ORDER BY position`,
		personaID, string(kind),
	)
	if err != nil {
		return nil, errors.Wrap(err, "query transcripts")
	}
	defer func() {
		_ = rows.Close()
	}()

	ret := &Snapshot{PersonaID: personaID, Kind: kind, Rows: []Row{}}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Role, &r.Content); err != nil {
			return nil, errors.Wrap(err, "scan transcript row")
		}
		ret.Rows = append(ret.Rows, r)
	}
	return ret, rows.Err()
}
