package store

import (
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/arthur-debert/filesync/pkg/errors"
	"github.com/arthur-debert/filesync/pkg/fingerprint"
	"github.com/arthur-debert/filesync/pkg/logging"
	"github.com/arthur-debert/filesync/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	root_dir TEXT NOT NULL,
	rel_path TEXT NOT NULL,
	file_hash TEXT NOT NULL
);
DELETE FROM files;
`

// SQLite is a RecordStore backed by a SQLite database file. It keeps
// the working set out of process memory for very large trees.
// Insertion order is preserved via the rowid.
//
// SQLite is not safe for concurrent use: the engine appends from a
// single goroutine.
type SQLite struct {
	conn *sqlite.Conn
	path string
}

// OpenSQLite opens (creating if needed) the database at path and
// resets the files table, matching a fresh run. The parent directory
// must exist.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDatabase, "cannot open record database %s", path)
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, errors.ErrDatabase, "cannot initialize record database %s", path)
	}

	logger := logging.GetLogger("store.sqlite")
	logger.Debug().Str("path", path).Msg("record database opened")

	return &SQLite{conn: conn, path: path}, nil
}

// Path returns the database file path
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Append(rec types.FileRecord) error {
	err := sqlitex.Execute(s.conn,
		"INSERT INTO files (root_dir, rel_path, file_hash) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{rec.Root, rec.RelPath, rec.Hash.Hex()},
		})
	if err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "cannot insert record for %s", rec.RelPath)
	}
	return nil
}

func (s *SQLite) All() ([]types.FileRecord, error) {
	var records []types.FileRecord
	var decodeErr error

	err := sqlitex.Execute(s.conn,
		"SELECT root_dir, rel_path, file_hash FROM files ORDER BY id",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				hash, err := fingerprint.FromHex(stmt.ColumnText(2))
				if err != nil {
					decodeErr = err
					return err
				}
				records = append(records, types.FileRecord{
					Root:    stmt.ColumnText(0),
					RelPath: stmt.ColumnText(1),
					Hash:    hash,
				})
				return nil
			},
		})
	if decodeErr != nil {
		return nil, errors.Wrap(decodeErr, errors.ErrDatabase, "corrupt digest in record database")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDatabase, "cannot read records")
	}
	return records, nil
}

func (s *SQLite) Len() (int, error) {
	var n int
	err := sqlitex.Execute(s.conn,
		"SELECT COUNT(*) FROM files",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				n = stmt.ColumnInt(0)
				return nil
			},
		})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrDatabase, "cannot count records")
	}
	return n, nil
}

func (s *SQLite) Close() error {
	if err := s.conn.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrDatabase, "cannot close record database %s", s.path)
	}
	return nil
}
