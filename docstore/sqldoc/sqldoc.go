// Package sqldoc implements a document store in an SQLite database.
package sqldoc

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/ChomusukeBot/Chomusuke/docstore"
)

// Store is a docstore.Store backed by an SQL database.
type Store struct {
	db *sqlitex.Pool
}

var _ docstore.Store = (*Store)(nil)

// Open opens an existing document store in an SQL database.
func Open(ctx context.Context, db *sqlitex.Pool) (*Store, error) {
	conn, err := db.Take(ctx)
	defer db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection to check schema: %w", err)
	}
	var ok bool
	err = sqlitex.Execute(conn, `SELECT 1 FROM sqlite_schema WHERE type='table' AND name='documents'`, &sqlitex.ExecOptions{
		ResultFunc: func(*sqlite.Stmt) error {
			ok = true
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't check schema: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no documents table; run the init command first")
	}
	return &Store{db: db}, nil
}

// Init initializes a document store in an SQL database.
// For convenience, it accepts either a single connection or a pool.
func Init[DB *sqlite.Conn | *sqlitex.Pool](ctx context.Context, db DB) error {
	var conn *sqlite.Conn
	switch db := any(db).(type) {
	case *sqlite.Conn:
		conn = db
	case *sqlitex.Pool:
		var err error
		conn, err = db.Take(ctx)
		defer db.Put(conn)
		if err != nil {
			return fmt.Errorf("couldn't get connection from pool: %w", err)
		}
	}
	const schema = `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		doc        TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	) STRICT, WITHOUT ROWID`
	return sqlitex.ExecuteTransient(conn, schema, nil)
}

// Collection returns the named collection.
func (s *Store) Collection(name string) docstore.Collection {
	return &collection{db: s.db, name: name}
}

type collection struct {
	db   *sqlitex.Pool
	name string
}

func (c *collection) Get(ctx context.Context, id string) ([]byte, error) {
	conn, err := c.db.Take(ctx)
	defer c.db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection to get document: %w", err)
	}
	return get(conn, c.name, id)
}

func get(conn *sqlite.Conn, name, id string) ([]byte, error) {
	var b []byte
	found := false
	opts := sqlitex.ExecOptions{
		Args: []any{name, id},
		ResultFunc: func(st *sqlite.Stmt) error {
			b = []byte(st.ColumnText(0))
			found = true
			return nil
		},
	}
	if err := sqlitex.Execute(conn, `SELECT doc FROM documents WHERE collection=? AND id=?`, &opts); err != nil {
		return nil, fmt.Errorf("couldn't get document: %w", err)
	}
	if !found {
		return nil, docstore.ErrNotFound
	}
	return b, nil
}

func (c *collection) Put(ctx context.Context, id string, doc []byte) error {
	conn, err := c.db.Take(ctx)
	defer c.db.Put(conn)
	if err != nil {
		return fmt.Errorf("couldn't get connection to put document: %w", err)
	}
	return put(conn, c.name, id, doc)
}

func put(conn *sqlite.Conn, name, id string, doc []byte) error {
	opts := sqlitex.ExecOptions{Args: []any{name, id, string(doc)}}
	err := sqlitex.Execute(conn, `INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?) ON CONFLICT (collection, id) DO UPDATE SET doc=excluded.doc`, &opts)
	if err != nil {
		return fmt.Errorf("couldn't put document: %w", err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) (bool, error) {
	conn, err := c.db.Take(ctx)
	defer c.db.Put(conn)
	if err != nil {
		return false, fmt.Errorf("couldn't get connection to delete document: %w", err)
	}
	opts := sqlitex.ExecOptions{Args: []any{c.name, id}}
	if err := sqlitex.Execute(conn, `DELETE FROM documents WHERE collection=? AND id=?`, &opts); err != nil {
		return false, fmt.Errorf("couldn't delete document: %w", err)
	}
	return conn.Changes() > 0, nil
}

func (c *collection) IDs(ctx context.Context) ([]string, error) {
	conn, err := c.db.Take(ctx)
	defer c.db.Put(conn)
	if err != nil {
		return nil, fmt.Errorf("couldn't get connection to list documents: %w", err)
	}
	var ids []string
	opts := sqlitex.ExecOptions{
		Args: []any{c.name},
		ResultFunc: func(st *sqlite.Stmt) error {
			ids = append(ids, st.ColumnText(0))
			return nil
		},
	}
	if err := sqlitex.Execute(conn, `SELECT id FROM documents WHERE collection=? ORDER BY id`, &opts); err != nil {
		return nil, fmt.Errorf("couldn't list documents: %w", err)
	}
	return ids, nil
}

func (c *collection) Update(ctx context.Context, id string, f func(old []byte) ([]byte, error)) (err error) {
	conn, err := c.db.Take(ctx)
	defer c.db.Put(conn)
	if err != nil {
		return fmt.Errorf("couldn't get connection to update document: %w", err)
	}
	defer sqlitex.Save(conn)(&err)
	old, err := get(conn, c.name, id)
	switch err {
	case nil, docstore.ErrNotFound: // do nothing
	default:
		return err
	}
	doc, err := f(old)
	if err != nil {
		return err
	}
	return put(conn, c.name, id, doc)
}
