// Package kvdoc implements a document store in a Badger key-value database.
package kvdoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/ChomusukeBot/Chomusuke/docstore"
)

/*
Key structure:
Collection × \x00 × ID
Collection names never contain \x00, so prefix iteration over
Collection × \x00 visits exactly the documents of one collection.
*/

// Store is a docstore.Store backed by Badger.
type Store struct {
	db *badger.DB
}

var _ docstore.Store = (*Store)(nil)

// New wraps a Badger database as a document store.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Collection returns the named collection.
func (s *Store) Collection(name string) docstore.Collection {
	if strings.ContainsRune(name, 0) {
		panic("kvdoc: collection name contains NUL: " + name)
	}
	return &collection{db: s.db, prefix: name + "\x00"}
}

type collection struct {
	db     *badger.DB
	prefix string
}

func (c *collection) key(id string) []byte {
	return []byte(c.prefix + id)
}

func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	switch err {
	case nil: // do nothing
	case badger.ErrKeyNotFound:
		return nil, docstore.ErrNotFound
	default:
		return nil, fmt.Errorf("couldn't get document: %w", err)
	}
	b, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't read document: %w", err)
	}
	return b, nil
}

func (c *collection) Get(ctx context.Context, id string) ([]byte, error) {
	var b []byte
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		b, err = get(txn, c.key(id))
		return err
	})
	return b, err
}

func (c *collection) Put(ctx context.Context, id string, doc []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(id), doc)
	})
	if err != nil {
		return fmt.Errorf("couldn't put document: %w", err)
	}
	return nil
}

func (c *collection) Delete(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := c.db.Update(func(txn *badger.Txn) error {
		k := c.key(id)
		_, err := txn.Get(k)
		switch err {
		case nil:
			ok = true
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
		return txn.Delete(k)
	})
	if err != nil {
		return false, fmt.Errorf("couldn't delete document: %w", err)
	}
	return ok, nil
}

func (c *collection) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(c.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			ids = append(ids, string(k[len(c.prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't list documents: %w", err)
	}
	return ids, nil
}

func (c *collection) Update(ctx context.Context, id string, f func(old []byte) ([]byte, error)) error {
	return c.db.Update(func(txn *badger.Txn) error {
		k := c.key(id)
		old, err := get(txn, k)
		switch err {
		case nil, docstore.ErrNotFound: // do nothing
		default:
			return err
		}
		doc, err := f(old)
		if err != nil {
			return err
		}
		return txn.Set(k, doc)
	})
}
