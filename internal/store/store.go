// Package store persists book metadata and transcribed chunk records in a
// local bbolt database.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dctremblay/pagemill/internal/book"
	bolt "go.etcd.io/bbolt"
)

var (
	booksBucket  = []byte("books")
	chunksBucket = []byte("chunks")
)

// Store is a bbolt-backed record store. Chunk lists are written in a single
// transaction only after a pipeline pass completes, so readers never observe
// partial output.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{booksBucket, chunksBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// PutBook stores the metadata record for a book.
func (s *Store) PutBook(id string, md *book.Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).Put([]byte(id), data)
	})
}

// GetBook returns the metadata record for a book, or nil when unknown.
func (s *Store) GetBook(id string) (*book.Metadata, error) {
	var md *book.Metadata
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(booksBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		md = &book.Metadata{}
		return json.Unmarshal(v, md)
	})
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return md, nil
}

// PutChunks stores the complete chunk list for a book.
func (s *Store) PutChunks(id string, chunks []book.ContentChunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(chunksBucket).Put([]byte(id), data)
	})
}

// GetChunks returns the stored chunk list for a book, or nil when absent.
func (s *Store) GetChunks(id string) ([]book.ContentChunk, error) {
	var chunks []book.ContentChunk
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chunksBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &chunks)
	})
	if err != nil {
		return nil, fmt.Errorf("get chunks %s: %w", id, err)
	}
	return chunks, nil
}

// ListBooks returns the ids of all stored books.
func (s *Store) ListBooks() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return ids, nil
}

// DeleteBook removes a book's metadata and chunks.
func (s *Store) DeleteBook(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(booksBucket).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(chunksBucket).Delete([]byte(id))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
