package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"

	"packsync/internal/domain"
)

// BadgerBlobStore keeps pack blobs in a Badger key-value database. Blob
// references are the database keys.
type BadgerBlobStore struct {
	db  *badger.DB
	log *log.Entry
}

// OpenBadgerBlobStore opens (or creates) the blob database at dir.
func OpenBadgerBlobStore(dir string, logger *log.Logger) (*BadgerBlobStore, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return &BadgerBlobStore{
		db:  db,
		log: logger.WithField("component", "blobstore"),
	}, nil
}

func (s *BadgerBlobStore) Read(ref string) (io.ReadCloser, int64, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ref))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("read blob %q: %w", ref, err)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *BadgerBlobStore) Write(ref string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ref), data)
	})
	if err != nil {
		return fmt.Errorf("write blob %q: %w", ref, err)
	}
	s.log.WithField("ref", ref).WithField("bytes", len(data)).Debug("blob written")
	return nil
}

func (s *BadgerBlobStore) Delete(ref string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(ref))
	})
	if err != nil {
		return fmt.Errorf("delete blob %q: %w", ref, err)
	}
	s.log.WithField("ref", ref).Debug("blob deleted")
	return nil
}

// Close flushes and closes the underlying database.
func (s *BadgerBlobStore) Close() error { return s.db.Close() }

var _ domain.BlobStore = (*BadgerBlobStore)(nil)
