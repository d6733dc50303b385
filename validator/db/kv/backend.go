package kv

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// BadgerBackend stores protection data in a badger database, allowing concurrent writers
	// for distinct validators.
	BadgerBackend = "badger"
	// BoltBackend stores protection data in a single bolt file. Writers are serialized.
	BoltBackend = "bolt"
)

// Tx is a transaction against a Backend. Tables are addressed by bucket name. Keys and
// values handed to Ascend callbacks are only valid for the duration of the callback, every
// other returned slice is owned by the caller. All errors returned by a Tx are storage errors.
type Tx interface {
	// Get returns nil when the key is absent.
	Get(bucket, key []byte) ([]byte, error)
	Put(bucket, key, value []byte) error
	// Ascend visits keys starting with prefix in ascending order, beginning at from, until fn
	// returns false or an error.
	Ascend(bucket, prefix, from []byte, fn func(k, v []byte) (bool, error)) error
	// Last returns the greatest key starting with prefix, or a nil key.
	Last(bucket, prefix []byte) ([]byte, []byte, error)
	NextSequence(bucket []byte) (uint64, error)
}

// Backend is an ordered key value engine with scoped transactions. Update commits only
// when fn returns nil and rolls back on any error or panic. Errors returned by fn are
// passed through unchanged, engine failures are returned as *StorageError.
type Backend interface {
	View(fn func(Tx) error) error
	Update(fn func(Tx) error) error
	Backup(w io.Writer) error
	Close() error
	// Path is the file or directory holding the data on disk.
	Path() string
}

func openBackend(name, dirPath string, logger logrus.FieldLogger) (Backend, error) {
	switch name {
	case BadgerBackend, "":
		return openBadger(dirPath, logger)
	case BoltBackend:
		return openBolt(dirPath)
	default:
		return nil, errors.Errorf("unknown database backend %q, expected %q or %q", name, BadgerBackend, BoltBackend)
	}
}
