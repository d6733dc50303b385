// Package kv defines a persistent backend for the slashing protection database. It
// stores validator registrations, signed blocks, signed attestations and watermarks
// in either a badger or a bolt database.
package kv

import (
	"context"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/config/params"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Store defines an implementation of the slashing protection database using badger
// or bolt as the underlying persistent kv-store.
type Store struct {
	backend      Backend
	databasePath string
	backendName  string
	idCache      *lru.Cache
	locks        *validatorLocks
	registryLock sync.Mutex
	log          logrus.FieldLogger
}

// Config represents store's config object.
type Config struct {
	// Backend is BadgerBackend (default) or BoltBackend.
	Backend string
	// ValidatorIDCacheSize bounds the public key to identifier cache.
	ValidatorIDCacheSize int
	Logger               logrus.FieldLogger
}

// NewKVStore initializes a new database at the directory path specified, creates the
// tables based on the schema, and stores an open connection as a property of the Store struct.
func NewKVStore(ctx context.Context, dirPath string, config *Config) (*Store, error) {
	_, span := trace.StartSpan(ctx, "ValidatorDB.NewKVStore")
	defer span.End()

	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		logger = log
	}
	hasDir, err := file.HasDir(dirPath)
	if err != nil {
		return nil, err
	}
	if !hasDir {
		if err := file.MkdirAll(dirPath); err != nil {
			return nil, err
		}
	}
	cacheSize := config.ValidatorIDCacheSize
	if cacheSize <= 0 {
		cacheSize = params.SignerIoConfig().ValidatorIDCacheSize
	}
	idCache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create validator id cache")
	}
	backendName := config.Backend
	if backendName == "" {
		backendName = BadgerBackend
	}
	backend, err := openBackend(backendName, dirPath, logger)
	if err != nil {
		return nil, err
	}
	return &Store{
		backend:      backend,
		databasePath: dirPath,
		backendName:  backendName,
		idCache:      idCache,
		locks:        newValidatorLocks(),
		log:          logger,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ClearDB removes the previously stored database in the data directory.
func (s *Store) ClearDB() error {
	if _, err := os.Stat(s.backend.Path()); os.IsNotExist(err) {
		return nil
	}
	s.idCache.Purge()
	return os.RemoveAll(s.backend.Path())
}

// DatabasePath at which this database writes files.
func (s *Store) DatabasePath() string {
	return s.databasePath
}

// View runs fn in a read-only transaction observing a consistent snapshot.
func (s *Store) View(ctx context.Context, fn func(*Txn) error) error {
	_, span := trace.StartSpan(ctx, "ValidatorDB.View")
	defer span.End()
	return s.backend.View(func(tx Tx) error {
		return fn(newTxn(s, tx, false))
	})
}

// UpdateForValidator runs fn in a read-write transaction while holding the lock of pubKey,
// making check-then-insert sequences for that validator atomic. Other validators are not
// blocked. fn cannot register validators.
func (s *Store) UpdateForValidator(ctx context.Context, pubKey []byte, fn func(*Txn) error) error {
	_, span := trace.StartSpan(ctx, "ValidatorDB.UpdateForValidator")
	defer span.End()
	unlock := s.locks.lock(pubKey)
	defer unlock()
	return s.update(false, fn)
}

// UpdateRegistry runs fn in a read-write transaction holding the registry lock and the locks of
// every given public key. fn may register validators, save the genesis validators root and
// write history for the given keys.
func (s *Store) UpdateRegistry(ctx context.Context, pubKeys [][]byte, fn func(*Txn) error) error {
	_, span := trace.StartSpan(ctx, "ValidatorDB.UpdateRegistry")
	defer span.End()
	s.registryLock.Lock()
	defer s.registryLock.Unlock()
	unlock := s.locks.lock(pubKeys...)
	defer unlock()
	return s.update(true, fn)
}

func (s *Store) update(registry bool, fn func(*Txn) error) error {
	var created map[string]primitives.ValidatorID
	if err := s.backend.Update(func(tx Tx) error {
		txn := newTxn(s, tx, registry)
		if err := fn(txn); err != nil {
			return err
		}
		created = txn.created
		return nil
	}); err != nil {
		return err
	}
	// Identifiers created by the transaction are only visible once committed.
	for pubKey, id := range created {
		s.idCache.Add(pubKey, id)
	}
	return nil
}

func (s *Store) cachedValidatorID(pubKey []byte) (primitives.ValidatorID, bool) {
	v, ok := s.idCache.Get(string(pubKey))
	if !ok {
		return 0, false
	}
	id, ok := v.(primitives.ValidatorID)
	return id, ok
}
