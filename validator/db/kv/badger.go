package kv

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/encoding/bytesutil"
	"github.com/sirupsen/logrus"
)

// ProtectionDbDirName is the name of the badger database directory.
const ProtectionDbDirName = "signer-protection-badger"

// maxKeySuffix sorts after the suffix of every key stored below a prefix. Keys in this
// package never extend more than 64 bytes past the prefix they are searched by.
var maxKeySuffix = bytes.Repeat([]byte{0xff}, 128)

// sequenceBucket holds the counters handed out by NextSequence, keyed by bucket name.
var sequenceBucket = []byte("sequences")

type badgerBackend struct {
	db   *badger.DB
	path string
}

func openBadger(dirPath string, logger logrus.FieldLogger) (*badgerBackend, error) {
	path := filepath.Join(dirPath, ProtectionDbDirName)
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithLogger(logger)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not open badger database")
	}
	return &badgerBackend{db: db, path: path}, nil
}

func (b *badgerBackend) View(fn func(Tx) error) error {
	var fnErr error
	err := b.db.View(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTx{txn: txn})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storageErr("badger view", err)
}

func (b *badgerBackend) Update(fn func(Tx) error) error {
	var fnErr error
	err := b.db.Update(func(txn *badger.Txn) error {
		fnErr = fn(&badgerTx{txn: txn})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storageErr("badger update", err)
}

func (b *badgerBackend) Backup(w io.Writer) error {
	_, err := b.db.Backup(w, 0)
	return storageErr("badger backup", err)
}

func (b *badgerBackend) Close() error {
	return b.db.Close()
}

func (b *badgerBackend) Path() string {
	return b.path
}

// badgerTx maps buckets onto a single keyspace by prefixing every key with the
// length of the bucket name followed by the name itself.
type badgerTx struct {
	txn *badger.Txn
}

func namespaced(bucket, key []byte) []byte {
	out := make([]byte, 0, 1+len(bucket)+len(key))
	out = append(out, byte(len(bucket)))
	out = append(out, bucket...)
	return append(out, key...)
}

func (t *badgerTx) Get(bucket, key []byte) ([]byte, error) {
	item, err := t.txn.Get(namespaced(bucket, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("badger get", err)
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, storageErr("badger get", err)
	}
	if v == nil {
		v = []byte{}
	}
	return v, nil
}

func (t *badgerTx) Put(bucket, key, value []byte) error {
	return storageErr("badger put", t.txn.Set(namespaced(bucket, key), bytesutil.SafeCopyBytes(value)))
}

func (t *badgerTx) Ascend(bucket, prefix, from []byte, fn func(k, v []byte) (bool, error)) error {
	nsPrefix := namespaced(bucket, prefix)
	if len(from) == 0 {
		from = prefix
	}
	opts := badger.DefaultIteratorOptions
	opts.Prefix = nsPrefix
	it := t.txn.NewIterator(opts)
	defer it.Close()
	strip := 1 + len(bucket)
	for it.Seek(namespaced(bucket, from)); it.ValidForPrefix(nsPrefix); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return storageErr("badger iterate", err)
		}
		cont, err := fn(item.Key()[strip:], v)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (t *badgerTx) Last(bucket, prefix []byte) ([]byte, []byte, error) {
	nsPrefix := namespaced(bucket, prefix)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = nsPrefix
	opts.Reverse = true
	it := t.txn.NewIterator(opts)
	defer it.Close()
	// In reverse mode Seek lands on the greatest key <= the seek key. Every key with the
	// prefix sorts below the prefix followed by a run of 0xff bytes longer than any stored suffix.
	seek := append(bytesutil.SafeCopyBytes(nsPrefix), maxKeySuffix...)
	it.Seek(seek)
	if !it.ValidForPrefix(nsPrefix) {
		return nil, nil, nil
	}
	item := it.Item()
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, nil, storageErr("badger last", err)
	}
	return item.KeyCopy(nil)[1+len(bucket):], v, nil
}

func (t *badgerTx) NextSequence(bucket []byte) (uint64, error) {
	key := namespaced(sequenceBucket, bucket)
	var current uint64
	item, err := t.txn.Get(key)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, storageErr("badger sequence", err)
	default:
		v, err := item.ValueCopy(nil)
		if err != nil {
			return 0, storageErr("badger sequence", err)
		}
		current = bytesutil.BytesToUint64BigEndian(v)
	}
	next := current + 1
	if err := t.txn.Set(key, bytesutil.Uint64ToBytesBigEndian(next)); err != nil {
		return 0, storageErr("badger sequence", err)
	}
	return next, nil
}
