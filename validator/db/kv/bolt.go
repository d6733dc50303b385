package kv

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	prombolt "github.com/prysmaticlabs/prombbolt"
	"github.com/prysmaticlabs/signer-protection/config/params"
	"github.com/prysmaticlabs/signer-protection/encoding/bytesutil"
	bolt "go.etcd.io/bbolt"
)

// ProtectionDbFileName is the name of the bolt database file.
const ProtectionDbFileName = "signer-protection.db"

type boltBackend struct {
	db        *bolt.DB
	path      string
	collector prometheus.Collector
}

func openBolt(dirPath string) (*boltBackend, error) {
	datafile := filepath.Join(dirPath, ProtectionDbFileName)
	boltDB, err := bolt.Open(
		datafile,
		params.SignerIoConfig().ReadWritePermissions,
		&bolt.Options{Timeout: params.SignerIoConfig().BoltTimeout},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	if err := boltDB.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if closeErr := boltDB.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Could not close bolt database")
		}
		return nil, errors.Wrap(err, "could not create buckets")
	}

	b := &boltBackend{db: boltDB, path: datafile}
	// Only the first open store of the process reports bolt statistics.
	collector := prombolt.New("boltDB", boltDB)
	if err := prometheus.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			if closeErr := boltDB.Close(); closeErr != nil {
				log.WithError(closeErr).Error("Could not close bolt database")
			}
			return nil, err
		}
	} else {
		b.collector = collector
	}
	return b, nil
}

func (b *boltBackend) View(fn func(Tx) error) error {
	var fnErr error
	err := b.db.View(func(tx *bolt.Tx) error {
		fnErr = fn(&boltTx{tx: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storageErr("bolt view", err)
}

func (b *boltBackend) Update(fn func(Tx) error) error {
	var fnErr error
	err := b.db.Update(func(tx *bolt.Tx) error {
		fnErr = fn(&boltTx{tx: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return storageErr("bolt update", err)
}

func (b *boltBackend) Backup(w io.Writer) error {
	return storageErr("bolt backup", b.db.View(func(tx *bolt.Tx) error {
		_, err := tx.WriteTo(w)
		return err
	}))
}

func (b *boltBackend) Close() error {
	if b.collector != nil {
		prometheus.Unregister(b.collector)
	}
	return b.db.Close()
}

func (b *boltBackend) Path() string {
	return b.path
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) bucket(name []byte) (*bolt.Bucket, error) {
	bkt := t.tx.Bucket(name)
	if bkt == nil {
		return nil, storageErr("bolt bucket", errors.Errorf("bucket %s not found", name))
	}
	return bkt, nil
}

func (t *boltTx) Get(bucket, key []byte) ([]byte, error) {
	bkt, err := t.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return bytesutil.SafeCopyBytes(bkt.Get(key)), nil
}

func (t *boltTx) Put(bucket, key, value []byte) error {
	bkt, err := t.bucket(bucket)
	if err != nil {
		return err
	}
	return storageErr("bolt put", bkt.Put(key, value))
}

func (t *boltTx) Ascend(bucket, prefix, from []byte, fn func(k, v []byte) (bool, error)) error {
	bkt, err := t.bucket(bucket)
	if err != nil {
		return err
	}
	if len(from) == 0 {
		from = prefix
	}
	c := bkt.Cursor()
	var k, v []byte
	if len(from) == 0 {
		k, v = c.First()
	} else {
		k, v = c.Seek(from)
	}
	for ; k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		cont, err := fn(k, v)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (t *boltTx) Last(bucket, prefix []byte) ([]byte, []byte, error) {
	bkt, err := t.bucket(bucket)
	if err != nil {
		return nil, nil, err
	}
	c := bkt.Cursor()
	var k, v []byte
	if succ := bytesutil.PrefixSuccessor(prefix); succ == nil {
		k, v = c.Last()
	} else if k, v = c.Seek(succ); k == nil {
		k, v = c.Last()
	} else {
		k, v = c.Prev()
	}
	if k == nil || !bytes.HasPrefix(k, prefix) {
		return nil, nil, nil
	}
	return bytesutil.SafeCopyBytes(k), bytesutil.SafeCopyBytes(v), nil
}

func (t *boltTx) NextSequence(bucket []byte) (uint64, error) {
	bkt, err := t.bucket(bucket)
	if err != nil {
		return 0, err
	}
	seq, err := bkt.NextSequence()
	return seq, storageErr("bolt sequence", err)
}
