package kv

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownValidator is returned when a public key was never registered.
	ErrUnknownValidator = errors.New("unknown validator")
	// ErrStorageUnavailable classifies every failure of the underlying storage engine.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrGenesisValidatorsRootMismatch is returned when saving a root different from the stored one.
	ErrGenesisValidatorsRootMismatch = errors.New("cannot overwrite existing genesis validators root")
	// ErrEmptyPublicKey is returned when registering a zero length public key.
	ErrEmptyPublicKey = errors.New("empty public key")
	// ErrRegistryNotLocked is returned when a validator is registered outside of UpdateRegistry.
	ErrRegistryNotLocked = errors.New("validator registration requires the registry lock")
)

// StorageError wraps an error raised by the storage engine while performing Op.
// It matches ErrStorageUnavailable with errors.Is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorageUnavailable, e.Op, e.Err)
}

// Unwrap returns the engine error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorageUnavailable.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func corruptRecord(bucket []byte, key []byte) error {
	return storageErr("decode", fmt.Errorf("corrupt record in %s at key %#x", bucket, key))
}
