package kv

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// SaveGenesisValidatorsRoot saves the genesis validators root to db.
func (s *Store) SaveGenesisValidatorsRoot(ctx context.Context, genValRoot []byte) error {
	ctx, span := trace.StartSpan(ctx, "ValidatorDB.SaveGenesisValidatorsRoot")
	defer span.End()
	return s.UpdateRegistry(ctx, nil, func(txn *Txn) error {
		return txn.SaveGenesisValidatorsRoot(genValRoot)
	})
}

// GenesisValidatorsRoot retrieves the genesis validators root from db.
func (s *Store) GenesisValidatorsRoot(ctx context.Context) ([]byte, error) {
	ctx, span := trace.StartSpan(ctx, "ValidatorDB.GenesisValidatorsRoot")
	defer span.End()
	var genValRoot []byte
	err := s.View(ctx, func(txn *Txn) error {
		var err error
		genValRoot, err = txn.GenesisValidatorsRoot()
		return err
	})
	return genValRoot, err
}

// SaveGenesisValidatorsRoot stores the root unless a different one is already stored.
func (t *Txn) SaveGenesisValidatorsRoot(genValRoot []byte) error {
	if !t.registry {
		return ErrRegistryNotLocked
	}
	enc, err := t.tx.Get(metaBucket, genesisValidatorsRootKey)
	if err != nil {
		return err
	}
	if len(enc) != 0 {
		if bytes.Equal(enc, genValRoot) {
			return nil
		}
		return errors.Wrapf(ErrGenesisValidatorsRootMismatch, "stored %#x", enc)
	}
	return t.tx.Put(metaBucket, genesisValidatorsRootKey, genValRoot)
}

// GenesisValidatorsRoot returns the stored root, or nil when none was saved.
func (t *Txn) GenesisValidatorsRoot() ([]byte, error) {
	enc, err := t.tx.Get(metaBucket, genesisValidatorsRootKey)
	if err != nil || len(enc) == 0 {
		return nil, err
	}
	return enc, nil
}
