package kv

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/encoding/bytesutil"
	"go.opencensus.io/trace"
)

// RegisterValidators creates an identifier for every public key not registered yet.
// Registering a known key is a no-op.
func (s *Store) RegisterValidators(ctx context.Context, pubKeys [][]byte) error {
	ctx, span := trace.StartSpan(ctx, "ValidatorDB.RegisterValidators")
	defer span.End()
	if len(pubKeys) == 0 {
		return nil
	}
	return s.UpdateRegistry(ctx, pubKeys, func(txn *Txn) error {
		for _, pubKey := range pubKeys {
			if _, _, err := txn.RegisterValidator(pubKey); err != nil {
				return err
			}
		}
		return nil
	})
}

// RegisterValidator returns the identifier of pubKey, creating one when the key is new.
// The boolean reports whether the validator was created by this call.
func (t *Txn) RegisterValidator(pubKey []byte) (primitives.ValidatorID, bool, error) {
	if !t.registry {
		return 0, false, ErrRegistryNotLocked
	}
	if len(pubKey) == 0 {
		return 0, false, ErrEmptyPublicKey
	}
	id, err := t.ValidatorID(pubKey)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, ErrUnknownValidator) {
		return 0, false, err
	}
	seq, err := t.tx.NextSequence(validatorsBucket)
	if err != nil {
		return 0, false, err
	}
	id = primitives.ValidatorID(seq)
	if err := t.tx.Put(validatorsBucket, pubKey, bytesutil.Uint64ToBytesBigEndian(seq)); err != nil {
		return 0, false, err
	}
	if err := t.tx.Put(validatorIDsBucket, validatorPrefix(id), bytesutil.SafeCopyBytes(pubKey)); err != nil {
		return 0, false, err
	}
	t.created[string(pubKey)] = id
	return id, true, nil
}

// ValidatorID resolves a public key, failing with ErrUnknownValidator if the key
// was never registered.
func (t *Txn) ValidatorID(pubKey []byte) (primitives.ValidatorID, error) {
	if len(pubKey) == 0 {
		return 0, ErrUnknownValidator
	}
	if id, ok := t.created[string(pubKey)]; ok {
		return id, nil
	}
	if id, ok := t.store.cachedValidatorID(pubKey); ok {
		return id, nil
	}
	enc, err := t.tx.Get(validatorsBucket, pubKey)
	if err != nil {
		return 0, err
	}
	if enc == nil {
		return 0, ErrUnknownValidator
	}
	if len(enc) != 8 {
		return 0, corruptRecord(validatorsBucket, pubKey)
	}
	id := primitives.ValidatorID(bytesutil.BytesToUint64BigEndian(enc))
	t.store.idCache.Add(string(pubKey), id)
	return id, nil
}

// Validators returns every registered validator ordered by identifier.
func (t *Txn) Validators() ([]*Validator, error) {
	validators := make([]*Validator, 0)
	err := t.tx.Ascend(validatorIDsBucket, nil, nil, func(k, v []byte) (bool, error) {
		if len(k) != 8 || len(v) == 0 {
			return false, corruptRecord(validatorIDsBucket, k)
		}
		validators = append(validators, &Validator{
			ID:        primitives.ValidatorID(bytesutil.BytesToUint64BigEndian(k)),
			PublicKey: bytesutil.SafeCopyBytes(v),
		})
		return true, nil
	})
	return validators, err
}
