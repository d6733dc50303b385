package kv

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RegisterValidators(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db *Store) {
		require.NoError(t, db.RegisterValidators(ctx, nil))
		require.NoError(t, db.RegisterValidators(ctx, [][]byte{{1}, {2}, {1}}))
		// Idempotent.
		require.NoError(t, db.RegisterValidators(ctx, [][]byte{{2}, {3}}))

		require.NoError(t, db.View(ctx, func(txn *Txn) error {
			validators, err := txn.Validators()
			require.NoError(t, err)
			require.Len(t, validators, 3)
			for i, v := range validators {
				assert.Equal(t, primitives.ValidatorID(i+1), v.ID)
				assert.Equal(t, []byte{byte(i + 1)}, v.PublicKey)
				id, err := txn.ValidatorID(v.PublicKey)
				require.NoError(t, err)
				assert.Equal(t, v.ID, id)
			}
			_, err = txn.ValidatorID([]byte{4})
			assert.ErrorIs(t, err, ErrUnknownValidator)
			_, err = txn.ValidatorID(nil)
			assert.ErrorIs(t, err, ErrUnknownValidator)
			return nil
		}))
	})
}

func TestStore_RegisterValidators_EmptyKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *Store) {
		err := db.RegisterValidators(context.Background(), [][]byte{{1}, {}})
		assert.ErrorIs(t, err, ErrEmptyPublicKey)
		// The whole registration was rolled back.
		require.NoError(t, db.View(context.Background(), func(txn *Txn) error {
			_, err := txn.ValidatorID([]byte{1})
			assert.ErrorIs(t, err, ErrUnknownValidator)
			return nil
		}))
	})
}

func TestTxn_RegisterValidator_RequiresRegistryLock(t *testing.T) {
	forEachBackend(t, func(t *testing.T, db *Store) {
		err := db.UpdateForValidator(context.Background(), []byte{1}, func(txn *Txn) error {
			_, _, err := txn.RegisterValidator([]byte{1})
			return err
		})
		assert.ErrorIs(t, err, ErrRegistryNotLocked)
	})
}

func TestTxn_RegisterValidator_RolledBackIDsNotCached(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db *Store) {
		abort := errors.New("abort")
		err := db.UpdateRegistry(ctx, [][]byte{{7}}, func(txn *Txn) error {
			id, created, err := txn.RegisterValidator([]byte{7})
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, primitives.ValidatorID(1), id)
			// Visible inside the transaction.
			again, created, err := txn.RegisterValidator([]byte{7})
			require.NoError(t, err)
			assert.False(t, created)
			assert.Equal(t, id, again)
			return abort
		})
		assert.Equal(t, abort, err)
		_, cached := db.cachedValidatorID([]byte{7})
		assert.False(t, cached)

		require.NoError(t, db.View(ctx, func(txn *Txn) error {
			_, err := txn.ValidatorID([]byte{7})
			assert.ErrorIs(t, err, ErrUnknownValidator)
			return nil
		}))

		require.NoError(t, db.RegisterValidators(ctx, [][]byte{{7}}))
		id, cached := db.cachedValidatorID([]byte{7})
		assert.True(t, cached)
		assert.Equal(t, primitives.ValidatorID(1), id)
	})
}
