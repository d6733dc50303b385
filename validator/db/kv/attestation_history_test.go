package kv

import (
	"context"
	"math"
	"testing"

	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveAttestations(t *testing.T, db *Store, pubKey []byte, atts ...[2]primitives.Epoch) primitives.ValidatorID {
	ctx := context.Background()
	require.NoError(t, db.RegisterValidators(ctx, [][]byte{pubKey}))
	var id primitives.ValidatorID
	require.NoError(t, db.UpdateForValidator(ctx, pubKey, func(txn *Txn) error {
		var err error
		id, err = txn.ValidatorID(pubKey)
		if err != nil {
			return err
		}
		for _, a := range atts {
			if err := txn.SaveSignedAttestation(&SignedAttestation{
				ValidatorID: id,
				SourceEpoch: a[0],
				TargetEpoch: a[1],
				SigningRoot: []byte{byte(a[0]), byte(a[1])},
			}); err != nil {
				return err
			}
		}
		return nil
	}))
	return id
}

func TestTxn_SignedAttestations(t *testing.T) {
	ctx := context.Background()
	forEachBackend(t, func(t *testing.T, db *Store) {
		id := saveAttestations(t, db, []byte{1}, [2]primitives.Epoch{3, 4}, [2]primitives.Epoch{1, 2}, [2]primitives.Epoch{7, 8})
		saveAttestations(t, db, []byte{2}, [2]primitives.Epoch{100, 200})
		require.NoError(t, db.View(ctx, func(txn *Txn) error {
			atts, err := txn.SignedAttestations(id)
			require.NoError(t, err)
			require.Len(t, atts, 3)
			assert.Equal(t, primitives.Epoch(2), atts[0].TargetEpoch)
			assert.Equal(t, primitives.Epoch(8), atts[2].TargetEpoch)
			assert.Equal(t, primitives.Epoch(7), atts[2].SourceEpoch)

			a, err := txn.SignedAttestationAtTarget(id, 4)
			require.NoError(t, err)
			require.NotNil(t, a)
			assert.Equal(t, primitives.Epoch(3), a.SourceEpoch)
			assert.Equal(t, []byte{3, 4}, a.SigningRoot)

			a, err = txn.SignedAttestationAtTarget(id, 5)
			require.NoError(t, err)
			assert.Nil(t, a)

			highest, ok, err := txn.HighestSignedTargetEpoch(id)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, primitives.Epoch(8), highest)
			return nil
		}))
	})
}

func TestTxn_SurroundQueries(t *testing.T) {
	tests := []struct {
		name           string
		existing       [][2]primitives.Epoch
		source, target primitives.Epoch
		surrounding    *[2]primitives.Epoch
		surrounded     *[2]primitives.Epoch
	}{
		{
			name:        "new vote surrounded by existing",
			existing:    [][2]primitives.Epoch{{2, 5}},
			source:      3,
			target:      4,
			surrounding: &[2]primitives.Epoch{2, 5},
		},
		{
			name:       "new vote surrounds existing",
			existing:   [][2]primitives.Epoch{{3, 4}},
			source:     2,
			target:     5,
			surrounded: &[2]primitives.Epoch{3, 4},
		},
		{
			name:     "same source is not a surround",
			existing: [][2]primitives.Epoch{{2, 5}},
			source:   2,
			target:   4,
		},
		{
			name:     "same target is not a surround",
			existing: [][2]primitives.Epoch{{2, 5}},
			source:   3,
			target:   5,
		},
		{
			name:     "disjoint votes",
			existing: [][2]primitives.Epoch{{1, 2}, {10, 11}},
			source:   3,
			target:   9,
		},
		{
			name:       "surrounded vote with equal source and target",
			existing:   [][2]primitives.Epoch{{1, 2}, {4, 4}, {10, 11}},
			source:     3,
			target:     9,
			surrounded: &[2]primitives.Epoch{4, 4},
		},
		{
			name:        "surrounding vote far away",
			existing:    [][2]primitives.Epoch{{5, 6}, {6, 7}, {0, 1000}},
			source:      8,
			target:      9,
			surrounding: &[2]primitives.Epoch{0, 1000},
		},
		{
			name:     "max target",
			existing: [][2]primitives.Epoch{{0, 1}},
			source:   math.MaxUint64,
			target:   math.MaxUint64,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, db *Store) {
				id := saveAttestations(t, db, []byte{1}, tt.existing...)
				require.NoError(t, db.View(context.Background(), func(txn *Txn) error {
					surrounding, err := txn.SurroundingAttestation(id, tt.source, tt.target)
					require.NoError(t, err)
					if tt.surrounding == nil {
						assert.Nil(t, surrounding)
					} else {
						require.NotNil(t, surrounding)
						assert.Equal(t, tt.surrounding[0], surrounding.SourceEpoch)
						assert.Equal(t, tt.surrounding[1], surrounding.TargetEpoch)
					}
					surrounded, err := txn.SurroundedAttestation(id, tt.source, tt.target)
					require.NoError(t, err)
					if tt.surrounded == nil {
						assert.Nil(t, surrounded)
					} else {
						require.NotNil(t, surrounded)
						assert.Equal(t, tt.surrounded[0], surrounded.SourceEpoch)
						assert.Equal(t, tt.surrounded[1], surrounded.TargetEpoch)
					}
					return nil
				}))
			})
		})
	}
}
