package local

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	spTest "github.com/prysmaticlabs/signer-protection/validator/testing"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func signedBlocks(t *testing.T, srv *Service, pubKey []byte) []*kv.SignedBlock {
	var blocks []*kv.SignedBlock
	require.NoError(t, srv.validatorDB.View(context.Background(), func(txn *kv.Txn) error {
		id, err := txn.ValidatorID(pubKey)
		if err != nil {
			return err
		}
		blocks, err = txn.SignedBlocks(id)
		return err
	}))
	return blocks
}

func TestService_MaySignBlock_Idempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		srv, _ := setupService(t, backend)
		ctx := context.Background()
		require.NoError(t, srv.RegisterValidators(ctx, [][]byte{testPubKey}))

		for i := 0; i < 2; i++ {
			ok, err := srv.MaySignBlock(ctx, testPubKey, []byte{1}, 10)
			require.NoError(t, err)
			assert.True(t, ok, "Expected block to be signable")
		}
		blocks := signedBlocks(t, srv, testPubKey)
		require.Len(t, blocks, 1)
		assert.Equal(t, primitives.Slot(10), blocks[0].Slot)
		assert.Equal(t, []byte{1}, blocks[0].SigningRoot)
	})
}

func TestService_MaySignBlock(t *testing.T) {
	type request struct {
		slot primitives.Slot
		root []byte
		want bool
		// log is the expected warning of a refused request.
		log string
	}
	tests := []struct {
		name     string
		imported []spTest.Block
		requests []request
	}{
		{
			name: "double proposal",
			requests: []request{
				{slot: 10, root: []byte{1}, want: true},
				{slot: 10, root: []byte{2}, want: false, log: "a different block was already signed at this slot"},
				{slot: 11, root: []byte{2}, want: true},
				{slot: 9, root: []byte{3}, want: true},
			},
		},
		{
			name: "missing signing roots never match",
			requests: []request{
				{slot: 5, want: true},
				{slot: 5, want: false, log: "a different block was already signed at this slot"},
				{slot: 5, root: []byte{1}, want: false, log: "a different block was already signed at this slot"},
			},
		},
		{
			name:     "imported row without signing root",
			imported: []spTest.Block{{Slot: 5}},
			requests: []request{
				{slot: 5, root: []byte{1}, want: false, log: "a different block was already signed at this slot"},
				{slot: 6, root: []byte{1}, want: true},
			},
		},
		{
			name:     "below the slot watermark",
			imported: []spTest.Block{{Slot: 5, Root: []byte{5}}, {Slot: 8, Root: []byte{8}}},
			requests: []request{
				{slot: 4, root: []byte{4}, want: false, log: "below the minimum slot watermark"},
				{slot: 5, root: []byte{5}, want: true},
				{slot: 6, root: []byte{6}, want: true},
				{slot: 8, root: []byte{9}, want: false, log: "a different block was already signed at this slot"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, backend string) {
				srv, hook := setupService(t, backend)
				ctx := context.Background()
				if len(tt.imported) > 0 {
					importHistories(t, srv, spTest.History{PubKey: testPubKey, Blocks: tt.imported})
				} else {
					require.NoError(t, srv.RegisterValidators(ctx, [][]byte{testPubKey}))
				}
				for _, r := range tt.requests {
					hook.Reset()
					ok, err := srv.MaySignBlock(ctx, testPubKey, r.root, r.slot)
					require.NoError(t, err)
					assert.Equal(t, r.want, ok, "Unexpected result for slot %d and root %#x", r.slot, r.root)
					if r.log == "" {
						assert.Len(t, hook.Entries, 0)
						continue
					}
					require.NotNil(t, hook.LastEntry())
					assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
					assert.Contains(t, hook.LastEntry().Message, r.log)
				}
			})
		})
	}
}

func TestService_MaySignBlock_UnknownValidator(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		srv, hook := setupService(t, backend)
		ctx := context.Background()
		ok, err := srv.MaySignBlock(ctx, testPubKey, []byte{1}, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, "Refusing to sign block for unregistered validator", hook.LastEntry().Message)

		// Nothing was recorded for the unknown key.
		require.NoError(t, srv.RegisterValidators(ctx, [][]byte{testPubKey}))
		assert.Len(t, signedBlocks(t, srv, testPubKey), 0)

		ok, err = srv.MaySignBlock(ctx, nil, []byte{1}, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_MaySignBlock_ConcurrentConflicts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		srv, _ := setupService(t, backend)
		ctx := context.Background()
		require.NoError(t, srv.RegisterValidators(ctx, [][]byte{testPubKey}))

		const numRequests = 32
		var mu sync.Mutex
		approved := 0
		var g errgroup.Group
		for i := 0; i < numRequests; i++ {
			root := []byte{byte(i + 1)}
			g.Go(func() error {
				ok, err := srv.MaySignBlock(ctx, testPubKey, root, 100)
				if err != nil {
					return err
				}
				if ok {
					mu.Lock()
					approved++
					mu.Unlock()
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, 1, approved, "Exactly one conflicting block must be approved")
		assert.Len(t, signedBlocks(t, srv, testPubKey), 1)
	})
}

func TestService_MaySignBlock_ConcurrentValidators(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		srv, _ := setupService(t, backend)
		ctx := context.Background()
		pubKeys := spTest.CreateRandomPubKeys(t, 16)
		require.NoError(t, srv.RegisterValidators(ctx, pubKeys))

		var g errgroup.Group
		for _, pubKey := range pubKeys {
			pubKey := pubKey
			g.Go(func() error {
				for slot := primitives.Slot(1); slot <= 10; slot++ {
					ok, err := srv.MaySignBlock(ctx, pubKey, []byte{byte(slot)}, slot)
					if err != nil {
						return err
					}
					if !ok {
						return errors.Errorf("block at slot %d refused for %#x", slot, pubKey)
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		for _, pubKey := range pubKeys {
			assert.Len(t, signedBlocks(t, srv, pubKey), 10)
		}
	})
}

func TestService_MaySignBlock_StorageUnavailable(t *testing.T) {
	srv, _ := setupService(t, kv.BoltBackend)
	ctx := context.Background()
	require.NoError(t, srv.RegisterValidators(ctx, [][]byte{testPubKey}))
	require.NoError(t, srv.validatorDB.Close())

	ok, err := srv.MaySignBlock(ctx, testPubKey, []byte{1}, 1)
	assert.False(t, ok)
	assert.ErrorIs(t, err, kv.ErrStorageUnavailable)
	ok, err = srv.MaySignAttestation(ctx, testPubKey, []byte{1}, 1, 2)
	assert.False(t, ok)
	assert.ErrorIs(t, err, kv.ErrStorageUnavailable)
}
