package history

import (
	"bytes"
	"context"
	"testing"

	"github.com/prysmaticlabs/signer-protection/validator/db/iface"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	dbtest "github.com/prysmaticlabs/signer-protection/validator/db/testing"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history/format"
	spTest "github.com/prysmaticlabs/signer-protection/validator/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportStandardProtectionJSON_EmptyGenesisRoot(t *testing.T) {
	forEachBackend(t, func(t *testing.T, validatorDB iface.ValidatorDB) {
		ctx := context.Background()
		require.NoError(t, validatorDB.RegisterValidators(ctx, [][]byte{{1}}))
		_, err := ExportStandardProtectionJSON(ctx, validatorDB)
		require.ErrorIs(t, err, ErrEmptyGenesisValidatorsRoot)

		genesisValidatorsRoot := [32]byte{1}
		require.NoError(t, validatorDB.SaveGenesisValidatorsRoot(ctx, genesisValidatorsRoot[:]))
		_, err = ExportStandardProtectionJSON(ctx, validatorDB)
		require.NoError(t, err)
	})
}

func TestExportStandardProtectionJSON_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, validatorDB iface.ValidatorDB) {
		ctx := context.Background()
		histories := spTest.MockHistories(t, 3, 5)
		_, err := importHistories(t, validatorDB, histories...)
		require.NoError(t, err)

		// A registered validator without history is still exported.
		idle := spTest.History{PubKey: []byte{0xaa, 0xbb}}
		require.NoError(t, validatorDB.RegisterValidators(ctx, [][]byte{idle.PubKey}))

		exported, err := ExportStandardProtectionJSON(ctx, validatorDB)
		require.NoError(t, err)
		want := spTest.MockSlashingProtectionJSON(spTest.DefaultGenesisValidatorsRoot, append(histories, idle)...)
		assert.Equal(t, want, exported)

		// Importing the export into a fresh database reproduces it.
		fresh := dbtest.SetupDB(t, &kv.Config{Backend: kv.BoltBackend})
		_, err = ImportStandardProtectionJSON(ctx, fresh, bytes.NewReader(spTest.MarshalJSON(t, exported)))
		require.NoError(t, err)
		reexported, err := ExportStandardProtectionJSON(ctx, fresh)
		require.NoError(t, err)
		assert.Equal(t, exported, reexported)
	})
}

func TestExportStandardProtectionJSON_NullRootsOmitted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, validatorDB iface.ValidatorDB) {
		ctx := context.Background()
		_, err := importHistories(t, validatorDB, spTest.History{
			PubKey:       testPubKey,
			Blocks:       []spTest.Block{{Slot: 1}, {Slot: 3, Root: []byte{3}}},
			Attestations: []spTest.Attestation{{Source: 0, Target: 4}},
		})
		require.NoError(t, err)

		exported, err := ExportStandardProtectionJSON(ctx, validatorDB)
		require.NoError(t, err)
		require.Len(t, exported.Data, 1)
		assert.Equal(t, "0x12345678", exported.Data[0].Pubkey)
		assert.Equal(t, []*format.SignedBlock{
			{Slot: "1"},
			{Slot: "3", SigningRoot: "0x03"},
		}, exported.Data[0].SignedBlocks)
		assert.Equal(t, []*format.SignedAttestation{
			{SourceEpoch: "0", TargetEpoch: "4"},
		}, exported.Data[0].SignedAttestations)

		enc := spTest.MarshalJSON(t, exported)
		assert.NotContains(t, string(enc), `"signing_root":""`)
	})
}
