package local

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	history "github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interchangeTest follows the layout of the EIP-3076 interchange test suite.
type interchangeTest struct {
	Name  string `json:"name"`
	Steps []struct {
		ShouldSucceed bool                                `json:"should_succeed"`
		Interchange   *format.EIPSlashingProtectionFormat `json:"interchange"`
		Blocks        []struct {
			Pubkey        string `json:"pubkey"`
			Slot          string `json:"slot"`
			SigningRoot   string `json:"signing_root"`
			ShouldSucceed bool   `json:"should_succeed"`
		} `json:"blocks"`
		Attestations []struct {
			Pubkey        string `json:"pubkey"`
			SourceEpoch   string `json:"source_epoch"`
			TargetEpoch   string `json:"target_epoch"`
			SigningRoot   string `json:"signing_root"`
			ShouldSucceed bool   `json:"should_succeed"`
		} `json:"attestations"`
	} `json:"steps"`
}

func TestService_InterchangeTests(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		enc, err := file.ReadFileAsBytes(path)
		require.NoError(t, err)
		tc := &interchangeTest{}
		require.NoError(t, json.Unmarshal(enc, tc))
		t.Run(tc.Name, func(t *testing.T) {
			forEachBackend(t, func(t *testing.T, backend string) {
				runInterchangeTest(t, backend, tc)
			})
		})
	}
}

func runInterchangeTest(t *testing.T, backend string, tc *interchangeTest) {
	ctx := context.Background()
	srv, _ := setupService(t, backend)
	for i, step := range tc.Steps {
		enc, err := json.Marshal(step.Interchange)
		require.NoError(t, err)
		err = srv.ImportData(ctx, bytes.NewReader(enc))
		if step.ShouldSucceed {
			require.NoError(t, err, "Step %d: import failed", i)
		} else {
			require.ErrorIs(t, err, history.ErrMalformedInterchangeData, "Step %d: import should fail", i)
		}

		for j, b := range step.Blocks {
			pubKey, err := history.PubKeyFromHex(b.Pubkey)
			require.NoError(t, err)
			slot, err := history.SlotFromString(b.Slot)
			require.NoError(t, err)
			root, err := history.RootFromHex(b.SigningRoot)
			require.NoError(t, err)
			ok, err := srv.MaySignBlock(ctx, pubKey, root, slot)
			require.NoError(t, err)
			assert.Equal(t, b.ShouldSucceed, ok, "Step %d: unexpected result for block %d at slot %d", i, j, slot)
		}
		for j, a := range step.Attestations {
			pubKey, err := history.PubKeyFromHex(a.Pubkey)
			require.NoError(t, err)
			source, err := history.EpochFromString(a.SourceEpoch)
			require.NoError(t, err)
			target, err := history.EpochFromString(a.TargetEpoch)
			require.NoError(t, err)
			root, err := history.RootFromHex(a.SigningRoot)
			require.NoError(t, err)
			ok, err := srv.MaySignAttestation(ctx, pubKey, root, source, target)
			require.NoError(t, err)
			assert.Equal(t, a.ShouldSucceed, ok, "Step %d: unexpected result for attestation %d (%d, %d)", i, j, source, target)
		}
	}
	require.NoError(t, srv.validatorDB.View(ctx, func(txn *kv.Txn) error {
		validators, err := txn.Validators()
		require.NoError(t, err)
		for _, v := range validators {
			atts, err := txn.SignedAttestations(v.ID)
			require.NoError(t, err)
			assertNoSlashableAttestations(t, atts)
		}
		return nil
	}))
}
