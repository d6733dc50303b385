// Package testing provides helpers to build EIP-3076 slashing protection histories in tests.
package testing

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/minio/sha256-simd"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history/format"
)

// Block is a signed block in a mock history. A nil Root is exported without signing_root.
type Block struct {
	Slot uint64
	Root []byte
}

// Attestation is a signed attestation in a mock history.
type Attestation struct {
	Source uint64
	Target uint64
	Root   []byte
}

// History is the signing history of one validator.
type History struct {
	PubKey       []byte
	Blocks       []Block
	Attestations []Attestation
}

// DefaultGenesisValidatorsRoot is used by the mock interchange documents.
var DefaultGenesisValidatorsRoot = make([]byte, 32)

func init() {
	DefaultGenesisValidatorsRoot[0] = 0x20
}

// MockSlashingProtectionJSON generates a mock EIP-3076 compliant slashing protection document.
func MockSlashingProtectionJSON(genesisValidatorsRoot []byte, histories ...History) *format.EIPSlashingProtectionFormat {
	standardProtectionFormat := &format.EIPSlashingProtectionFormat{}
	standardProtectionFormat.Metadata.GenesisValidatorsRoot = hexutil.Encode(genesisValidatorsRoot)
	standardProtectionFormat.Metadata.InterchangeFormatVersion = format.InterchangeFormatVersion
	standardProtectionFormat.Data = make([]*format.ProtectionData, 0, len(histories))
	for _, h := range histories {
		data := &format.ProtectionData{
			Pubkey:             hexutil.Encode(h.PubKey),
			SignedBlocks:       make([]*format.SignedBlock, 0, len(h.Blocks)),
			SignedAttestations: make([]*format.SignedAttestation, 0, len(h.Attestations)),
		}
		for _, b := range h.Blocks {
			data.SignedBlocks = append(data.SignedBlocks, &format.SignedBlock{
				Slot:        fmt.Sprintf("%d", b.Slot),
				SigningRoot: rootHex(b.Root),
			})
		}
		for _, a := range h.Attestations {
			data.SignedAttestations = append(data.SignedAttestations, &format.SignedAttestation{
				SourceEpoch: fmt.Sprintf("%d", a.Source),
				TargetEpoch: fmt.Sprintf("%d", a.Target),
				SigningRoot: rootHex(a.Root),
			})
		}
		standardProtectionFormat.Data = append(standardProtectionFormat.Data, data)
	}
	return standardProtectionFormat
}

// MarshalJSON encodes the document, failing the test on error.
func MarshalJSON(t testing.TB, doc *format.EIPSlashingProtectionFormat) []byte {
	enc, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(doc)
	if err != nil {
		t.Fatalf("Could not marshal interchange document: %v", err)
	}
	return enc
}

// MockHistories returns numValidators histories of numEntries non slashable blocks and
// attestations each, with distinct signing roots.
func MockHistories(t testing.TB, numValidators, numEntries int) []History {
	pubKeys := CreateRandomPubKeys(t, numValidators)
	roots := CreateRandomRoots(t, numEntries+1)
	histories := make([]History, numValidators)
	for v := 0; v < numValidators; v++ {
		h := History{PubKey: pubKeys[v]}
		for i := 1; i <= numEntries; i++ {
			h.Blocks = append(h.Blocks, Block{Slot: uint64(i), Root: roots[i][:]})
			h.Attestations = append(h.Attestations, Attestation{
				Source: uint64(i - 1),
				Target: uint64(i),
				Root:   roots[i][:],
			})
		}
		histories[v] = h
	}
	return histories
}

// CreateRandomPubKeys returns numValidators random 48 byte public keys.
func CreateRandomPubKeys(t testing.TB, numValidators int) [][]byte {
	pubKeys := make([][]byte, numValidators)
	for i := 0; i < numValidators; i++ {
		pubKeys[i] = make([]byte, 48)
		if _, err := rand.Read(pubKeys[i]); err != nil {
			t.Fatalf("Could not generate public key: %v", err)
		}
	}
	return pubKeys
}

// CreateRandomRoots returns numRoots distinct 32 byte roots.
func CreateRandomRoots(t testing.TB, numRoots int) [][32]byte {
	roots := make([][32]byte, numRoots)
	for i := 0; i < numRoots; i++ {
		roots[i] = sha256.Sum256([]byte(fmt.Sprintf("%d", i)))
	}
	return roots
}

func rootHex(root []byte) string {
	if len(root) == 0 {
		return ""
	}
	return hexutil.Encode(root)
}
