package kv

import (
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/encoding/bytesutil"
)

// Buckets of the protection database. Integers are stored big-endian so keys sort
// numerically.
var (
	// pubkey -> id
	validatorsBucket = []byte("validators")
	// id -> pubkey
	validatorIDsBucket = []byte("validator-ids")
	// id|slot -> root
	signedBlocksBucket = []byte("signed-blocks")
	// id|target -> source|root
	signedAttestationsBucket = []byte("signed-attestations")
	// id -> flags|slot|source|target
	watermarksBucket = []byte("watermarks")
	metaBucket       = []byte("meta")

	genesisValidatorsRootKey = []byte("genesis-validators-root")

	allBuckets = [][]byte{
		validatorsBucket,
		validatorIDsBucket,
		signedBlocksBucket,
		signedAttestationsBucket,
		watermarksBucket,
		metaBucket,
	}
)

const (
	rootAbsent  byte = 0
	rootPresent byte = 1

	watermarkBlockSlotSet         byte = 1 << 0
	watermarkAttestationSourceSet byte = 1 << 1
	watermarkAttestationTargetSet byte = 1 << 2

	watermarkEncodedLength = 1 + 3*8
)

func validatorPrefix(id primitives.ValidatorID) []byte {
	return bytesutil.Uint64ToBytesBigEndian(uint64(id))
}

func validatorKey(id primitives.ValidatorID, n uint64) []byte {
	return append(validatorPrefix(id), bytesutil.Uint64ToBytesBigEndian(n)...)
}

func decodeValidatorKey(key []byte) (primitives.ValidatorID, uint64, bool) {
	if len(key) != 16 {
		return 0, 0, false
	}
	return primitives.ValidatorID(bytesutil.BytesToUint64BigEndian(key[:8])), bytesutil.BytesToUint64BigEndian(key[8:]), true
}

// encodeRoot prefixes the root with a presence byte so an unknown root is never
// confused with an empty one.
func encodeRoot(root []byte) []byte {
	if len(root) == 0 {
		return []byte{rootAbsent}
	}
	return append([]byte{rootPresent}, root...)
}

func decodeRoot(enc []byte) ([]byte, bool) {
	if len(enc) == 0 {
		return nil, false
	}
	switch enc[0] {
	case rootAbsent:
		return nil, len(enc) == 1
	case rootPresent:
		if len(enc) == 1 {
			return nil, false
		}
		return bytesutil.SafeCopyBytes(enc[1:]), true
	default:
		return nil, false
	}
}

func encodeSignedBlock(b *SignedBlock) []byte {
	return encodeRoot(b.SigningRoot)
}

func decodeSignedBlock(key, value []byte) (*SignedBlock, bool) {
	id, slot, ok := decodeValidatorKey(key)
	if !ok {
		return nil, false
	}
	root, ok := decodeRoot(value)
	if !ok {
		return nil, false
	}
	return &SignedBlock{ValidatorID: id, Slot: primitives.Slot(slot), SigningRoot: root}, true
}

func encodeSignedAttestation(a *SignedAttestation) []byte {
	return append(bytesutil.Uint64ToBytesBigEndian(uint64(a.SourceEpoch)), encodeRoot(a.SigningRoot)...)
}

func decodeSignedAttestation(key, value []byte) (*SignedAttestation, bool) {
	id, target, ok := decodeValidatorKey(key)
	if !ok || len(value) < 9 {
		return nil, false
	}
	root, ok := decodeRoot(value[8:])
	if !ok {
		return nil, false
	}
	return &SignedAttestation{
		ValidatorID: id,
		SourceEpoch: primitives.Epoch(bytesutil.BytesToUint64BigEndian(value[:8])),
		TargetEpoch: primitives.Epoch(target),
		SigningRoot: root,
	}, true
}

func encodeWatermark(w *Watermark) []byte {
	enc := make([]byte, watermarkEncodedLength)
	if w.BlockSlot != nil {
		enc[0] |= watermarkBlockSlotSet
		copy(enc[1:9], bytesutil.Uint64ToBytesBigEndian(uint64(*w.BlockSlot)))
	}
	if w.AttestationSource != nil {
		enc[0] |= watermarkAttestationSourceSet
		copy(enc[9:17], bytesutil.Uint64ToBytesBigEndian(uint64(*w.AttestationSource)))
	}
	if w.AttestationTarget != nil {
		enc[0] |= watermarkAttestationTargetSet
		copy(enc[17:25], bytesutil.Uint64ToBytesBigEndian(uint64(*w.AttestationTarget)))
	}
	return enc
}

func decodeWatermark(id primitives.ValidatorID, enc []byte) (*Watermark, bool) {
	if len(enc) != watermarkEncodedLength {
		return nil, false
	}
	w := &Watermark{ValidatorID: id}
	if enc[0]&watermarkBlockSlotSet != 0 {
		slot := primitives.Slot(bytesutil.BytesToUint64BigEndian(enc[1:9]))
		w.BlockSlot = &slot
	}
	if enc[0]&watermarkAttestationSourceSet != 0 {
		source := primitives.Epoch(bytesutil.BytesToUint64BigEndian(enc[9:17]))
		w.AttestationSource = &source
	}
	if enc[0]&watermarkAttestationTargetSet != 0 {
		target := primitives.Epoch(bytesutil.BytesToUint64BigEndian(enc[17:25]))
		w.AttestationTarget = &target
	}
	return w, true
}
