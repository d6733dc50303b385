package kv

import (
	"math"

	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// SignedAttestationAtTarget returns the attestation signed by the validator for target, or nil.
func (t *Txn) SignedAttestationAtTarget(id primitives.ValidatorID, target primitives.Epoch) (*SignedAttestation, error) {
	key := validatorKey(id, uint64(target))
	enc, err := t.tx.Get(signedAttestationsBucket, key)
	if err != nil || enc == nil {
		return nil, err
	}
	a, ok := decodeSignedAttestation(key, enc)
	if !ok {
		return nil, corruptRecord(signedAttestationsBucket, key)
	}
	return a, nil
}

// SaveSignedAttestation records a signed attestation, replacing any row at the same target.
func (t *Txn) SaveSignedAttestation(a *SignedAttestation) error {
	return t.tx.Put(signedAttestationsBucket, validatorKey(a.ValidatorID, uint64(a.TargetEpoch)), encodeSignedAttestation(a))
}

// SurroundingAttestation returns a stored attestation of the validator that surrounds
// (source, target), that is existing.source < source and existing.target > target, or nil.
func (t *Txn) SurroundingAttestation(id primitives.ValidatorID, source, target primitives.Epoch) (*SignedAttestation, error) {
	if uint64(target) == math.MaxUint64 {
		return nil, nil
	}
	var found *SignedAttestation
	from := validatorKey(id, uint64(target)+1)
	err := t.tx.Ascend(signedAttestationsBucket, validatorPrefix(id), from, func(k, v []byte) (bool, error) {
		a, ok := decodeSignedAttestation(k, v)
		if !ok {
			return false, corruptRecord(signedAttestationsBucket, k)
		}
		if a.SourceEpoch < source {
			found = a
			return false, nil
		}
		return true, nil
	})
	return found, err
}

// SurroundedAttestation returns a stored attestation of the validator surrounded by
// (source, target), that is existing.source > source and existing.target < target, or nil.
func (t *Txn) SurroundedAttestation(id primitives.ValidatorID, source, target primitives.Epoch) (*SignedAttestation, error) {
	// A surrounded vote has source < existing.source <= existing.target < target.
	if uint64(target) < 2 || source >= target-1 {
		return nil, nil
	}
	var found *SignedAttestation
	from := validatorKey(id, uint64(source)+1)
	err := t.tx.Ascend(signedAttestationsBucket, validatorPrefix(id), from, func(k, v []byte) (bool, error) {
		a, ok := decodeSignedAttestation(k, v)
		if !ok {
			return false, corruptRecord(signedAttestationsBucket, k)
		}
		if a.TargetEpoch >= target {
			return false, nil
		}
		if a.SourceEpoch > source {
			found = a
			return false, nil
		}
		return true, nil
	})
	return found, err
}

// SignedAttestations returns every attestation signed by the validator in ascending
// target order.
func (t *Txn) SignedAttestations(id primitives.ValidatorID) ([]*SignedAttestation, error) {
	atts := make([]*SignedAttestation, 0)
	err := t.tx.Ascend(signedAttestationsBucket, validatorPrefix(id), nil, func(k, v []byte) (bool, error) {
		a, ok := decodeSignedAttestation(k, v)
		if !ok {
			return false, corruptRecord(signedAttestationsBucket, k)
		}
		atts = append(atts, a)
		return true, nil
	})
	return atts, err
}

// HighestSignedTargetEpoch returns the greatest target epoch signed by the validator.
// The boolean is false when no attestation was ever recorded.
func (t *Txn) HighestSignedTargetEpoch(id primitives.ValidatorID) (primitives.Epoch, bool, error) {
	k, _, err := t.tx.Last(signedAttestationsBucket, validatorPrefix(id))
	if err != nil || k == nil {
		return 0, false, err
	}
	_, target, ok := decodeValidatorKey(k)
	if !ok {
		return 0, false, corruptRecord(signedAttestationsBucket, k)
	}
	return primitives.Epoch(target), true, nil
}
