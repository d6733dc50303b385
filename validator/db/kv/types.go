package kv

import "github.com/prysmaticlabs/signer-protection/consensus-types/primitives"

// Validator is a registered public key and its database identifier.
type Validator struct {
	ID        primitives.ValidatorID
	PublicKey []byte
}

// SignedBlock is an accepted block proposal signature. A nil SigningRoot means the
// root is unknown, as allowed by the interchange format.
type SignedBlock struct {
	ValidatorID primitives.ValidatorID
	Slot        primitives.Slot
	SigningRoot []byte
}

// SignedAttestation is an accepted attestation signature. A nil SigningRoot means the
// root is unknown.
type SignedAttestation struct {
	ValidatorID primitives.ValidatorID
	SourceEpoch primitives.Epoch
	TargetEpoch primitives.Epoch
	SigningRoot []byte
}

// Watermark holds the low-water marks established for a validator by imports.
// A nil field has not been established yet.
type Watermark struct {
	ValidatorID       primitives.ValidatorID
	BlockSlot         *primitives.Slot
	AttestationSource *primitives.Epoch
	AttestationTarget *primitives.Epoch
}
