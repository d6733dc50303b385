// Package format defines methods to parse, import, and export slashing protection data
// from a standard JSON file according to EIP-3076 https://eips.ethereum.org/EIPS/eip-3076. This format
// is critical to allow safe interoperability between eth2 signers.
package format

// InterchangeFormatVersion specified in https://eips.ethereum.org/EIPS/eip-3076#json-schema.
const InterchangeFormatVersion = "5"

// EIPSlashingProtectionFormat string representation of a standard
// format for representing validator slashing protection history for
// persistence or for transport across signers.
type EIPSlashingProtectionFormat struct {
	Metadata struct {
		InterchangeFormatVersion string `json:"interchange_format_version" validate:"required"`
		GenesisValidatorsRoot    string `json:"genesis_validators_root" validate:"required"`
	} `json:"metadata"`
	Data []*ProtectionData `json:"data" validate:"dive,required"`
}

// ProtectionData field for the standard slashing protection format.
type ProtectionData struct {
	Pubkey             string               `json:"pubkey" validate:"required"`
	SignedBlocks       []*SignedBlock       `json:"signed_blocks" validate:"dive,required"`
	SignedAttestations []*SignedAttestation `json:"signed_attestations" validate:"dive,required"`
}

// SignedAttestation in the standard slashing protection format file, including
// a source epoch, target epoch, and an optional signing root.
type SignedAttestation struct {
	SourceEpoch string `json:"source_epoch" validate:"required"`
	TargetEpoch string `json:"target_epoch" validate:"required"`
	SigningRoot string `json:"signing_root,omitempty"`
}

// SignedBlock in the standard slashing protection format, including a slot
// and an optional signing root.
type SignedBlock struct {
	Slot        string `json:"slot" validate:"required"`
	SigningRoot string `json:"signing_root,omitempty"`
}
