// Package iface defines the signing gate consulted before any block or attestation
// is signed.
package iface

import (
	"context"
	"io"

	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// Protector interface defines a struct which provides methods
// for validator slashing protection.
type Protector interface {
	RegisterValidators(ctx context.Context, pubKeys [][]byte) error
	// MaySignBlock returns false when signing the block could get the validator slashed.
	// A nil error with a false result is an ordinary refusal.
	MaySignBlock(ctx context.Context, pubKey, signingRoot []byte, slot primitives.Slot) (bool, error)
	MaySignAttestation(
		ctx context.Context, pubKey, signingRoot []byte, source, target primitives.Epoch,
	) (bool, error)
	ImportData(ctx context.Context, r io.Reader) error
	ExportData(ctx context.Context, w io.Writer) error
}
