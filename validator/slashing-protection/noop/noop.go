// Package noop provides a signing gate that approves everything, for deployments which
// deliberately run without slashing protection.
package noop

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
)

// ErrProtectionDisabled is returned by history operations when slashing protection is off.
var ErrProtectionDisabled = errors.New("slashing protection is disabled")

// Protector approves every signing request and records nothing.
type Protector struct{}

// RegisterValidators is a no-op.
func (Protector) RegisterValidators(_ context.Context, _ [][]byte) error {
	return nil
}

// MaySignBlock always approves.
func (Protector) MaySignBlock(_ context.Context, _, _ []byte, _ primitives.Slot) (bool, error) {
	return true, nil
}

// MaySignAttestation always approves.
func (Protector) MaySignAttestation(_ context.Context, _, _ []byte, _, _ primitives.Epoch) (bool, error) {
	return true, nil
}

// ImportData fails, there is no history to import into.
func (Protector) ImportData(_ context.Context, _ io.Reader) error {
	return ErrProtectionDisabled
}

// ExportData fails, there is no history to export.
func (Protector) ExportData(_ context.Context, _ io.Writer) error {
	return ErrProtectionDisabled
}
