package local

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/encoding/bytesutil"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// MaySignBlock determines if an incoming block is safe to sign according to the
// local proposal history. If the block passes every check, it is recorded before
// returning so a concurrent conflicting request observes it.
func (s *Service) MaySignBlock(
	ctx context.Context, pubKey, signingRoot []byte, slot primitives.Slot,
) (bool, error) {
	ctx, span := trace.StartSpan(ctx, "local.MaySignBlock")
	defer span.End()
	span.AddAttributes(trace.Int64Attribute("slot", int64(slot)))

	var approved bool
	if err := s.validatorDB.UpdateForValidator(ctx, pubKey, func(txn *kv.Txn) error {
		var err error
		approved, err = s.checkAndRecordBlock(txn, pubKey, signingRoot, slot)
		return err
	}); err != nil {
		return false, errors.Wrap(err, "could not check block against proposal history")
	}
	span.AddAttributes(trace.BoolAttribute("approved", approved))
	s.metrics.observe(blockKind, approved)
	return approved, nil
}

func (s *Service) checkAndRecordBlock(
	txn *kv.Txn, pubKey, signingRoot []byte, slot primitives.Slot,
) (bool, error) {
	fields := logrus.Fields{
		"pubKey":      fmt.Sprintf("%#x", pubKey),
		"slot":        slot,
		"signingRoot": fmt.Sprintf("%#x", signingRoot),
	}
	id, err := txn.ValidatorID(pubKey)
	if errors.Is(err, kv.ErrUnknownValidator) {
		s.log.WithFields(fields).Warn("Refusing to sign block for unregistered validator")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	watermark, err := txn.Watermark(id)
	if err != nil {
		return false, err
	}
	if watermark.BlockSlot != nil && slot < *watermark.BlockSlot {
		fields["watermark"] = *watermark.BlockSlot
		s.log.WithFields(fields).Warn("Refusing to sign block below the minimum slot watermark")
		s.metrics.slashableProposals.Inc()
		return false, nil
	}

	existing, err := txn.SignedBlockAtSlot(id, slot)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if rootsMatch(existing.SigningRoot, signingRoot) {
			return true, nil
		}
		fields["existingSigningRoot"] = fmt.Sprintf("%#x", existing.SigningRoot)
		s.log.WithFields(fields).Warn("Refusing to sign slashable block, a different block was already signed at this slot")
		s.metrics.slashableProposals.Inc()
		return false, nil
	}

	if err := txn.SaveSignedBlock(&kv.SignedBlock{
		ValidatorID: id,
		Slot:        slot,
		SigningRoot: bytesutil.SafeCopyBytes(signingRoot),
	}); err != nil {
		return false, err
	}
	return true, nil
}
