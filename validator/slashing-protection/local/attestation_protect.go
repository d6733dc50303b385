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

// MaySignAttestation determines if an incoming attestation is safe to sign according
// to the local attesting history: it must not be a double vote, must neither surround
// nor be surrounded by a recorded vote, and must sit above the imported watermarks.
// An approved attestation is recorded in the same transaction.
func (s *Service) MaySignAttestation(
	ctx context.Context, pubKey, signingRoot []byte, source, target primitives.Epoch,
) (bool, error) {
	ctx, span := trace.StartSpan(ctx, "local.MaySignAttestation")
	defer span.End()
	span.AddAttributes(
		trace.Int64Attribute("sourceEpoch", int64(source)),
		trace.Int64Attribute("targetEpoch", int64(target)),
	)

	fields := logrus.Fields{
		"pubKey":      fmt.Sprintf("%#x", pubKey),
		"sourceEpoch": source,
		"targetEpoch": target,
		"signingRoot": fmt.Sprintf("%#x", signingRoot),
	}
	if source > target {
		s.log.WithFields(fields).Warn("Refusing to sign attestation with source epoch greater than target epoch")
		s.metrics.slashableAttestations.Inc()
		s.metrics.observe(attestationKind, false)
		return false, nil
	}

	var approved bool
	if err := s.validatorDB.UpdateForValidator(ctx, pubKey, func(txn *kv.Txn) error {
		var err error
		approved, err = s.checkAndRecordAttestation(txn, fields, pubKey, signingRoot, source, target)
		return err
	}); err != nil {
		return false, errors.Wrap(err, "could not check attestation against attesting history")
	}
	span.AddAttributes(trace.BoolAttribute("approved", approved))
	s.metrics.observe(attestationKind, approved)
	return approved, nil
}

func (s *Service) checkAndRecordAttestation(
	txn *kv.Txn, fields logrus.Fields, pubKey, signingRoot []byte, source, target primitives.Epoch,
) (bool, error) {
	id, err := txn.ValidatorID(pubKey)
	if errors.Is(err, kv.ErrUnknownValidator) {
		s.log.WithFields(fields).Warn("Refusing to sign attestation for unregistered validator")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	refuse := func(existing *kv.SignedAttestation, msg string) (bool, error) {
		if existing != nil {
			fields["existingSourceEpoch"] = existing.SourceEpoch
			fields["existingTargetEpoch"] = existing.TargetEpoch
			fields["existingSigningRoot"] = fmt.Sprintf("%#x", existing.SigningRoot)
		}
		s.log.WithFields(fields).Warn(msg)
		s.metrics.slashableAttestations.Inc()
		return false, nil
	}

	existing, err := txn.SignedAttestationAtTarget(id, target)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if rootsMatch(existing.SigningRoot, signingRoot) {
			return true, nil
		}
		return refuse(existing, "Refusing to sign slashable attestation, a different attestation was already signed for this target")
	}

	surrounding, err := txn.SurroundingAttestation(id, source, target)
	if err != nil {
		return false, err
	}
	if surrounding != nil {
		return refuse(surrounding, "Refusing to sign slashable attestation, it is surrounded by a previous attestation")
	}
	surrounded, err := txn.SurroundedAttestation(id, source, target)
	if err != nil {
		return false, err
	}
	if surrounded != nil {
		return refuse(surrounded, "Refusing to sign slashable attestation, it surrounds a previous attestation")
	}

	watermark, err := txn.Watermark(id)
	if err != nil {
		return false, err
	}
	if watermark.AttestationSource != nil && source < *watermark.AttestationSource {
		fields["sourceWatermark"] = *watermark.AttestationSource
		return refuse(nil, "Refusing to sign attestation with source epoch below the minimum source watermark")
	}
	if watermark.AttestationTarget != nil && target <= *watermark.AttestationTarget {
		fields["targetWatermark"] = *watermark.AttestationTarget
		return refuse(nil, "Refusing to sign attestation with target epoch at or below the minimum target watermark")
	}

	if err := txn.SaveSignedAttestation(&kv.SignedAttestation{
		ValidatorID: id,
		SourceEpoch: source,
		TargetEpoch: target,
		SigningRoot: bytesutil.SafeCopyBytes(signingRoot),
	}); err != nil {
		return false, err
	}
	return true, nil
}
