package history

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/consensus-types/primitives"
	"github.com/prysmaticlabs/signer-protection/validator/db/iface"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history/format"
	"go.opencensus.io/trace"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

// ImportSummary counts what an import added to the database.
type ImportSummary struct {
	Validators   int
	Blocks       int
	Attestations int
}

type validatorHistory struct {
	pubKey       []byte
	blocks       []*kv.SignedBlock
	attestations []*kv.SignedAttestation
}

// ImportStandardProtectionJSON takes in EIP-3076 compliant JSON used for slashing protection
// by eth2 signers and imports its data into the slashing protection database. For more
// information, see the EIP document here: https://eips.ethereum.org/EIPS/eip-3076.
//
// The whole document is written in a single transaction. Any invalid entry fails the import
// with ErrMalformedInterchangeData and leaves the database untouched.
func ImportStandardProtectionJSON(ctx context.Context, validatorDB iface.ValidatorDB, r io.Reader) (*ImportSummary, error) {
	ctx, span := trace.StartSpan(ctx, "history.ImportStandardProtectionJSON")
	defer span.End()

	encodedJSON, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read slashing protection JSON file")
	}
	interchangeJSON := &format.EIPSlashingProtectionFormat{}
	if err := json.Unmarshal(encodedJSON, interchangeJSON); err != nil {
		return nil, malformed(errors.Wrap(err, "could not unmarshal slashing protection JSON file"))
	}
	genesisValidatorsRoot, histories, err := parseInterchange(interchangeJSON)
	if err != nil {
		return nil, err
	}

	pubKeys := make([][]byte, len(histories))
	for i, h := range histories {
		pubKeys[i] = h.pubKey
	}
	summary := &ImportSummary{}
	if err := validatorDB.UpdateRegistry(ctx, pubKeys, func(txn *kv.Txn) error {
		if err := txn.SaveGenesisValidatorsRoot(genesisValidatorsRoot); err != nil {
			return errors.Wrap(err, "could not save genesis validators root")
		}
		for _, h := range histories {
			if err := importValidatorHistory(txn, h, summary); err != nil {
				return errors.Wrapf(err, "could not import history for public key %#x", h.pubKey)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return summary, nil
}

// parseInterchange validates the whole document, collecting every violation, and groups
// its entries by public key in order of first appearance.
func parseInterchange(interchangeJSON *format.EIPSlashingProtectionFormat) ([]byte, []*validatorHistory, error) {
	if err := validate.Struct(interchangeJSON); err != nil {
		return nil, nil, malformed(err)
	}
	var violations *multierror.Error
	if v := interchangeJSON.Metadata.InterchangeFormatVersion; v != format.InterchangeFormatVersion {
		violations = multierror.Append(violations, fmt.Errorf(
			"unsupported interchange format version %q, expected %q", v, format.InterchangeFormatVersion,
		))
	}
	genesisValidatorsRoot, err := RootFromHex(interchangeJSON.Metadata.GenesisValidatorsRoot)
	if err != nil {
		violations = multierror.Append(violations, errors.Wrap(err, "invalid genesis validators root"))
	} else if len(genesisValidatorsRoot) == 0 {
		violations = multierror.Append(violations, ErrEmptyGenesisValidatorsRoot)
	}

	historyByPubKey := make(map[string]*validatorHistory)
	histories := make([]*validatorHistory, 0, len(interchangeJSON.Data))
	for i, data := range interchangeJSON.Data {
		pubKey, err := PubKeyFromHex(data.Pubkey)
		if err != nil {
			violations = multierror.Append(violations, errors.Wrapf(err, "data[%d]: invalid public key", i))
			continue
		}
		h, ok := historyByPubKey[string(pubKey)]
		if !ok {
			h = &validatorHistory{pubKey: pubKey}
			historyByPubKey[string(pubKey)] = h
			histories = append(histories, h)
		}
		for j, b := range data.SignedBlocks {
			block, err := parseSignedBlock(b)
			if err != nil {
				violations = multierror.Append(violations, errors.Wrapf(err, "data[%d].signed_blocks[%d]", i, j))
				continue
			}
			h.blocks = append(h.blocks, block)
		}
		for j, a := range data.SignedAttestations {
			att, err := parseSignedAttestation(a)
			if err != nil {
				violations = multierror.Append(violations, errors.Wrapf(err, "data[%d].signed_attestations[%d]", i, j))
				continue
			}
			h.attestations = append(h.attestations, att)
		}
	}
	if err := violations.ErrorOrNil(); err != nil {
		return nil, nil, malformed(err)
	}
	return genesisValidatorsRoot, histories, nil
}

func parseSignedBlock(b *format.SignedBlock) (*kv.SignedBlock, error) {
	slot, err := SlotFromString(b.Slot)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid slot: %w", b.Slot, err)
	}
	root, err := RootFromHex(b.SigningRoot)
	if err != nil {
		return nil, errors.Wrap(err, "invalid signing root")
	}
	return &kv.SignedBlock{Slot: slot, SigningRoot: root}, nil
}

func parseSignedAttestation(a *format.SignedAttestation) (*kv.SignedAttestation, error) {
	source, err := EpochFromString(a.SourceEpoch)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid source epoch: %w", a.SourceEpoch, err)
	}
	target, err := EpochFromString(a.TargetEpoch)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid target epoch: %w", a.TargetEpoch, err)
	}
	if source > target {
		return nil, fmt.Errorf("source epoch %d is greater than target epoch %d", source, target)
	}
	root, err := RootFromHex(a.SigningRoot)
	if err != nil {
		return nil, errors.Wrap(err, "invalid signing root")
	}
	return &kv.SignedAttestation{SourceEpoch: source, TargetEpoch: target, SigningRoot: root}, nil
}

// conflictingRoots reports whether two roots are both known and differ. An unknown
// root never proves a conflict during import, the stored row is kept instead.
func conflictingRoots(existing, incoming []byte) bool {
	return len(existing) != 0 && len(incoming) != 0 && string(existing) != string(incoming)
}

func importValidatorHistory(txn *kv.Txn, h *validatorHistory, summary *ImportSummary) error {
	id, created, err := txn.RegisterValidator(h.pubKey)
	if err != nil {
		return err
	}
	if created {
		summary.Validators++
	}
	// Prior maxima must be read before any imported row is written.
	priorMaxSlot, hasPriorBlocks, err := txn.HighestSignedBlockSlot(id)
	if err != nil {
		return err
	}
	priorMaxTarget, hasPriorAttestations, err := txn.HighestSignedTargetEpoch(id)
	if err != nil {
		return err
	}

	for _, b := range h.blocks {
		b.ValidatorID = id
		existing, err := txn.SignedBlockAtSlot(id, b.Slot)
		if err != nil {
			return err
		}
		if existing != nil {
			if conflictingRoots(existing.SigningRoot, b.SigningRoot) {
				return malformed(fmt.Errorf(
					"block at slot %d with signing root %#x conflicts with recorded signing root %#x",
					b.Slot, b.SigningRoot, existing.SigningRoot,
				))
			}
			continue
		}
		if err := txn.SaveSignedBlock(b); err != nil {
			return err
		}
		summary.Blocks++
	}

	for _, a := range h.attestations {
		a.ValidatorID = id
		existing, err := txn.SignedAttestationAtTarget(id, a.TargetEpoch)
		if err != nil {
			return err
		}
		if existing != nil {
			if conflictingRoots(existing.SigningRoot, a.SigningRoot) {
				return malformed(fmt.Errorf(
					"attestation with target epoch %d and signing root %#x conflicts with recorded signing root %#x",
					a.TargetEpoch, a.SigningRoot, existing.SigningRoot,
				))
			}
			continue
		}
		if err := txn.SaveSignedAttestation(a); err != nil {
			return err
		}
		summary.Attestations++
	}

	w, err := txn.Watermark(id)
	if err != nil {
		return err
	}
	updated := false
	if len(h.blocks) > 0 {
		minSlot := lowestSlot(h.blocks)
		// Only advance over a clean gap above everything recorded before the import.
		if !hasPriorBlocks || minSlot > priorMaxSlot {
			if w.BlockSlot == nil || minSlot > *w.BlockSlot {
				w.BlockSlot = &minSlot
				updated = true
			}
		}
	}
	if len(h.attestations) > 0 {
		minSource, minTarget := lowestEpochs(h.attestations)
		if !hasPriorAttestations || minTarget > priorMaxTarget {
			if w.AttestationSource == nil || minSource > *w.AttestationSource {
				w.AttestationSource = &minSource
				updated = true
			}
			if w.AttestationTarget == nil || minTarget > *w.AttestationTarget {
				w.AttestationTarget = &minTarget
				updated = true
			}
		}
	}
	if !updated {
		return nil
	}
	return txn.SaveWatermark(w)
}

func lowestSlot(blocks []*kv.SignedBlock) primitives.Slot {
	lowest := blocks[0].Slot
	for _, b := range blocks[1:] {
		if b.Slot < lowest {
			lowest = b.Slot
		}
	}
	return lowest
}

func lowestEpochs(atts []*kv.SignedAttestation) (primitives.Epoch, primitives.Epoch) {
	source, target := atts[0].SourceEpoch, atts[0].TargetEpoch
	for _, a := range atts[1:] {
		if a.SourceEpoch < source {
			source = a.SourceEpoch
		}
		if a.TargetEpoch < target {
			target = a.TargetEpoch
		}
	}
	return source, target
}
