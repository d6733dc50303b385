package history

import (
	"context"
	"fmt"

	"github.com/prysmaticlabs/signer-protection/validator/db/iface"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history/format"
	"go.opencensus.io/trace"
)

// ExportStandardProtectionJSON extracts all slashing protection data from the database
// and packages it into an EIP-3076 compliant, standard format. Every registered validator
// is exported in registration order, from a single consistent snapshot.
func ExportStandardProtectionJSON(ctx context.Context, validatorDB iface.ValidatorDB) (*format.EIPSlashingProtectionFormat, error) {
	ctx, span := trace.StartSpan(ctx, "history.ExportStandardProtectionJSON")
	defer span.End()

	interchangeJSON := &format.EIPSlashingProtectionFormat{}
	err := validatorDB.View(ctx, func(txn *kv.Txn) error {
		genesisValidatorsRoot, err := txn.GenesisValidatorsRoot()
		if err != nil {
			return err
		}
		if len(genesisValidatorsRoot) == 0 {
			return ErrEmptyGenesisValidatorsRoot
		}
		interchangeJSON.Metadata.GenesisValidatorsRoot = rootToHexString(genesisValidatorsRoot)
		interchangeJSON.Metadata.InterchangeFormatVersion = format.InterchangeFormatVersion

		validators, err := txn.Validators()
		if err != nil {
			return err
		}
		interchangeJSON.Data = make([]*format.ProtectionData, 0, len(validators))
		for _, v := range validators {
			data, err := exportValidatorHistory(txn, v)
			if err != nil {
				return err
			}
			interchangeJSON.Data = append(interchangeJSON.Data, data)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return interchangeJSON, nil
}

func exportValidatorHistory(txn *kv.Txn, v *kv.Validator) (*format.ProtectionData, error) {
	blocks, err := txn.SignedBlocks(v.ID)
	if err != nil {
		return nil, err
	}
	atts, err := txn.SignedAttestations(v.ID)
	if err != nil {
		return nil, err
	}
	data := &format.ProtectionData{
		Pubkey:             pubKeyToHexString(v.PublicKey),
		SignedBlocks:       make([]*format.SignedBlock, len(blocks)),
		SignedAttestations: make([]*format.SignedAttestation, len(atts)),
	}
	for i, b := range blocks {
		data.SignedBlocks[i] = &format.SignedBlock{
			Slot:        fmt.Sprintf("%d", b.Slot),
			SigningRoot: rootToHexString(b.SigningRoot),
		}
	}
	for i, a := range atts {
		data.SignedAttestations[i] = &format.SignedAttestation{
			SourceEpoch: fmt.Sprintf("%d", a.SourceEpoch),
			TargetEpoch: fmt.Sprintf("%d", a.TargetEpoch),
			SigningRoot: rootToHexString(a.SigningRoot),
		}
	}
	return data, nil
}
