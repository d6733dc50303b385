package historycmd

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/prysmaticlabs/signer-protection/monitoring/progress"
	history "github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history"
	"github.com/urfave/cli/v2"
)

// registerBatchSize bounds the number of validators registered per transaction.
const registerBatchSize = 256

// Registers the public keys given with --pubkeys so the signing gate accepts
// requests for them.
func registerValidators(cliCtx *cli.Context) error {
	encodedKeys := cliCtx.StringSlice(flags.PubKeysFlag.Name)
	if len(encodedKeys) == 0 {
		return errors.Errorf("no public keys specified, set them with --%s", flags.PubKeysFlag.Name)
	}
	pubKeys := make([][]byte, len(encodedKeys))
	for i, encoded := range encodedKeys {
		pubKey, err := history.PubKeyFromHex(encoded)
		if err != nil {
			return errors.Wrapf(err, "could not decode public key %s", encoded)
		}
		pubKeys[i] = pubKey
	}

	dataDir, err := file.ExpandPath(cliCtx.String(cmd.DataDirFlag.Name))
	if err != nil {
		return errors.Wrap(err, "could not expand data directory")
	}
	validatorDB, err := openValidatorDB(cliCtx, dataDir)
	if err != nil {
		return err
	}
	defer closeValidatorDB(validatorDB)
	protector, err := newProtector(cliCtx, validatorDB)
	if err != nil {
		return err
	}

	bar := progress.InitializeProgressBar(len(pubKeys), "Registering validators")
	for start := 0; start < len(pubKeys); start += registerBatchSize {
		end := start + registerBatchSize
		if end > len(pubKeys) {
			end = len(pubKeys)
		}
		if err := protector.RegisterValidators(cliCtx.Context, pubKeys[start:end]); err != nil {
			return err
		}
		if err := bar.Add(end - start); err != nil {
			log.WithError(err).Debug("Could not increase progress bar")
		}
	}
	log.Infof("Registered %d validators", len(pubKeys))
	return nil
}
