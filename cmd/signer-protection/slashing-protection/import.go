package historycmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/userprompt"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/prysmaticlabs/signer-protection/monitoring/progress"
	"github.com/urfave/cli/v2"
)

// Reads an input slashing protection EIP-3076
// standard JSON file and attempts to insert its data into our database.
//
// Steps:
// 1. Parse a path to the datadir from the CLI context or user input.
// 2. Find or create the slashing protection database.
// 3. Open the JSON file from user input.
// 4. Stream the file into the signing gate, which imports it in a single transaction.
func importSlashingProtectionJSON(cliCtx *cli.Context) error {
	dataDir, err := inputDataDir(cliCtx)
	if err != nil {
		return err
	}
	found, dbDir, err := findDatabase(cliCtx, dataDir)
	if err != nil {
		return err
	}
	if found {
		log.Infof("Found existing slashing protection database inside of %s", dbDir)
	} else {
		log.Infof("Did not find existing slashing protection database inside of %s, creating a new one", dataDir)
		dbDir = dataDir
	}

	protectionFilePath, err := inputDirectory(cliCtx, userprompt.SlashingProtectionJSONPromptText, flags.SlashingProtectionJSONFileFlag)
	if err != nil {
		return errors.Wrap(err, "could not get slashing protection json file")
	}
	if protectionFilePath == "" {
		return fmt.Errorf(
			"no path to a slashing_protection.json file specified, you can specify it with the --%s flag",
			flags.SlashingProtectionJSONFileFlag.Name,
		)
	}

	validatorDB, err := openValidatorDB(cliCtx, dbDir)
	if err != nil {
		return err
	}
	defer closeValidatorDB(validatorDB)
	protector, err := newProtector(cliCtx, validatorDB)
	if err != nil {
		return err
	}

	f, size, err := file.OpenFileForReading(protectionFilePath)
	if err != nil {
		return errors.Wrapf(err, "could not open slashing protection file %s", protectionFilePath)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("Could not close slashing protection file")
		}
	}()

	log.Infof("Starting import of slashing protection file %s (%s)", protectionFilePath, humanize.Bytes(uint64(size)))
	bar := progress.InitializeBytesProgressBar(size, "Reading slashing protection file")
	if err := protector.ImportData(cliCtx.Context, progress.TrackReader(f, bar)); err != nil {
		return err
	}
	log.Infof("Slashing protection JSON successfully imported into %s", validatorDB.DatabasePath())
	return nil
}
