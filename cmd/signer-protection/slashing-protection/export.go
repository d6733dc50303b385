package historycmd

import (
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/userprompt"
	"github.com/prysmaticlabs/signer-protection/io/file"
	history "github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history"
	"github.com/urfave/cli/v2"
)

const (
	jsonExportFileName = "slashing_protection.json"
	// jsonIndent must be spaces, the json encoder refuses any other indentation.
	jsonIndent = "  "
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Extracts the slashing protection history of every registered validator
// from the database and formats it into an EIP-3076 standard JSON
// file via a CLI entrypoint to make it easy to migrate signers.
//
// Steps:
// 1. Parse a path to the datadir from the CLI context or user input.
// 2. Find and open the slashing protection database.
// 3. Call the function which actually exports the data from
// the database into an EIP standard slashing protection format.
// 4. Format and save the JSON file to a user's specified output directory.
func exportSlashingProtectionJSON(cliCtx *cli.Context) error {
	dataDir, err := inputDataDir(cliCtx)
	if err != nil {
		return err
	}
	found, dbDir, err := findDatabase(cliCtx, dataDir)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("slashing protection database was not found at path %s, so nothing to export", dataDir)
	}

	validatorDB, err := openValidatorDB(cliCtx, dbDir)
	if err != nil {
		return err
	}
	defer closeValidatorDB(validatorDB)
	root, err := genesisValidatorsRoot(cliCtx)
	if err != nil {
		return err
	}
	if len(root) > 0 {
		if err := validatorDB.SaveGenesisValidatorsRoot(cliCtx.Context, root); err != nil {
			return errors.Wrap(err, "could not save genesis validators root")
		}
	}

	eipJSON, err := history.ExportStandardProtectionJSON(cliCtx.Context, validatorDB)
	if errors.Is(err, history.ErrEmptyGenesisValidatorsRoot) {
		return errors.Wrapf(
			err,
			"the slashing protection database at %s has no genesis validators root, rerun with --%s "+
				"set to the root of the network the signer serves",
			validatorDB.DatabasePath(), flags.GenesisValidatorsRootFlag.Name,
		)
	}
	if err != nil {
		return errors.Wrap(err, "could not export slashing protection history")
	}

	// Check if JSON data is empty and issue a warning about common problems to the user.
	if len(eipJSON.Data) == 0 {
		log.Warnf(
			"No validators are registered in the slashing protection database at %s. Check that "+
				"--%s points to the directory the signer uses",
			validatorDB.DatabasePath(), cmd.DataDirFlag.Name,
		)
	}

	outputDir, err := inputDirectory(cliCtx, userprompt.ExportDirPromptText, flags.SlashingProtectionExportDirFlag)
	if err != nil {
		return errors.Wrap(err, "could not get output directory")
	}
	if outputDir == "" {
		return errors.Errorf("output directory not specified, set it with --%s", flags.SlashingProtectionExportDirFlag.Name)
	}
	exists, err := file.HasDir(outputDir)
	if err != nil {
		return errors.Wrapf(err, "could not check if output directory %s already exists", outputDir)
	}
	if !exists {
		if err := file.MkdirAll(outputDir); err != nil {
			return errors.Wrapf(err, "could not create output directory %s", outputDir)
		}
	}
	outputFilePath := filepath.Join(outputDir, jsonExportFileName)
	log.Infof("Writing slashing protection export JSON file to %s", outputFilePath)
	encoded, err := json.MarshalIndent(eipJSON, "", jsonIndent)
	if err != nil {
		return errors.Wrap(err, "could not JSON marshal slashing protection history")
	}
	if err := file.WriteFile(outputFilePath, encoded); err != nil {
		return errors.Wrapf(err, "could not write file to path %s", outputFilePath)
	}
	log.Infof(
		"Successfully wrote %s. You can import this file using the "+
			"slashing-protection-history import command on another signer",
		outputFilePath,
	)
	return nil
}
