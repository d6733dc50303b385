package historycmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/userprompt"
	"github.com/urfave/cli/v2"
)

// Writes a backup of the slashing protection database to --backup-dir, or to
// <datadir>/backups when no directory is given.
func backupSlashingProtectionDB(cliCtx *cli.Context) error {
	dataDir, err := inputDataDir(cliCtx)
	if err != nil {
		return err
	}
	found, dbDir, err := findDatabase(cliCtx, dataDir)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("slashing protection database was not found at path %s, so nothing to back up", dataDir)
	}
	backupDir, err := inputDirectory(cliCtx, userprompt.BackupDirPromptText, flags.BackupDirFlag)
	if err != nil {
		return errors.Wrap(err, "could not read backup directory from input")
	}

	validatorDB, err := openValidatorDB(cliCtx, dbDir)
	if err != nil {
		return err
	}
	defer closeValidatorDB(validatorDB)
	backupPath, err := validatorDB.Backup(cliCtx.Context, backupDir, false)
	if err != nil {
		return errors.Wrap(err, "could not back up slashing protection database")
	}
	info, err := os.Stat(backupPath)
	if err != nil {
		return errors.Wrapf(err, "could not read backup file %s", backupPath)
	}
	log.Infof("Slashing protection database backed up to %s (%s)", backupPath, humanize.Bytes(uint64(info.Size())))
	return nil
}
