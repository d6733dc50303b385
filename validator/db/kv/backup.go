package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prysmaticlabs/signer-protection/config/params"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"go.opencensus.io/trace"
)

const backupsDirectoryName = "backups"

// Backup the database to the datadir backup directory, or to outputDir when set.
// Example for backup: $DATADIR/backups/signer-protection_badger_1029019.backup
// Bolt backups are valid bolt files, badger backups are badger backup streams.
func (s *Store) Backup(ctx context.Context, outputDir string, permissionOverride bool) (string, error) {
	_, span := trace.StartSpan(ctx, "ValidatorDB.Backup")
	defer span.End()

	var backupsDir string
	var err error
	if outputDir != "" {
		backupsDir, err = file.ExpandPath(outputDir)
		if err != nil {
			return "", err
		}
	} else {
		backupsDir = filepath.Join(s.databasePath, backupsDirectoryName)
	}
	// Ensure the backups directory exists.
	if err := file.HandleBackupDir(backupsDir, permissionOverride); err != nil {
		return "", err
	}
	backupPath := filepath.Join(backupsDir, fmt.Sprintf("signer-protection_%s_%d.backup", s.backendName, time.Now().Unix()))
	s.log.WithField("backup", backupPath).Info("Writing backup database")

	f, err := os.OpenFile(backupPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, params.SignerIoConfig().ReadWritePermissions) // #nosec G304
	if err != nil {
		return "", err
	}
	if err := s.backend.Backup(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			s.log.WithError(closeErr).Error("Failed to close backup file")
		}
		return "", err
	}
	if err := f.Sync(); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			s.log.WithError(closeErr).Error("Failed to close backup file")
		}
		return "", err
	}
	return backupPath, f.Close()
}
