package cmd

import (
	"path/filepath"
	"runtime"

	"github.com/prysmaticlabs/signer-protection/io/file"
)

// DefaultDataDir is the default data directory to use for the slashing protection
// database and its backups.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := file.HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Signer-Protection")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Local", "SignerProtection")
		} else {
			return filepath.Join(home, ".signer-protection")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}
