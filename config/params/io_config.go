// Package params defines the io and storage parameters shared across the signer
// protection services.
package params

import (
	"os"
	"time"
)

// IoConfig defines the shared io parameters.
type IoConfig struct {
	ReadWritePermissions        os.FileMode
	ReadWriteExecutePermissions os.FileMode
	BoltTimeout                 time.Duration
	ValidatorIDCacheSize        int
}

var defaultIoConfig = &IoConfig{
	ReadWritePermissions:        0600,
	ReadWriteExecutePermissions: 0700,
	BoltTimeout:                 1 * time.Second,
	ValidatorIDCacheSize:        2048,
}

// SignerIoConfig returns the current io config for the signer protection database.
func SignerIoConfig() *IoConfig {
	return defaultIoConfig
}
