// Package flags contains all configuration runtime flags for the signer protection binary.
package flags

import (
	cmdflags "github.com/prysmaticlabs/signer-protection/cmd/flags"
	"github.com/prysmaticlabs/signer-protection/config/params"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	"github.com/urfave/cli/v2"
)

var (
	// DBBackendFlag selects the storage engine of the slashing protection database.
	DBBackendFlag = cmdflags.EnumValue{
		Name:  "db-backend",
		Usage: "Storage engine of the slashing protection database",
		Enum:  []string{kv.BadgerBackend, kv.BoltBackend},
		Value: kv.BadgerBackend,
	}.GenericFlag()
	// ValidatorIDCacheSizeFlag bounds the number of resolved validator identifiers kept in memory.
	ValidatorIDCacheSizeFlag = &cli.IntFlag{
		Name:  "validator-id-cache-size",
		Usage: "Number of validator public key to identifier mappings kept in memory",
		Value: params.SignerIoConfig().ValidatorIDCacheSize,
	}
	// GenesisValidatorsRootFlag pins the database to a network. A database holding a different
	// root is refused.
	GenesisValidatorsRootFlag = &cli.StringFlag{
		Name:  "genesis-validators-root",
		Usage: "Hex encoded genesis validators root of the network the signer serves",
	}
	// DisableSlashingProtectionFlag approves every signing request without recording it.
	DisableSlashingProtectionFlag = &cli.BoolFlag{
		Name:  "disable-slashing-protection",
		Usage: "Disables slashing protection. Every signing request is approved and nothing is recorded, use with care",
	}
	// SlashingProtectionJSONFileFlag is used by the slashing protection import command.
	SlashingProtectionJSONFileFlag = &cli.StringFlag{
		Name:  "slashing-protection-json-file",
		Usage: "Path to an EIP-3076 compliant slashing protection JSON file",
	}
	// SlashingProtectionExportDirFlag allows specifying the output directory
	// for a validator's slashing protection history.
	SlashingProtectionExportDirFlag = &cli.StringFlag{
		Name:  "slashing-protection-export-dir",
		Usage: "Allows users to specify the output directory to export their slashing protection EIP-3076 standard JSON File",
		Value: "",
	}
	// PubKeysFlag lists the public keys to register.
	PubKeysFlag = &cli.StringSliceFlag{
		Name:  "pubkeys",
		Usage: "Comma separated list of hex encoded validator public keys",
	}
	// BackupDirFlag is the directory the database backup is written to.
	BackupDirFlag = &cli.StringFlag{
		Name:  "backup-dir",
		Usage: "Directory to write the slashing protection database backup to, defaults to <datadir>/backups",
	}
)
