package historycmd

import (
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/urfave/cli/v2"
)

var databaseFlags = []cli.Flag{
	cmd.DataDirFlag,
	flags.DBBackendFlag,
	flags.ValidatorIDCacheSizeFlag,
	cmd.ConfigFileFlag,
}

var gateFlags = []cli.Flag{
	flags.GenesisValidatorsRootFlag,
	flags.DisableSlashingProtectionFlag,
}

func commandFlags(extra ...[]cli.Flag) []cli.Flag {
	all := append([]cli.Flag{}, databaseFlags...)
	for _, f := range extra {
		all = append(all, f...)
	}
	return cmd.WrapFlags(all)
}

func loadFlagsFromConfig(cliCtx *cli.Context) error {
	return cmd.LoadFlagsFromConfig(cliCtx, cliCtx.Command.Flags)
}

// Commands for slashing protection.
var Commands = &cli.Command{
	Name:     "slashing-protection-history",
	Category: "slashing-protection-history",
	Usage:    "defines commands for interacting your signer's slashing protection history",
	Subcommands: []*cli.Command{
		{
			Name:  "export",
			Usage: "exports a slashing protection JSON file from the database, compliant with EIP-3076",
			Flags: commandFlags([]cli.Flag{
				flags.GenesisValidatorsRootFlag,
				flags.SlashingProtectionExportDirFlag,
			}),
			Before: loadFlagsFromConfig,
			Action: func(cliCtx *cli.Context) error {
				if err := exportSlashingProtectionJSON(cliCtx); err != nil {
					log.WithError(err).Fatal("Could not export slashing protection file")
				}
				return nil
			},
		},
		{
			Name:  "import",
			Usage: "imports a selected slashing protection JSON file into the database, compliant with EIP-3076",
			Flags: commandFlags(gateFlags, []cli.Flag{
				flags.SlashingProtectionJSONFileFlag,
			}),
			Before: loadFlagsFromConfig,
			Action: func(cliCtx *cli.Context) error {
				if err := importSlashingProtectionJSON(cliCtx); err != nil {
					log.WithError(err).Fatal("Could not import slashing protection file")
				}
				return nil
			},
		},
		{
			Name:  "register",
			Usage: "registers validator public keys so their signing requests are checked",
			Flags: commandFlags(gateFlags, []cli.Flag{
				flags.PubKeysFlag,
			}),
			Before: loadFlagsFromConfig,
			Action: func(cliCtx *cli.Context) error {
				if err := registerValidators(cliCtx); err != nil {
					log.WithError(err).Fatal("Could not register validators")
				}
				return nil
			},
		},
		{
			Name:  "backup",
			Usage: "writes a backup of the slashing protection database",
			Flags: commandFlags([]cli.Flag{
				flags.BackupDirFlag,
			}),
			Before: loadFlagsFromConfig,
			Action: func(cliCtx *cli.Context) error {
				if err := backupSlashingProtectionDB(cliCtx); err != nil {
					log.WithError(err).Fatal("Could not back up slashing protection database")
				}
				return nil
			},
		},
	},
}
