package historycmd

import (
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/signer-protection/cmd"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/flags"
	"github.com/prysmaticlabs/signer-protection/cmd/signer-protection/userprompt"
	"github.com/prysmaticlabs/signer-protection/io/file"
	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
	slashingprotection "github.com/prysmaticlabs/signer-protection/validator/slashing-protection"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection/iface"
	"github.com/urfave/cli/v2"
)

// inputDirectory resolves path flags, asking at the terminal for the ones not given.
var inputDirectory = userprompt.InputDirectory

// inputDataDir returns --datadir, asking for it when it was not given.
func inputDataDir(cliCtx *cli.Context) (string, error) {
	dataDir, err := inputDirectory(cliCtx, userprompt.DataDirPromptText, cmd.DataDirFlag)
	if err != nil {
		return "", errors.Wrap(err, "could not read directory value from input")
	}
	if dataDir == "" {
		return "", errors.Errorf("no data directory specified, set it with --%s", cmd.DataDirFlag.Name)
	}
	return dataDir, nil
}

// findDatabase looks for a database of the backend selected by --db-backend inside dataDir
// or its subdirectories, and returns the directory holding it.
func findDatabase(cliCtx *cli.Context, dataDir string) (bool, string, error) {
	exists, err := file.HasDir(dataDir)
	if err != nil {
		return false, "", errors.Wrapf(err, "could not check if data directory %s exists", dataDir)
	}
	if !exists {
		return false, "", nil
	}
	var found bool
	var path string
	if cliCtx.String(flags.DBBackendFlag.Name) == kv.BoltBackend {
		found, path, err = file.RecursiveFileFind(kv.ProtectionDbFileName, dataDir)
	} else {
		found, path, err = file.RecursiveDirFind(kv.ProtectionDbDirName, dataDir)
	}
	if err != nil {
		return false, "", errors.Wrapf(err, "error finding slashing protection database at path %s", dataDir)
	}
	if !found {
		return false, "", nil
	}
	return true, filepath.Dir(path), nil
}

// openValidatorDB opens the slashing protection database in dataDir with the storage
// engine selected by --db-backend.
func openValidatorDB(cliCtx *cli.Context, dataDir string) (*kv.Store, error) {
	validatorDB, err := kv.NewKVStore(cliCtx.Context, dataDir, &kv.Config{
		Backend:              cliCtx.String(flags.DBBackendFlag.Name),
		ValidatorIDCacheSize: cliCtx.Int(flags.ValidatorIDCacheSizeFlag.Name),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not access slashing protection database at path %s", dataDir)
	}
	return validatorDB, nil
}

func closeValidatorDB(validatorDB *kv.Store) {
	if err := validatorDB.Close(); err != nil {
		log.WithError(err).Error("Could not close slashing protection database")
	}
}

// genesisValidatorsRoot decodes --genesis-validators-root, nil when it is not given.
func genesisValidatorsRoot(cliCtx *cli.Context) ([]byte, error) {
	root := cliCtx.String(flags.GenesisValidatorsRootFlag.Name)
	if root == "" {
		return nil, nil
	}
	decoded, err := hexutil.Decode(root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode --%s", flags.GenesisValidatorsRootFlag.Name)
	}
	return decoded, nil
}

// newProtector builds the signing gate selected by --disable-slashing-protection, pinning
// the database to --genesis-validators-root when given.
func newProtector(cliCtx *cli.Context, validatorDB *kv.Store) (iface.Protector, error) {
	root, err := genesisValidatorsRoot(cliCtx)
	if err != nil {
		return nil, err
	}
	return slashingprotection.New(cliCtx.Context, &slashingprotection.Config{
		ValidatorDB:           validatorDB,
		Disabled:              cliCtx.Bool(flags.DisableSlashingProtectionFlag.Name),
		GenesisValidatorsRoot: root,
	})
}
