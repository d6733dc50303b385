// Package iface defines an interface for the slashing protection database.
package iface

import (
	"context"
	"io"

	"github.com/prysmaticlabs/signer-protection/validator/db/kv"
)

// Ensure the kv store implements the interface.
var _ = ValidatorDB(&kv.Store{})

// ValidatorDB defines the necessary methods for a slashing protection DB.
type ValidatorDB interface {
	io.Closer
	DatabasePath() string
	ClearDB() error
	Backup(ctx context.Context, outputDir string, permissionOverride bool) (string, error)

	// Scoped transactions.
	View(ctx context.Context, fn func(*kv.Txn) error) error
	UpdateForValidator(ctx context.Context, pubKey []byte, fn func(*kv.Txn) error) error
	UpdateRegistry(ctx context.Context, pubKeys [][]byte, fn func(*kv.Txn) error) error

	// Validator registry.
	RegisterValidators(ctx context.Context, pubKeys [][]byte) error

	// Genesis information related methods.
	GenesisValidatorsRoot(ctx context.Context) ([]byte, error)
	SaveGenesisValidatorsRoot(ctx context.Context, genValRoot []byte) error
}
