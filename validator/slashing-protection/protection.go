// Package slashingprotection selects the signing gate used for the lifetime of the process.
package slashingprotection

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dbiface "github.com/prysmaticlabs/signer-protection/validator/db/iface"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection/iface"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection/local"
	"github.com/prysmaticlabs/signer-protection/validator/slashing-protection/noop"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

var log = logrus.WithField("prefix", "slashing-protection")

// Config selects and configures the signing gate.
type Config struct {
	ValidatorDB dbiface.ValidatorDB
	// Disabled approves every request without recording anything.
	Disabled bool
	// GenesisValidatorsRoot is saved on startup when set. It must match a previously stored root.
	GenesisValidatorsRoot []byte
	Logger                logrus.FieldLogger
	MetricsRegisterer     prometheus.Registerer
}

// New returns the local, database backed protector, or the noop protector when
// protection is disabled.
func New(ctx context.Context, cfg *Config) (iface.Protector, error) {
	ctx, span := trace.StartSpan(ctx, "slashingprotection.New")
	defer span.End()

	if cfg == nil {
		return nil, errors.New("no slashing protection config provided")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log
	}
	if cfg.Disabled {
		logger.Warn("Slashing protection is disabled, every signing request will be approved")
		return noop.Protector{}, nil
	}
	if cfg.ValidatorDB == nil {
		return nil, errors.New("slashing protection requires a validator database")
	}
	if len(cfg.GenesisValidatorsRoot) > 0 {
		if err := cfg.ValidatorDB.SaveGenesisValidatorsRoot(ctx, cfg.GenesisValidatorsRoot); err != nil {
			return nil, errors.Wrap(err, "could not save genesis validators root")
		}
	}
	return local.NewService(&local.Config{
		ValidatorDB:       cfg.ValidatorDB,
		Logger:            logger,
		MetricsRegisterer: cfg.MetricsRegisterer,
	})
}
