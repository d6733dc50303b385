// Package local implements slashing protection backed by the local signing history
// database. Every approved request is recorded in the same transaction that checked it.
package local

import (
	"bytes"
	"context"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prysmaticlabs/signer-protection/validator/db/iface"
	history "github.com/prysmaticlabs/signer-protection/validator/slashing-protection-history"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Service to manage validator slashing protection. Local slashing
// protection is mandatory at runtime.
type Service struct {
	validatorDB iface.ValidatorDB
	log         logrus.FieldLogger
	metrics     *metrics
}

// Config for the slashing protection service.
type Config struct {
	ValidatorDB iface.ValidatorDB
	// Logger defaults to the package logger.
	Logger logrus.FieldLogger
	// MetricsRegisterer receives the service's collectors. Nil leaves them unregistered.
	MetricsRegisterer prometheus.Registerer
}

// NewService creates a new slashing protection service on top of the given database.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil || cfg.ValidatorDB == nil {
		return nil, errors.New("no validator database provided")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log
	}
	return &Service{
		validatorDB: cfg.ValidatorDB,
		log:         logger,
		metrics:     newMetrics(cfg.MetricsRegisterer),
	}, nil
}

// RegisterValidators registers every public key not known yet. Signing requests for
// unregistered keys are always refused.
func (s *Service) RegisterValidators(ctx context.Context, pubKeys [][]byte) error {
	ctx, span := trace.StartSpan(ctx, "local.RegisterValidators")
	defer span.End()
	if err := s.validatorDB.RegisterValidators(ctx, pubKeys); err != nil {
		return errors.Wrap(err, "could not register validators")
	}
	return nil
}

// ImportData imports an EIP-3076 interchange document. Nothing is written when the
// document is rejected.
func (s *Service) ImportData(ctx context.Context, r io.Reader) error {
	ctx, span := trace.StartSpan(ctx, "local.ImportData")
	defer span.End()
	summary, err := history.ImportStandardProtectionJSON(ctx, s.validatorDB, r)
	if err != nil {
		return errors.Wrap(err, "could not import slashing protection history")
	}
	s.log.WithFields(logrus.Fields{
		"newValidators": summary.Validators,
		"blocks":        summary.Blocks,
		"attestations":  summary.Attestations,
	}).Info("Imported slashing protection history")
	return nil
}

// ExportData writes the full signing history as an EIP-3076 interchange document.
func (s *Service) ExportData(ctx context.Context, w io.Writer) error {
	ctx, span := trace.StartSpan(ctx, "local.ExportData")
	defer span.End()
	doc, err := history.ExportStandardProtectionJSON(ctx, s.validatorDB)
	if err != nil {
		return errors.Wrap(err, "could not export slashing protection history")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "could not encode slashing protection history")
	}
	s.log.WithField("validators", len(doc.Data)).Info("Exported slashing protection history")
	return nil
}

// rootsMatch treats a missing root as unknown, which never matches.
func rootsMatch(existing, incoming []byte) bool {
	return len(existing) != 0 && bytes.Equal(existing, incoming)
}
