package local

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	blockKind       = "block"
	attestationKind = "attestation"
)

type metrics struct {
	slashableProposals    prometheus.Counter
	slashableAttestations prometheus.Counter
	checks                *prometheus.CounterVec
}

// newMetrics creates the gate's collectors. A nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		slashableProposals: factory.NewCounter(prometheus.CounterOpts{
			Name: "local_slashable_proposals_total",
			Help: "Count of blocks refused by local slashing protection.",
		}),
		slashableAttestations: factory.NewCounter(prometheus.CounterOpts{
			Name: "local_slashable_attestations_total",
			Help: "Count of attestations refused by local slashing protection.",
		}),
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slashing_protection_checks_total",
			Help: "Count of signing requests checked against slashing protection, by kind and result.",
		}, []string{"kind", "result"}),
	}
}

func (m *metrics) observe(kind string, approved bool) {
	result := "approved"
	if !approved {
		result = "refused"
	}
	m.checks.WithLabelValues(kind, result).Inc()
}
