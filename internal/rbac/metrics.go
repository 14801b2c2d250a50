package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// decisionsTotal counts authorization decisions by capability and outcome.
var decisionsTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "rbac_decisions_total",
		Help: "Number of authorization decisions, differentiated by capability and outcome.",
	},
	[]string{"capability", "outcome"},
)

func observeDecision(d Decision) {
	decisionsTotal.WithLabelValues(d.Capability.String(), d.Reason.String()).Inc()
}
