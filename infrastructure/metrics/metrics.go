// Package metrics exports consensus counters to prometheus.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mergedag"

// Metrics holds the consensus counters
type Metrics struct {
	blocksAccepted        prometheus.Counter
	blocksRejected        *prometheus.CounterVec
	mergeRejectedBlocks   prometheus.Counter
	mergeRejectedDeploys  prometheus.Counter
	finalizedBlocks       prometheus.Counter
	equivocations         prometheus.Counter
	blockInsertionSeconds prometheus.Histogram
}

// New creates the consensus counters and registers them on registerer
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		blocksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_accepted_total",
			Help:      "Blocks that were validated and added to the DAG.",
		}),
		blocksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_rejected_total",
			Help:      "Blocks that were not added to the DAG, by fault kind.",
		}, []string{"fault_kind"}),
		mergeRejectedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_rejected_blocks_total",
			Help:      "Merge candidates excluded from a merge due to conflicts or equivocation.",
		}),
		mergeRejectedDeploys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_rejected_deploys_total",
			Help:      "Deploys whose effects were excluded from a merge.",
		}),
		finalizedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalized_blocks_total",
			Help:      "Blocks added to the finalized fringe.",
		}),
		equivocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equivocations_total",
			Help:      "Blocks found to equivocate with an earlier block of the same sender.",
		}),
		blockInsertionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_insertion_seconds",
			Help:      "Time it took to validate and insert a block.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}

	collectors := []prometheus.Collector{
		m.blocksAccepted,
		m.blocksRejected,
		m.mergeRejectedBlocks,
		m.mergeRejectedDeploys,
		m.finalizedBlocks,
		m.equivocations,
		m.blockInsertionSeconds,
	}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return nil, errors.Wrap(err, "failed to register consensus metrics")
		}
	}
	return m, nil
}

// BlockAccepted records an accepted block together with the outcome of the
// merge of its parents and the number of blocks it finalized
func (m *Metrics) BlockAccepted(rejectedBlocks, rejectedDeploys, finalizedBlocks int, seconds float64) {
	if m == nil {
		return
	}
	m.blocksAccepted.Inc()
	m.mergeRejectedBlocks.Add(float64(rejectedBlocks))
	m.mergeRejectedDeploys.Add(float64(rejectedDeploys))
	m.finalizedBlocks.Add(float64(finalizedBlocks))
	m.blockInsertionSeconds.Observe(seconds)
}

// BlockRejected records a rejected block
func (m *Metrics) BlockRejected(faultKind string) {
	if m == nil {
		return
	}
	m.blocksRejected.WithLabelValues(faultKind).Inc()
}

// Equivocation records a block that was stored as equivocation evidence
func (m *Metrics) Equivocation() {
	if m == nil {
		return
	}
	m.equivocations.Inc()
}
