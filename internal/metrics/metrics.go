// Package metrics registers the engine's Prometheus metrics. Registration
// is optional: when InitMetrics has not been called, the record helpers are
// no-ops, so library callers that do not expose metrics pay nothing.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelInstanceType = "instance_type"
	labelOutcome      = "outcome"
)

var (
	partitionValidationTotal *prometheus.CounterVec
	replicasNormalizedTotal  *prometheus.CounterVec

	// initOnce ensures InitMetrics is only executed once for thread safety
	initOnce sync.Once
	initErr  error
)

// InitMetrics registers the engine metrics with the provided registry.
// This function is thread-safe and can be called multiple times;
// initialization will only occur once with the first call's registry.
func InitMetrics(registry prometheus.Registerer) error {
	initOnce.Do(func() {
		partitionValidationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hyperpod_partition_validation_total",
				Help: "Total number of partition request validations, by outcome",
			},
			[]string{labelInstanceType, labelOutcome},
		)
		replicasNormalizedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hyperpod_replicas_normalized_total",
				Help: "Total number of replica resource maps normalized",
			},
			[]string{labelInstanceType},
		)

		if err := registry.Register(partitionValidationTotal); err != nil {
			initErr = fmt.Errorf("failed to register partitionValidationTotal metric: %w", err)
			return
		}
		if err := registry.Register(replicasNormalizedTotal); err != nil {
			initErr = fmt.Errorf("failed to register replicasNormalizedTotal metric: %w", err)
			return
		}
	})
	return initErr
}

// RecordValidation counts one validation call and its outcome
// ("accepted" or a rejection class such as "exclusivity" or "unsupported").
func RecordValidation(instanceType, outcome string) {
	if partitionValidationTotal == nil {
		return
	}
	partitionValidationTotal.WithLabelValues(instanceType, outcome).Inc()
}

// RecordReplicaNormalized counts one normalized replica resource map.
func RecordReplicaNormalized(instanceType string) {
	if replicasNormalizedTotal == nil {
		return
	}
	replicasNormalizedTotal.WithLabelValues(instanceType).Inc()
}
