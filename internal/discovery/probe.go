// Package discovery provides the live-cluster capacity probe: a single
// list-style read answering whether any node currently advertises positive
// allocatable capacity for a partition resource key. The probe is injected
// into the validator as a capability so offline callers and tests can skip
// it or supply a deterministic fake.
package discovery

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// CapacityProbe answers whether the cluster currently has allocatable
// capacity for a resource key. Implementations perform at most one
// read-only cluster query per call and never retry; a failed probe is
// treated by callers as "capacity unavailable", not as a transient error.
type CapacityProbe interface {
	HasAllocatable(ctx context.Context, name corev1.ResourceName) (bool, error)
}

// K8sCapacityProbe implements CapacityProbe against the Kubernetes API by
// listing nodes and inspecting their advertised allocatable quantities.
type K8sCapacityProbe struct {
	client       client.Client
	nodeSelector string
}

// NewK8sCapacityProbe creates a probe over the given client. nodeSelector
// is an optional label selector restricting which nodes are inspected
// (e.g. for sharded clusters); empty means all nodes.
func NewK8sCapacityProbe(c client.Client, nodeSelector string) *K8sCapacityProbe {
	return &K8sCapacityProbe{
		client:       c,
		nodeSelector: nodeSelector,
	}
}

// HasAllocatable reports whether at least one node advertises a positive
// allocatable quantity for the given resource key.
func (p *K8sCapacityProbe) HasAllocatable(ctx context.Context, name corev1.ResourceName) (bool, error) {
	opts := []client.ListOption{}
	if p.nodeSelector != "" {
		selector, err := labels.Parse(p.nodeSelector)
		if err != nil {
			return false, fmt.Errorf("invalid node selector %q: %w", p.nodeSelector, err)
		}
		opts = append(opts, client.MatchingLabelsSelector{Selector: selector})
	}

	var nodeList corev1.NodeList
	if err := p.client.List(ctx, &nodeList, opts...); err != nil {
		return false, fmt.Errorf("listing nodes for resource %q: %w", name, err)
	}

	for _, node := range nodeList.Items {
		if qty, ok := node.Status.Allocatable[name]; ok && qty.Value() > 0 {
			return true, nil
		}
	}
	return false, nil
}

var _ CapacityProbe = (*K8sCapacityProbe)(nil)
