// Package allocator turns a raw replica resource declaration into a
// finalized, fully-populated container resource map: it mirrors request and
// limit counts, derives proportional CPU/memory defaults for partition
// slices, and normalizes mixed-representation user input into one
// consistent wire form. Each call is a single-pass, stateless transform.
package allocator

import (
	"errors"

	corev1 "k8s.io/api/core/v1"
)

// DefaultInstanceTypeLabel is the node-selector key carrying the target
// instance type of a replica's pod template.
const DefaultInstanceTypeLabel = "node.kubernetes.io/instance-type"

// ErrNoContainersFound indicates a structurally invalid replica spec whose
// pod template has no containers. This is a precondition violation, not a
// validation nuance; the normalizer fails fast on it.
var ErrNoContainersFound = errors.New("no containers found in replica pod template")

// ReplicaSpec is one schedulable unit of a training job: a replica count
// plus the pod template whose first container carries the resource map the
// engine normalizes. The surrounding job structure belongs to the external
// submission collaborator and is never touched.
type ReplicaSpec struct {
	// Replicas is the number of replicas of this unit.
	Replicas int32
	// Template is the pod template for each replica.
	Template corev1.PodTemplateSpec
}
