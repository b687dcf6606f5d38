package allocator

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/aws/hyperpod-partition-allocator/internal/capacity"
	"github.com/aws/hyperpod-partition-allocator/internal/logging"
	"github.com/aws/hyperpod-partition-allocator/internal/metrics"
	"github.com/aws/hyperpod-partition-allocator/internal/profile"
	"github.com/aws/hyperpod-partition-allocator/pkg/quantity"
)

// NormalizerConfig carries optional Normalizer settings.
type NormalizerConfig struct {
	// InstanceTypeLabel overrides the node-selector key the target instance
	// type is read from. Defaults to DefaultInstanceTypeLabel.
	InstanceTypeLabel string
}

// Normalizer finalizes a replica's container resource map. It is stateless
// apart from the read-only capability table and safe for concurrent use.
type Normalizer struct {
	table             *capacity.Table
	instanceTypeLabel string
}

// NewNormalizer creates a Normalizer over the given capability table.
// config may be nil for defaults.
func NewNormalizer(table *capacity.Table, config *NormalizerConfig) *Normalizer {
	label := DefaultInstanceTypeLabel
	if config != nil && config.InstanceTypeLabel != "" {
		label = config.InstanceTypeLabel
	}
	return &Normalizer{
		table:             table,
		instanceTypeLabel: label,
	}
}

// NormalizeReplica mutates the replica's first container resource block in
// place and leaves every other part of the spec untouched:
//
//   - accelerator and partition counts have the request/limit defaulting
//     rule applied (a lone request or limit is mirrored to the other side);
//   - when a partition resource key is present and the container's requests
//     carry neither cpu nor memory, both are derived proportionally from the
//     partition's share of the instance; when exactly one is present, the
//     other is derived by cross-ratio against the instance's total
//     vCPU/memory pair, preserving the user's explicit value;
//   - every value the normalizer writes uses the canonical wire forms
//     (decimal-string CPU, "<N>Gi" memory, integer counts) regardless of
//     how the input was expressed.
//
// ErrNoContainersFound is the only expected failure; a missing partition
// key or a fully user-specified resource map is a valid pass-through case.
func (n *Normalizer) NormalizeReplica(ctx context.Context, replica *ReplicaSpec) error {
	logger := ctrl.LoggerFrom(ctx)

	containers := replica.Template.Spec.Containers
	if len(containers) == 0 {
		return ErrNoContainersFound
	}
	res := &containers[0].Resources

	// Whole-accelerator counts get the same mirroring as partition counts.
	accCount, accLimit := CountAndLimit(
		countValue(res.Requests, profile.AcceleratorResource),
		countValue(res.Limits, profile.AcceleratorResource),
	)
	setCount(res, profile.AcceleratorResource, accCount, accLimit)

	partitionType, found := findPartitionType(res)
	if !found {
		return nil
	}
	partitionResource := profile.ResourceName(partitionType)

	partCount, partLimit := CountAndLimit(
		countValue(res.Requests, partitionResource),
		countValue(res.Limits, partitionResource),
	)
	setCount(res, partitionResource, partCount, partLimit)

	instanceType := replica.Template.Spec.NodeSelector[n.instanceTypeLabel]

	_, hasCPU := res.Requests[corev1.ResourceCPU]
	_, hasMemory := res.Requests[corev1.ResourceMemory]

	switch {
	case hasCPU && hasMemory:
		// Fully user-specified, leave both untouched.

	case !hasCPU && !hasMemory:
		cpu, memory, err := DefaultResources(n.table, instanceType, partitionType, int(*partCount))
		if err != nil {
			return fmt.Errorf("deriving default resources for partition %q: %w", partitionType, err)
		}
		res.Requests[corev1.ResourceCPU] = cpu.ToResource()
		res.Requests[corev1.ResourceMemory] = memory.ToResource()
		logger.V(logging.DEBUG).Info("Derived proportional resource defaults",
			"instanceType", instanceType,
			"partitionType", partitionType,
			"partitionCount", *partCount,
			"cpu", cpu.String(),
			"memory", memory.String())

	default:
		// Exactly one of cpu/memory is user-specified: derive the other by
		// cross-ratio against the instance's total vCPU/memory pair. Note
		// the ratio base differs from the slice-proportional default above;
		// this asymmetry matches the observed allocation behavior.
		prof, ok := n.table.Lookup(instanceType)
		if !ok {
			return fmt.Errorf("deriving resources for partition %q: unknown instance type %q", partitionType, instanceType)
		}
		if hasCPU {
			cpuQty := res.Requests[corev1.ResourceCPU]
			cores, err := quantity.ParseCPU(cpuQty.String())
			if err != nil {
				return err
			}
			memory := quantity.FloorMemoryGiB(cores / prof.VCPU * prof.MemoryGiB)
			res.Requests[corev1.ResourceMemory] = memory.ToResource()
			logger.V(logging.DEBUG).Info("Derived memory from user-specified cpu",
				"instanceType", instanceType,
				"cpu", cpuQty.String(),
				"memory", memory.String())
		} else {
			memQty := res.Requests[corev1.ResourceMemory]
			gib, err := quantity.ParseMemoryGiB(memQty.String())
			if err != nil {
				return err
			}
			cpu := quantity.FloorCPU(gib / prof.MemoryGiB * prof.VCPU)
			res.Requests[corev1.ResourceCPU] = cpu.ToResource()
			logger.V(logging.DEBUG).Info("Derived cpu from user-specified memory",
				"instanceType", instanceType,
				"memory", memQty.String(),
				"cpu", cpu.String())
		}
	}

	metrics.RecordReplicaNormalized(instanceType)
	return nil
}

// countValue returns the integer value of a resource entry, or nil when the
// list has no such entry.
func countValue(list corev1.ResourceList, name corev1.ResourceName) *int64 {
	if list == nil {
		return nil
	}
	qty, ok := list[name]
	if !ok {
		return nil
	}
	v := qty.Value()
	return &v
}

// setCount writes mirrored count/limit values back into the resource maps
// in wire form. nil values mean the resource is not in play and nothing is
// written.
func setCount(res *corev1.ResourceRequirements, name corev1.ResourceName, count, limit *int64) {
	if count != nil {
		if res.Requests == nil {
			res.Requests = corev1.ResourceList{}
		}
		res.Requests[name] = quantity.Count(*count).ToResource()
	}
	if limit != nil {
		if res.Limits == nil {
			res.Limits = corev1.ResourceList{}
		}
		res.Limits[name] = quantity.Count(*limit).ToResource()
	}
}

// findPartitionType scans the container's requests and limits for a
// partition resource key and returns its profile. Requests are scanned
// before limits; keys are visited in sorted order so the result is
// deterministic if a spec carries several partition keys.
func findPartitionType(res *corev1.ResourceRequirements) (string, bool) {
	for _, list := range []corev1.ResourceList{res.Requests, res.Limits} {
		keys := make([]string, 0, len(list))
		for name := range list {
			keys = append(keys, string(name))
		}
		sort.Strings(keys)
		for _, key := range keys {
			if p, ok := profile.FromResourceName(corev1.ResourceName(key)); ok {
				return p, true
			}
		}
	}
	return "", false
}
