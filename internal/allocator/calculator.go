package allocator

import (
	"fmt"

	"github.com/aws/hyperpod-partition-allocator/internal/capacity"
	"github.com/aws/hyperpod-partition-allocator/internal/profile"
	"github.com/aws/hyperpod-partition-allocator/pkg/quantity"
)

// DefaultResources computes default CPU and memory for a partition request,
// proportional to the share of the instance's total GPU slice capacity the
// request consumes:
//
//	ratio = partitionCount * slicesPerUnit / (gpuCount * MaxSlicesPerGPU)
//
// CPU and memory are the instance totals scaled by the ratio and truncated
// toward zero (conservative under-allocation).
//
// Inputs are assumed to have already passed the validator; errors here are
// programmer-error paths (unknown instance type, accelerator-less instance,
// malformed profile).
func DefaultResources(table *capacity.Table, instanceType, partitionType string, partitionCount int) (cpu, memory quantity.Quantity, err error) {
	prof, ok := table.Lookup(instanceType)
	if !ok {
		return cpu, memory, fmt.Errorf("unknown instance type %q", instanceType)
	}
	if prof.GPUCount <= 0 {
		return cpu, memory, fmt.Errorf("instance type %q has no accelerators to partition", instanceType)
	}
	slices, err := profile.Slices(partitionType)
	if err != nil {
		return cpu, memory, err
	}

	ratio := float64(partitionCount*slices) / float64(prof.GPUCount*profile.MaxSlicesPerGPU)
	cpu = quantity.FloorCPU(ratio * prof.VCPU)
	memory = quantity.FloorMemoryGiB(ratio * prof.MemoryGiB)
	return cpu, memory, nil
}

// CountAndLimit applies the request/limit presence defaulting rule:
//
//	(nil, nil) -> (nil, nil)   no request in play
//	(c, nil)   -> (c, c)       limit mirrors request
//	(nil, l)   -> (l, l)       request mirrors limit
//	(c, l)     -> (c, l)       both explicit, unchanged
//
// The rule is pure, idempotent, and independent of resource type; it is
// applied uniformly to accelerator counts and partition counts.
func CountAndLimit(count, limit *int64) (*int64, *int64) {
	switch {
	case count == nil && limit == nil:
		return nil, nil
	case limit == nil:
		c, l := *count, *count
		return &c, &l
	case count == nil:
		c, l := *limit, *limit
		return &c, &l
	default:
		c, l := *count, *limit
		return &c, &l
	}
}
