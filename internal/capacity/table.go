// Package capacity holds the static per-instance-type capability table:
// vCPU, memory, GPU count, and the set of MIG partition profiles each
// accelerated instance type supports. The table is compiled-in constant
// data, built once into an immutable lookup structure; absence of an entry
// is not an error at this layer — callers decide how to react.
package capacity

import (
	"sort"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Profile describes the fixed hardware capacity of one instance type.
type Profile struct {
	// InstanceType is the SKU identifier, e.g. "ml.p4d.24xlarge".
	InstanceType string
	// VCPU is the total vCPU count of the instance.
	VCPU float64
	// MemoryGiB is the total memory of the instance in GiB.
	MemoryGiB float64
	// GPUCount is the number of physical accelerators on the instance.
	GPUCount int
	// SupportedPartitions is the set of MIG partition profiles the
	// instance's accelerators support. Empty for instance types whose
	// accelerators cannot be partitioned.
	SupportedPartitions sets.Set[string]
}

// Table is an immutable instance-type capability lookup.
type Table struct {
	profiles map[string]Profile
}

// NewTable builds a Table from the given profiles. Later entries for the
// same instance type win.
func NewTable(profiles []Profile) *Table {
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		if p.SupportedPartitions == nil {
			p.SupportedPartitions = sets.New[string]()
		}
		m[p.InstanceType] = p
	}
	return &Table{profiles: m}
}

// Lookup returns the capacity profile for an instance type.
func (t *Table) Lookup(instanceType string) (Profile, bool) {
	p, ok := t.profiles[instanceType]
	return p, ok
}

// SupportsPartitions reports whether the instance type is known and its
// accelerators support at least one partition profile.
func (t *Table) SupportsPartitions(instanceType string) bool {
	p, ok := t.profiles[instanceType]
	return ok && p.SupportedPartitions.Len() > 0
}

// SupportedPartitions returns the sorted partition profiles supported by an
// instance type. Sorted output keeps user-facing messages deterministic.
func (t *Table) SupportedPartitions(instanceType string) []string {
	p, ok := t.profiles[instanceType]
	if !ok {
		return nil
	}
	return sets.List(p.SupportedPartitions)
}

// AllPartitionTypes returns the sorted union of partition profiles supported
// by any instance type in the table. This is the closed allow-list of
// recognized partition types.
func (t *Table) AllPartitionTypes() []string {
	all := sets.New[string]()
	for _, p := range t.profiles {
		all = all.Union(p.SupportedPartitions)
	}
	return sets.List(all)
}

// InstanceTypes returns the sorted instance types present in the table.
func (t *Table) InstanceTypes() []string {
	out := make([]string, 0, len(t.profiles))
	for it := range t.profiles {
		out = append(out, it)
	}
	sort.Strings(out)
	return out
}

// WithOverrides returns a new Table with the given profiles layered on top
// of the receiver. The receiver is never mutated.
func (t *Table) WithOverrides(overrides []Profile) *Table {
	merged := make([]Profile, 0, len(t.profiles)+len(overrides))
	for _, it := range t.InstanceTypes() {
		merged = append(merged, t.profiles[it])
	}
	merged = append(merged, overrides...)
	return NewTable(merged)
}
