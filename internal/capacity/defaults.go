package capacity

import (
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// MIG profile sets per accelerator generation. The profile names follow the
// NVIDIA "mig-<slices>g.<memory>gb" convention.
var (
	a100v40Profiles = sets.New(
		"mig-1g.5gb",
		"mig-2g.10gb",
		"mig-3g.20gb",
		"mig-4g.20gb",
		"mig-7g.40gb",
	)
	a100v80Profiles = sets.New(
		"mig-1g.10gb",
		"mig-2g.20gb",
		"mig-3g.40gb",
		"mig-4g.40gb",
		"mig-7g.80gb",
	)
	h100Profiles = sets.New(
		"mig-1g.10gb",
		"mig-1g.20gb",
		"mig-2g.20gb",
		"mig-3g.40gb",
		"mig-4g.40gb",
		"mig-7g.80gb",
	)
	h200Profiles = sets.New(
		"mig-1g.18gb",
		"mig-1g.35gb",
		"mig-2g.35gb",
		"mig-3g.71gb",
		"mig-4g.71gb",
		"mig-7g.141gb",
	)
)

// defaultProfiles is the compiled-in capability dataset for the accelerated
// ml.* instance families. Instance types without MIG-capable accelerators
// carry an empty partition set; they still contribute vCPU/memory/GPU data
// for whole-accelerator allocation.
var defaultProfiles = []Profile{
	{InstanceType: "ml.p4d.24xlarge", VCPU: 96, MemoryGiB: 1152, GPUCount: 8, SupportedPartitions: a100v40Profiles},
	{InstanceType: "ml.p4de.24xlarge", VCPU: 96, MemoryGiB: 1152, GPUCount: 8, SupportedPartitions: a100v80Profiles},
	{InstanceType: "ml.p5.48xlarge", VCPU: 192, MemoryGiB: 2048, GPUCount: 8, SupportedPartitions: h100Profiles},
	{InstanceType: "ml.p5e.48xlarge", VCPU: 192, MemoryGiB: 2048, GPUCount: 8, SupportedPartitions: h200Profiles},
	{InstanceType: "ml.p5en.48xlarge", VCPU: 192, MemoryGiB: 2048, GPUCount: 8, SupportedPartitions: h200Profiles},

	{InstanceType: "ml.g5.xlarge", VCPU: 4, MemoryGiB: 16, GPUCount: 1},
	{InstanceType: "ml.g5.12xlarge", VCPU: 48, MemoryGiB: 192, GPUCount: 4},
	{InstanceType: "ml.g5.48xlarge", VCPU: 192, MemoryGiB: 768, GPUCount: 8},
	{InstanceType: "ml.g6.12xlarge", VCPU: 48, MemoryGiB: 192, GPUCount: 4},
	{InstanceType: "ml.g6e.12xlarge", VCPU: 48, MemoryGiB: 384, GPUCount: 4},

	{InstanceType: "ml.trn1.32xlarge", VCPU: 128, MemoryGiB: 512, GPUCount: 16},
	{InstanceType: "ml.trn2.48xlarge", VCPU: 192, MemoryGiB: 2048, GPUCount: 16},
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Default returns the process-wide default capability table, built once from
// the compiled-in dataset. The returned table is read-only and safe for
// concurrent use.
func Default() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable(defaultProfiles)
	})
	return defaultTable
}
