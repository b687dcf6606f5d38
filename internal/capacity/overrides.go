package capacity

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"
)

// profileOverride is the YAML shape of one ConfigMap-style capacity entry.
type profileOverride struct {
	InstanceType        string   `yaml:"instance_type"`
	VCPU                float64  `yaml:"vcpu"`
	MemoryGiB           float64  `yaml:"memory_gib"`
	GPUCount            int      `yaml:"gpu_count"`
	SupportedPartitions []string `yaml:"supported_partitions,omitempty"`
}

func (o *profileOverride) validate() error {
	if o.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}
	if o.VCPU <= 0 {
		return fmt.Errorf("vcpu must be > 0, got %.1f", o.VCPU)
	}
	if o.MemoryGiB <= 0 {
		return fmt.Errorf("memory_gib must be > 0, got %.1f", o.MemoryGiB)
	}
	if o.GPUCount < 0 {
		return fmt.Errorf("gpu_count must be >= 0, got %d", o.GPUCount)
	}
	if len(o.SupportedPartitions) > 0 && o.GPUCount == 0 {
		return fmt.Errorf("supported_partitions requires gpu_count > 0")
	}
	return nil
}

// ParseCapacityOverrides parses per-instance-type capacity overrides from
// ConfigMap-style data (key -> YAML document). Invalid entries are logged
// and skipped rather than failing the whole parse; keys are processed in
// sorted order so the outcome is deterministic when two entries name the
// same instance type.
func ParseCapacityOverrides(data map[string]string) []Profile {
	if len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Profile, 0, len(keys))
	for _, key := range keys {
		var override profileOverride
		if err := yaml.Unmarshal([]byte(data[key]), &override); err != nil {
			ctrl.Log.Info("Failed to parse capacity override entry, skipping",
				"key", key,
				"error", err)
			continue
		}
		if err := override.validate(); err != nil {
			ctrl.Log.Info("Invalid capacity override entry, skipping",
				"key", key,
				"error", err)
			continue
		}
		out = append(out, Profile{
			InstanceType:        override.InstanceType,
			VCPU:                override.VCPU,
			MemoryGiB:           override.MemoryGiB,
			GPUCount:            override.GPUCount,
			SupportedPartitions: sets.New(override.SupportedPartitions...),
		})
	}
	return out
}
