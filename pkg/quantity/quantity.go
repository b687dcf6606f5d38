// Package quantity provides a small closed sum type for the resource
// quantities the allocation engine emits: integer device counts, decimal CPU
// cores, and memory in GiB. Each kind has exactly one wire form, so callers
// never coerce between strings, ints, and floats at the point of use.
//
// Wire forms:
//   - Count:  plain integer, e.g. "2"
//   - CPU:    decimal string with one fractional digit, e.g. "3.0"
//   - Memory: GiB value with a Gi suffix, e.g. "41.0Gi"
package quantity

import (
	"fmt"
	"math"
	"strconv"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Kind identifies which member of the sum a Quantity holds.
type Kind int

const (
	// KindCount is an integer device count (accelerators, partition units).
	KindCount Kind = iota
	// KindCPU is a number of CPU cores.
	KindCPU
	// KindMemory is an amount of memory in GiB.
	KindMemory
)

const bytesPerGiB = 1 << 30

// Quantity is one resource amount of a single kind.
// The zero value is a Count of 0.
type Quantity struct {
	kind  Kind
	count int64
	cores float64
	gib   float64
}

// Count returns a device-count quantity.
func Count(n int64) Quantity {
	return Quantity{kind: KindCount, count: n}
}

// CPU returns a CPU quantity in cores.
func CPU(cores float64) Quantity {
	return Quantity{kind: KindCPU, cores: cores}
}

// MemoryGiB returns a memory quantity in GiB.
func MemoryGiB(gib float64) Quantity {
	return Quantity{kind: KindMemory, gib: gib}
}

// Kind returns the kind of the quantity.
func (q Quantity) Kind() Kind { return q.kind }

// Value returns the numeric value in the kind's natural unit
// (devices, cores, or GiB).
func (q Quantity) Value() float64 {
	switch q.kind {
	case KindCPU:
		return q.cores
	case KindMemory:
		return q.gib
	default:
		return float64(q.count)
	}
}

// String returns the canonical wire form for the quantity's kind.
func (q Quantity) String() string {
	switch q.kind {
	case KindCPU:
		return strconv.FormatFloat(q.cores, 'f', 1, 64)
	case KindMemory:
		return strconv.FormatFloat(q.gib, 'f', 1, 64) + "Gi"
	default:
		return strconv.FormatInt(q.count, 10)
	}
}

// ToResource converts the quantity to a Kubernetes resource.Quantity carrying
// the canonical wire form. resource.Quantity preserves the string it was
// parsed from, so the wire form survives serialization into a resource map.
func (q Quantity) ToResource() resource.Quantity {
	return resource.MustParse(q.String())
}

// ParseCPU parses a CPU amount in any Kubernetes quantity notation
// ("10", "10.0", "1500m") into cores.
func ParseCPU(s string) (float64, error) {
	parsed, err := resource.ParseQuantity(s)
	if err != nil {
		return 0, fmt.Errorf("parsing cpu quantity %q: %w", s, err)
	}
	return parsed.AsApproximateFloat64(), nil
}

// ParseMemoryGiB parses a memory amount in any Kubernetes quantity notation
// ("64Gi", "68719476736", "64G") into GiB.
func ParseMemoryGiB(s string) (float64, error) {
	parsed, err := resource.ParseQuantity(s)
	if err != nil {
		return 0, fmt.Errorf("parsing memory quantity %q: %w", s, err)
	}
	return parsed.AsApproximateFloat64() / bytesPerGiB, nil
}

// FloorCPU returns a CPU quantity truncated toward zero to whole cores.
// Truncation (not rounding) keeps derived defaults conservative: the engine
// under-allocates rather than over-committing a shared instance.
func FloorCPU(cores float64) Quantity {
	return CPU(math.Floor(cores))
}

// FloorMemoryGiB returns a memory quantity truncated toward zero to whole GiB.
func FloorMemoryGiB(gib float64) Quantity {
	return MemoryGiB(math.Floor(gib))
}
