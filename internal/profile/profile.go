// Package profile parses NVIDIA MIG partition-profile identifiers.
//
// A profile identifier has the shape "mig-<N>g.<size>gb" (e.g. "mig-1g.5gb",
// "mig-3g.40gb"), where <N> is the number of GPU compute slices one unit of
// the profile consumes. A full GPU holds MaxSlicesPerGPU slices.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

const (
	// VendorDomain is the resource-key domain of the partitioning vendor.
	VendorDomain = "nvidia.com"

	// Prefix identifies a MIG-style partition profile.
	Prefix = "mig-"

	// ResourcePrefix is the container resource-key prefix for partition
	// requests, e.g. "nvidia.com/mig-1g.5gb".
	ResourcePrefix = VendorDomain + "/" + Prefix

	// AcceleratorResource is the container resource key for whole GPUs.
	AcceleratorResource corev1.ResourceName = VendorDomain + "/gpu"

	// MaxSlicesPerGPU is the maximum number of partition slices a single
	// physical GPU can be divided into under the MIG scheme.
	MaxSlicesPerGPU = 7
)

var (
	// ErrInvalidProfileType indicates the identifier lacks the MIG prefix.
	ErrInvalidProfileType = errors.New("profile is not a MIG partition profile")

	// ErrInvalidProfileFormat indicates the slice-count segment could not be
	// extracted from the identifier.
	ErrInvalidProfileFormat = errors.New("malformed MIG partition profile")
)

var slicePattern = regexp.MustCompile(`^mig-([0-9]+)g\.[0-9]+gb$`)

// Slices returns the number of GPU compute slices one unit of the given
// profile consumes. It is a pure string-to-int function with no side effects.
func Slices(profileName string) (int, error) {
	if !strings.HasPrefix(profileName, Prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProfileType, profileName)
	}
	m := slicePattern.FindStringSubmatch(profileName)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProfileFormat, profileName)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProfileFormat, profileName)
	}
	return n, nil
}

// ResourceName returns the container resource key for a partition profile,
// e.g. "nvidia.com/mig-1g.5gb" for "mig-1g.5gb".
func ResourceName(profileName string) corev1.ResourceName {
	return corev1.ResourceName(VendorDomain + "/" + profileName)
}

// FromResourceName extracts the partition profile from a container resource
// key. The second return is false when the key is not a partition resource.
func FromResourceName(name corev1.ResourceName) (string, bool) {
	if !strings.HasPrefix(string(name), ResourcePrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(name), VendorDomain+"/"), true
}
