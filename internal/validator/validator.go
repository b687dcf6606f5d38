// Package validator gates accelerator-partition requests before allocation.
// Validation is an ordered sequence of checks that short-circuits on the
// first failure and reports a boolean-plus-reason; it has no side effects
// beyond the optional read-only cluster capacity probe.
package validator

import (
	"context"
	"fmt"
	"strings"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/aws/hyperpod-partition-allocator/internal/capacity"
	"github.com/aws/hyperpod-partition-allocator/internal/discovery"
	"github.com/aws/hyperpod-partition-allocator/internal/logging"
	"github.com/aws/hyperpod-partition-allocator/internal/metrics"
	"github.com/aws/hyperpod-partition-allocator/internal/profile"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Request is the union of the coarse-accelerator and fine-grained partition
// request styles. Zero values mean the field is absent; at most one style
// may be populated at a time, which Validate enforces.
type Request struct {
	// PartitionType is the requested MIG partition profile, e.g. "mig-1g.5gb".
	PartitionType string
	// PartitionCount is the requested number of partition units per replica.
	PartitionCount int
	// PartitionLimit is the partition unit limit per replica.
	PartitionLimit int
	// Accelerators is the coarse whole-accelerator request count.
	Accelerators int
	// AcceleratorsLimit is the coarse whole-accelerator limit.
	AcceleratorsLimit int
	// NodeCount is the coarse node count request.
	NodeCount int
	// InstanceType is the target instance type, e.g. "ml.p4d.24xlarge".
	InstanceType string
}

// Validation outcome classes reported to metrics.
const (
	outcomeAccepted            = "accepted"
	outcomeMissingType         = "missing_partition_type"
	outcomeExclusivity         = "exclusivity"
	outcomeUnsupportedInstance = "unsupported_instance"
	outcomeUnknownPartition    = "unknown_partition_type"
	outcomeUnsupportedProfile  = "unsupported_partition_type"
	outcomeUnavailable         = "unavailable"
)

// Validator checks partition requests against the instance capability table
// and, optionally, live cluster capacity.
type Validator struct {
	table      *capacity.Table
	allowed    []string
	allowedSet sets.Set[string]
}

// New creates a Validator over the given capability table. The closed
// allow-list of recognized partition types is the union of every instance
// type's supported set, computed once here.
func New(table *capacity.Table) *Validator {
	allowed := table.AllPartitionTypes()
	return &Validator{
		table:      table,
		allowed:    allowed,
		allowedSet: sets.New(allowed...),
	}
}

// Validate runs the ordered request checks, short-circuiting on the first
// failure. probe may be nil to skip the live-cluster availability check
// (e.g. for offline or deterministic validation in tests). A probe error is
// treated as "partition unavailable", never retried.
//
// On success it returns (true, ""); on failure, (false, reason) with a
// user-facing reason naming the offending field or enumerating the allowed
// set, sorted for deterministic messages.
func (v *Validator) Validate(ctx context.Context, req Request, probe discovery.CapacityProbe) (bool, string) {
	logger := ctrl.LoggerFrom(ctx)

	if req.PartitionType == "" {
		return v.reject(req, outcomeMissingType,
			"partition_type must be specified to use accelerator partitions.")
	}

	// Mutual exclusivity with the coarse request style. Fields are checked
	// in a fixed order so the named offending field is deterministic when
	// several are set.
	exclusive := []struct {
		name  string
		value int
	}{
		{"accelerators", req.Accelerators},
		{"accelerators_limit", req.AcceleratorsLimit},
		{"node_count", req.NodeCount},
	}
	for _, field := range exclusive {
		if field.value > 0 {
			return v.reject(req, outcomeExclusivity, fmt.Sprintf(
				"accelerator_partition_type cannot be used together with %s.", field.name))
		}
	}

	if !v.table.SupportsPartitions(req.InstanceType) {
		return v.reject(req, outcomeUnsupportedInstance, fmt.Sprintf(
			"Instance type '%s' does not support accelerator partitions.", req.InstanceType))
	}

	if !v.allowedSet.Has(req.PartitionType) {
		return v.reject(req, outcomeUnknownPartition, fmt.Sprintf(
			"Partition type '%s' is not recognized. Recognized partition types: %s.",
			req.PartitionType, strings.Join(v.allowed, ", ")))
	}

	prof, _ := v.table.Lookup(req.InstanceType)
	if !prof.SupportedPartitions.Has(req.PartitionType) {
		return v.reject(req, outcomeUnsupportedProfile, fmt.Sprintf(
			"Instance type '%s' does not support partition type '%s'. Supported partition types: %s.",
			req.InstanceType, req.PartitionType,
			strings.Join(v.table.SupportedPartitions(req.InstanceType), ", ")))
	}

	if probe != nil {
		resourceName := profile.ResourceName(req.PartitionType)
		available, err := probe.HasAllocatable(ctx, resourceName)
		if err != nil {
			logger.V(logging.DEBUG).Info("Cluster capacity probe failed, treating partition as unavailable",
				"resource", resourceName,
				"error", err)
			available = false
		}
		if !available {
			return v.reject(req, outcomeUnavailable, fmt.Sprintf(
				"Partition type '%s' has no allocatable capacity in the cluster. "+
					"Run the list-available-partitions diagnostic to see partition types currently offered by cluster nodes.",
				req.PartitionType))
		}
	}

	metrics.RecordValidation(req.InstanceType, outcomeAccepted)
	return true, ""
}

func (v *Validator) reject(req Request, outcome, reason string) (bool, string) {
	metrics.RecordValidation(req.InstanceType, outcome)
	return false, reason
}
