package validator

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"

	"github.com/aws/hyperpod-partition-allocator/internal/capacity"
	"github.com/aws/hyperpod-partition-allocator/internal/logging"
)

// stubProbe is a canned CapacityProbe for exercising the availability check.
type stubProbe struct {
	available bool
	err       error
	asked     []corev1.ResourceName
}

func (s *stubProbe) HasAllocatable(_ context.Context, name corev1.ResourceName) (bool, error) {
	s.asked = append(s.asked, name)
	return s.available, s.err
}

var _ = Describe("Validate", func() {
	var (
		ctx       context.Context
		validator *Validator
	)

	validRequest := func() Request {
		return Request{
			PartitionType:  "mig-1g.5gb",
			PartitionCount: 2,
			InstanceType:   "ml.p4d.24xlarge",
		}
	}

	BeforeEach(func() {
		ctx = logging.NewTestLoggerIntoContext(context.Background())
		validator = New(capacity.Default())
	})

	Context("without a cluster capacity probe", func() {
		It("should accept a well-formed request", func() {
			ok, reason := validator.Validate(ctx, validRequest(), nil)
			Expect(ok).To(BeTrue())
			Expect(reason).To(BeEmpty())
		})

		It("should reject a request with no partition type", func() {
			req := validRequest()
			req.PartitionType = ""
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("partition_type must be specified to use accelerator partitions."))
		})

		It("should reject mixing partitions with a whole-accelerator request", func() {
			req := validRequest()
			req.Accelerators = 4
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("accelerator_partition_type cannot be used together with accelerators."))
		})

		It("should reject mixing partitions with an accelerator limit", func() {
			req := validRequest()
			req.AcceleratorsLimit = 4
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("accelerator_partition_type cannot be used together with accelerators_limit."))
		})

		It("should reject mixing partitions with a node count", func() {
			req := validRequest()
			req.NodeCount = 2
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("accelerator_partition_type cannot be used together with node_count."))
		})

		It("should name the first offending exclusive field when several are set", func() {
			req := validRequest()
			req.NodeCount = 2
			req.Accelerators = 4
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("accelerator_partition_type cannot be used together with accelerators."))
		})

		It("should reject an instance type with no partitionable accelerators", func() {
			req := validRequest()
			req.InstanceType = "ml.g5.12xlarge"
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("Instance type 'ml.g5.12xlarge' does not support accelerator partitions."))
		})

		It("should reject an unknown instance type", func() {
			req := validRequest()
			req.InstanceType = "ml.m5.large"
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(Equal("Instance type 'ml.m5.large' does not support accelerator partitions."))
		})

		It("should reject an unrecognized partition type with the sorted allow-list", func() {
			req := validRequest()
			req.PartitionType = "mig-9g.999gb"
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(HavePrefix("Partition type 'mig-9g.999gb' is not recognized. Recognized partition types: "))
			Expect(reason).To(ContainSubstring("mig-1g.5gb"))
			Expect(reason).To(ContainSubstring("mig-7g.40gb"))
			Expect(reason).To(HaveSuffix("."))
		})

		It("should reject a recognized partition type the instance does not support", func() {
			// mig-1g.5gb is an A100 40GB profile, not offered on H100 instances.
			req := validRequest()
			req.InstanceType = "ml.p5.48xlarge"
			ok, reason := validator.Validate(ctx, req, nil)
			Expect(ok).To(BeFalse())
			Expect(reason).To(HavePrefix(
				"Instance type 'ml.p5.48xlarge' does not support partition type 'mig-1g.5gb'. Supported partition types: "))
		})

		It("should accept every supported pairing in the default table", func() {
			table := capacity.Default()
			for _, instanceType := range table.InstanceTypes() {
				for _, partitionType := range table.SupportedPartitions(instanceType) {
					ok, reason := validator.Validate(ctx, Request{
						PartitionType:  partitionType,
						PartitionCount: 1,
						InstanceType:   instanceType,
					}, nil)
					Expect(ok).To(BeTrue(), "expected %s on %s to validate, got: %s",
						partitionType, instanceType, reason)
				}
			}
		})
	})

	Context("with a cluster capacity probe", func() {
		It("should accept when the partition resource is allocatable", func() {
			probe := &stubProbe{available: true}
			ok, _ := validator.Validate(ctx, validRequest(), probe)
			Expect(ok).To(BeTrue())
			Expect(probe.asked).To(ConsistOf(corev1.ResourceName("nvidia.com/mig-1g.5gb")))
		})

		It("should reject when no node offers the partition resource", func() {
			probe := &stubProbe{available: false}
			ok, reason := validator.Validate(ctx, validRequest(), probe)
			Expect(ok).To(BeFalse())
			Expect(reason).To(HavePrefix("Partition type 'mig-1g.5gb' has no allocatable capacity in the cluster."))
			Expect(reason).To(ContainSubstring("list-available-partitions"))
		})

		It("should treat a probe error as unavailable", func() {
			probe := &stubProbe{available: true, err: errors.New("node list timed out")}
			ok, reason := validator.Validate(ctx, validRequest(), probe)
			Expect(ok).To(BeFalse())
			Expect(reason).To(HavePrefix("Partition type 'mig-1g.5gb' has no allocatable capacity in the cluster."))
		})

		It("should not probe when an earlier check already failed", func() {
			probe := &stubProbe{available: true}
			req := validRequest()
			req.PartitionType = ""
			ok, _ := validator.Validate(ctx, req, probe)
			Expect(ok).To(BeFalse())
			Expect(probe.asked).To(BeEmpty())
		})
	})
})
