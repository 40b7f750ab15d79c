package service_test

import (
	"context"
	"fmt"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/service"
	"github.com/openreal2sim/review-dashboard/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("stats service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.StatsService
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
		srv = service.NewStatsService(s)

		for _, stm := range []string{
			fmt.Sprintf(insertReconstructionStm, "a1", "week_1", "Alice", "approved", "approved"),
			fmt.Sprintf(insertReconstructionStm, "a2", "week_1", "alice", "approved", "wrong"),
			fmt.Sprintf(insertReconstructionStm, "a3", "week_2", "alice", "object", "pending"),
			fmt.Sprintf(insertReconstructionStm, "b1", "week_1", "bob", "pending", "pending"),
		} {
			Expect(gormdb.Exec(stm).Error).To(BeNil())
		}
	})

	AfterAll(func() {
		s.Close()
	})

	It("counts every label overall", func() {
		stats, err := srv.Compute(context.TODO(), nil)
		Expect(err).To(BeNil())

		Expect(stats.All.Total).To(Equal(4))
		Expect(stats.All.Status[v1alpha1.ReconstructionStatusApproved]).To(Equal(v1alpha1.Count{Count: 2, Percentage: 50}))
		Expect(stats.All.Status[v1alpha1.ReconstructionStatusNoRecon]).To(Equal(v1alpha1.Count{}))
		Expect(stats.All.Pose[v1alpha1.PoseStatusPending]).To(Equal(v1alpha1.Count{Count: 2, Percentage: 50}))
		Expect(stats.All.Approved).To(Equal(v1alpha1.Count{Count: 1, Percentage: 25}))
		Expect(stats.All.NotApproved).To(Equal(v1alpha1.Count{Count: 3, Percentage: 75}))
	})

	It("groups authors case-insensitively", func() {
		stats, err := srv.Compute(context.TODO(), nil)
		Expect(err).To(BeNil())

		Expect(stats.Authors).To(HaveLen(2))
		Expect(stats.Authors[0].Author).To(Equal("alice"))
		Expect(stats.Authors[0].Total).To(Equal(3))
		Expect(stats.Authors[0].Approved.Count).To(Equal(1))
		Expect(stats.Authors[1].Author).To(Equal("bob"))
		Expect(stats.Authors[1].Approved).To(Equal(v1alpha1.Count{Count: 0, Percentage: 0}))
		Expect(stats.Authors[1].NotApproved).To(Equal(v1alpha1.Count{Count: 1, Percentage: 100}))
	})

	It("restricts to a week", func() {
		stats, err := srv.Compute(context.TODO(), service.NewReconstructionFilter(service.WithWeek("week_2")))
		Expect(err).To(BeNil())

		Expect(stats.All.Total).To(Equal(1))
		Expect(stats.Authors).To(HaveLen(1))
		Expect(stats.All.Status[v1alpha1.ReconstructionStatusObject].Percentage).To(Equal(float64(100)))
	})

	It("returns zero percentages for an empty selection", func() {
		stats, err := srv.Compute(context.TODO(), service.NewReconstructionFilter(service.WithWeek("week_9")))
		Expect(err).To(BeNil())

		Expect(stats.All.Total).To(BeZero())
		Expect(stats.All.Approved).To(Equal(v1alpha1.Count{}))
		Expect(stats.Authors).To(BeEmpty())
	})
})
