package store_test

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/openreal2sim/review-dashboard/internal/config"
	st "github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertReconstructionStm = "INSERT INTO reconstructions (name, week, author, prompt, status, pose, gripped, created_at, updated_at) VALUES ('%s', '%s', '%s', '', '%s', '%s', FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);"
)

var _ = Describe("reconstruction store", Ordered, func() {
	var (
		store  st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewSqlite(filepath.Join(GinkgoT().TempDir(), "store.db"))
		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormdb = db

		store = st.NewStore(db)
		Expect(store.InitialMigration(context.TODO())).To(Succeed())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM reconstructions;")
	})

	Context("get", func() {
		It("returns the record", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertReconstructionStm, "img_0003", "week_1", "dilara", "pending", "pending"))
			Expect(tx.Error).To(BeNil())

			rec, err := store.Reconstruction().Get(context.TODO(), "img_0003")
			Expect(err).To(BeNil())
			Expect(rec.Week).To(Equal("week_1"))
			Expect(rec.Author).To(Equal("dilara"))
		})

		It("fails with ErrRecordNotFound for an unknown name", func() {
			_, err := store.Reconstruction().Get(context.TODO(), "missing")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			for _, stm := range []string{
				fmt.Sprintf(insertReconstructionStm, "c", "week_1", "alice", "approved", "approved"),
				fmt.Sprintf(insertReconstructionStm, "a", "week_1", "bob", "pending", "wrong"),
				fmt.Sprintf(insertReconstructionStm, "b", "week_2", "alice", "object", "pending"),
			} {
				Expect(gormdb.Exec(stm).Error).To(BeNil())
			}
		})

		It("lists everything sorted by name", func() {
			recs, err := store.Reconstruction().List(context.TODO(), nil, st.NewReconstructionQueryOptions().WithSortOrder(st.SortByName))
			Expect(err).To(BeNil())
			Expect(recs).To(HaveLen(3))
			Expect(recs[0].Name).To(Equal("a"))
			Expect(recs[2].Name).To(Equal("c"))
		})

		It("combines filters", func() {
			filter := st.NewReconstructionQueryFilter().ByAuthor("alice").ByWeek("week_1")
			recs, err := store.Reconstruction().List(context.TODO(), filter, nil)
			Expect(err).To(BeNil())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Name).To(Equal("c"))
		})

		It("filters by status, pose and names", func() {
			recs, err := store.Reconstruction().List(context.TODO(), st.NewReconstructionQueryFilter().ByStatus("object"), nil)
			Expect(err).To(BeNil())
			Expect(recs).To(HaveLen(1))

			recs, err = store.Reconstruction().List(context.TODO(), st.NewReconstructionQueryFilter().ByPose("wrong"), nil)
			Expect(err).To(BeNil())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Name).To(Equal("a"))

			recs, err = store.Reconstruction().List(context.TODO(), st.NewReconstructionQueryFilter().ByNames([]string{"a", "b"}), nil)
			Expect(err).To(BeNil())
			Expect(recs).To(HaveLen(2))
		})

		It("counts", func() {
			count, err := store.Reconstruction().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(3)))
		})
	})

	Context("set", func() {
		It("creates a missing record", func() {
			_, err := store.Reconstruction().Set(context.TODO(), model.Reconstruction{Name: "new", Week: "week_3", Author: "bob", Status: "pending", Pose: "pending"})
			Expect(err).To(BeNil())

			var count int
			Expect(gormdb.Raw("SELECT COUNT(*) FROM reconstructions WHERE name = 'new';").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("replaces every field of an existing record", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertReconstructionStm, "img", "week_1", "alice", "pending", "pending"))
			Expect(tx.Error).To(BeNil())

			_, err := store.Reconstruction().Set(context.TODO(), model.Reconstruction{Name: "img", Status: "approved", Pose: "almost", Gripped: true})
			Expect(err).To(BeNil())

			rec, err := store.Reconstruction().Get(context.TODO(), "img")
			Expect(err).To(BeNil())
			Expect(rec.Status).To(Equal("approved"))
			Expect(rec.Pose).To(Equal("almost"))
			Expect(rec.Gripped).To(BeTrue())
			// full replace: fields missing from the new record are cleared
			Expect(rec.Week).To(BeEmpty())
			Expect(rec.Author).To(BeEmpty())
		})

		It("last write wins", func() {
			for _, status := range []string{"object", "pose", "approved"} {
				_, err := store.Reconstruction().Set(context.TODO(), model.Reconstruction{Name: "img", Status: status, Pose: "pending"})
				Expect(err).To(BeNil())
			}

			rec, err := store.Reconstruction().Get(context.TODO(), "img")
			Expect(err).To(BeNil())
			Expect(rec.Status).To(Equal("approved"))
		})
	})

	Context("set many", func() {
		It("writes all the records", func() {
			err := store.Reconstruction().SetMany(context.TODO(), model.ReconstructionList{
				{Name: "a", Status: "approved", Pose: "approved"},
				{Name: "b", Status: "object", Pose: "pending"},
			})
			Expect(err).To(BeNil())

			count, err := store.Reconstruction().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))
		})

		It("joins the transaction of the caller", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			err = store.Reconstruction().SetMany(ctx, model.ReconstructionList{{Name: "a", Status: "pending", Pose: "pending"}})
			Expect(err).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			count, err := store.Reconstruction().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(BeZero())
		})
	})

	Context("delete", func() {
		It("removes the record", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertReconstructionStm, "img", "week_1", "alice", "pending", "pending"))
			Expect(tx.Error).To(BeNil())

			Expect(store.Reconstruction().Delete(context.TODO(), "img")).To(Succeed())

			_, err := store.Reconstruction().Get(context.TODO(), "img")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("ignores a missing record", func() {
			Expect(store.Reconstruction().Delete(context.TODO(), "missing")).To(Succeed())
		})
	})

	Context("transaction", func() {
		It("commits", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = store.Reconstruction().Set(ctx, model.Reconstruction{Name: "tx", Status: "pending", Pose: "pending"})
			Expect(err).To(BeNil())

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())

			_, err = store.Reconstruction().Get(context.TODO(), "tx")
			Expect(err).To(BeNil())
		})
	})
})
