package importer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing/fstest"

	"github.com/hashicorp/go-multierror"
	"github.com/openreal2sim/review-dashboard/internal/config"
	"github.com/openreal2sim/review-dashboard/internal/importer"
	st "github.com/openreal2sim/review-dashboard/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func dataTree() fstest.MapFS {
	return fstest.MapFS{
		"week_1/alice/mug/metadata.yaml":       {Data: []byte("prompt: pick the mug\nstatus: approved\npose: almost\ngripped: true\n")},
		"week_1/alice/mug/video.mp4":           {Data: []byte("x")},
		"week_1/bob/cup/metadata.yaml":         {Data: []byte("prompt: pick the cup\n")},
		"week_2/alice/plate/metadata.yaml":     {Data: []byte("status: delete\n")},
		"week_2/alice/empty/simulation/a.json": {Data: []byte("{}")},
		"week_2/bob/broken/metadata.yaml":      {Data: []byte("status: [unterminated\n")},
		"README.md":                            {Data: []byte("not a week")},
	}
}

var _ = Describe("importer", Ordered, func() {
	var (
		store  st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewSqlite(filepath.Join(GinkgoT().TempDir(), "importer.db"))
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

	Context("collect", func() {
		It("fills week and author from the path and defaults labels to pending", func() {
			recs, result, err := importer.Collect(dataTree())

			var merr *multierror.Error
			Expect(errors.As(err, &merr)).To(BeTrue())
			Expect(merr.Errors).To(HaveLen(1))
			Expect(merr.Errors[0].Error()).To(ContainSubstring("week_2/bob/broken"))

			Expect(result).To(Equal(importer.Result{Examined: 5, Imported: 3, Skipped: 2}))
			Expect(recs).To(HaveLen(3))

			doc := recs.Document()
			Expect(doc["mug"].Week).To(Equal("week_1"))
			Expect(doc["mug"].Author).To(Equal("alice"))
			Expect(doc["mug"].Status).To(Equal("approved"))
			Expect(doc["mug"].Pose).To(Equal("almost"))
			Expect(doc["mug"].Gripped).To(BeTrue())

			Expect(doc["cup"].Status).To(Equal("pending"))
			Expect(doc["cup"].Pose).To(Equal("pending"))
			Expect(doc["cup"].Prompt).To(Equal("pick the cup"))

			Expect(doc["plate"].Status).To(Equal("pending"))
		})

		It("skips a name seen twice", func() {
			tree := dataTree()
			tree["week_3/carol/mug/metadata.yaml"] = &fstest.MapFile{Data: []byte("status: object\n")}

			recs, _, err := importer.Collect(tree)
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("already imported from week_1/alice/mug"))
			Expect(recs.Document()["mug"].Status).To(Equal("approved"))
		})
	})

	Context("import", func() {
		It("writes the collected records", func() {
			result, err := importer.NewImporter(store, false).Import(context.TODO(), dataTree())
			Expect(err).NotTo(BeNil())
			Expect(result.Imported).To(Equal(3))
			Expect(result.Stored).To(BeNumerically("==", 3))

			count, err := store.Reconstruction().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(BeNumerically("==", 3))

			rec, err := store.Reconstruction().Get(context.TODO(), "mug")
			Expect(err).To(BeNil())
			Expect(rec.Author).To(Equal("alice"))
		})

		It("writes nothing on a dry run", func() {
			result, _ := importer.NewImporter(store, true).Import(context.TODO(), dataTree())
			Expect(result.Imported).To(Equal(3))
			Expect(result.Stored).To(BeZero())

			count, err := store.Reconstruction().Count(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(BeNumerically("==", 0))
		})

		It("overwrites existing records", func() {
			tree := fstest.MapFS{"week_1/alice/mug/metadata.yaml": {Data: []byte("status: object\n")}}
			_, err := importer.NewImporter(store, false).Import(context.TODO(), tree)
			Expect(err).To(BeNil())

			tree["week_1/alice/mug/metadata.yaml"] = &fstest.MapFile{Data: []byte("status: approved\n")}
			_, err = importer.NewImporter(store, false).Import(context.TODO(), tree)
			Expect(err).To(BeNil())

			rec, err := store.Reconstruction().Get(context.TODO(), "mug")
			Expect(err).To(BeNil())
			Expect(rec.Status).To(Equal("approved"))
		})
	})
})
