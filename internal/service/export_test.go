package service_test

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/openreal2sim/review-dashboard/internal/archive"
	"github.com/openreal2sim/review-dashboard/internal/config"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/openreal2sim/review-dashboard/internal/service"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertReconstructionStm = "INSERT INTO reconstructions (name, week, author, prompt, status, pose, gripped, created_at, updated_at) VALUES ('%s', '%s', '%s', '', '%s', '%s', FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);"
)

type archiveEntry struct {
	Name    string
	Payload string
}

// readArchive returns the entries readable from the stream and the error that stopped the walk.
func readArchive(r io.Reader) ([]archiveEntry, error) {
	entries := []archiveEntry{}
	err := archive.TarGzWalk(r, func(header *tar.Header, payload io.Reader, err error) error {
		if err != nil {
			return err
		}
		data, err := io.ReadAll(payload)
		if err != nil {
			return err
		}
		entries = append(entries, archiveEntry{Name: header.Name, Payload: string(data)})
		return nil
	})
	return entries, err
}

type failingWriter struct {
	err error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func newTestStore() (store.Store, *gorm.DB) {
	db, err := store.InitDB(config.NewSqlite(filepath.Join(GinkgoT().TempDir(), "service.db")))
	Expect(err).To(BeNil())

	s := store.NewStore(db)
	Expect(s.InitialMigration(context.TODO())).To(Succeed())
	return s, db
}

var _ = Describe("export service", Ordered, func() {
	var (
		s       store.Store
		gormdb  *gorm.DB
		objects *objectstore.MemoryStore
		srv     *service.ExportService
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		objects = objectstore.NewMemoryStore()
		srv = service.NewExportService(s, objects)

		tx := gormdb.Exec(fmt.Sprintf(insertReconstructionStm, "img_0003", "week_1", "alice", "approved", "approved"))
		Expect(tx.Error).To(BeNil())
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM reconstructions;")
	})

	Context("prefix", func() {
		It("is computed from week, author and name", func() {
			prefix := service.SimulationPrefix(model.Reconstruction{Name: "img", Week: "week_2", Author: "bob"})
			Expect(prefix).To(Equal("week_2/bob/img/simulation/"))
		})
	})

	Context("prepare", func() {
		It("fails with not found for an unknown reconstruction and writes nothing", func() {
			buf := &bytes.Buffer{}
			_, err := srv.Export(context.TODO(), "missing", buf)
			Expect(err).NotTo(BeNil())

			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(err.Error()).To(Equal(`The reconstruction "missing" does not exist.`))
			Expect(buf.Len()).To(BeZero())
			Expect(objects.Fetches()).To(BeEmpty())
		})

		It("keeps the name verbatim in the not found message", func() {
			_, err := srv.Export(context.TODO(), `say "hi"\now`, &bytes.Buffer{})
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(Equal(`The reconstruction "say "hi"\now" does not exist.`))
		})

		It("fails with not found when the simulation folder is empty", func() {
			objects.Put("week_1/alice/img_0003/reconstruction/scene.glb", []byte("glb"))

			buf := &bytes.Buffer{}
			_, err := srv.Export(context.TODO(), "img_0003", buf)

			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(err.Error()).To(Equal(`The reconstruction "img_0003" has no simulation folder.`))
			Expect(buf.Len()).To(BeZero())
		})

		It("fails with not found when the folder holds only directory markers", func() {
			objects.Put("week_1/alice/img_0003/simulation/", nil)
			objects.Put("week_1/alice/img_0003/simulation/assets/", nil)

			_, err := srv.Prepare(context.TODO(), "img_0003")
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("reports a record without week as a missing simulation folder", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertReconstructionStm, "orphan", "", "alice", "pending", "pending"))
			Expect(tx.Error).To(BeNil())
			objects.Put("week_1/alice/orphan/simulation/scene.json", []byte("{}"))

			_, err := srv.Prepare(context.TODO(), "orphan")
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("has no simulation folder"))
		})

		It("skips directory markers", func() {
			objects.Put("week_1/alice/img_0003/simulation/", nil)
			objects.Put("week_1/alice/img_0003/simulation/scene.json", []byte("{}"))
			objects.Put("week_1/alice/img_0003/simulation/assets/", nil)
			objects.Put("week_1/alice/img_0003/simulation/assets/mug.obj", []byte("v 0 0 0"))

			plan, err := srv.Prepare(context.TODO(), "img_0003")
			Expect(err).To(BeNil())
			Expect(plan.Prefix).To(Equal("week_1/alice/img_0003/simulation/"))
			Expect(plan.Objects).To(HaveLen(2))
			Expect(objects.Fetches()).To(BeEmpty())
		})
	})

	Context("stream", func() {
		It("archives every object under the reconstruction name", func() {
			objects.Put("week_1/alice/img_0003/simulation/scene.json", []byte(`{"objects":2}`))
			objects.Put("week_1/alice/img_0003/simulation/", nil)
			objects.Put("week_1/alice/img_0003/simulation/assets/mug.obj", []byte("v 0 0 0"))
			objects.Put("week_1/alice/img_0003/simulation/assets/textures/mug.png", []byte{0x89, 0x50, 0x4e, 0x47})
			objects.Put("week_1/alice/img_00031/simulation/other.json", []byte("not mine"))

			buf := &bytes.Buffer{}
			result, err := srv.Export(context.TODO(), "img_0003", buf)
			Expect(err).To(BeNil())
			Expect(result.Entries).To(Equal(3))
			Expect(result.Bytes).To(Equal(int64(len(`{"objects":2}`) + len("v 0 0 0") + 4)))

			entries, err := readArchive(buf)
			Expect(err).To(BeNil())
			Expect(entries).To(Equal([]archiveEntry{
				{Name: "img_0003/scene.json", Payload: `{"objects":2}`},
				{Name: "img_0003/assets/mug.obj", Payload: "v 0 0 0"},
				{Name: "img_0003/assets/textures/mug.png", Payload: string([]byte{0x89, 0x50, 0x4e, 0x47})},
			}))
		})

		It("keeps the listing order", func() {
			objects.Put("week_1/alice/img_0003/simulation/z.json", []byte("z"))
			objects.Put("week_1/alice/img_0003/simulation/a.json", []byte("a"))
			objects.Put("week_1/alice/img_0003/simulation/m.json", []byte("m"))

			buf := &bytes.Buffer{}
			_, err := srv.Export(context.TODO(), "img_0003", buf)
			Expect(err).To(BeNil())

			entries, err := readArchive(buf)
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].Name).To(Equal("img_0003/z.json"))
			Expect(entries[1].Name).To(Equal("img_0003/a.json"))
			Expect(entries[2].Name).To(Equal("img_0003/m.json"))
			Expect(objects.Fetches()).To(Equal([]string{
				"week_1/alice/img_0003/simulation/z.json",
				"week_1/alice/img_0003/simulation/a.json",
				"week_1/alice/img_0003/simulation/m.json",
			}))
		})

		It("stops at the first failing fetch and leaves the archive truncated", func() {
			for i := 1; i <= 5; i++ {
				objects.Put(fmt.Sprintf("week_1/alice/img_0003/simulation/part_%d.bin", i), []byte(fmt.Sprintf("payload %d", i)))
			}
			boom := errors.New("connection reset by peer")
			objects.FailOn("week_1/alice/img_0003/simulation/part_3.bin", boom)

			buf := &bytes.Buffer{}
			result, err := srv.Export(context.TODO(), "img_0003", buf)
			Expect(err).NotTo(BeNil())

			var upstream *service.ErrUpstream
			Expect(errors.As(err, &upstream)).To(BeTrue())
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(result.Entries).To(Equal(2))
			Expect(objects.Fetches()).To(HaveLen(3))

			entries, err := readArchive(buf)
			Expect(err).To(MatchError(io.ErrUnexpectedEOF))
			Expect(entries).To(Equal([]archiveEntry{
				{Name: "img_0003/part_1.bin", Payload: "payload 1"},
				{Name: "img_0003/part_2.bin", Payload: "payload 2"},
			}))
		})

		It("aborts when the consumer goes away", func() {
			objects.Put("week_1/alice/img_0003/simulation/a.json", []byte("a"))
			objects.Put("week_1/alice/img_0003/simulation/b.json", []byte("b"))

			gone := errors.New("broken pipe")
			_, err := srv.Export(context.TODO(), "img_0003", &failingWriter{err: gone})

			var aborted *service.ErrExportAborted
			Expect(errors.As(err, &aborted)).To(BeTrue())
			Expect(errors.Is(err, gone)).To(BeTrue())
			Expect(objects.Fetches()).To(HaveLen(1))
		})

		It("does not fetch anything once the context is cancelled", func() {
			objects.Put("week_1/alice/img_0003/simulation/a.json", []byte("a"))

			plan, err := srv.Prepare(context.TODO(), "img_0003")
			Expect(err).To(BeNil())

			ctx, cancel := context.WithCancel(context.TODO())
			cancel()

			_, err = plan.Stream(ctx, &bytes.Buffer{})
			var aborted *service.ErrExportAborted
			Expect(errors.As(err, &aborted)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(objects.Fetches()).To(BeEmpty())
		})
	})
})
