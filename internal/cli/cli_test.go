package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	apiserver "github.com/openreal2sim/review-dashboard/internal/api_server"
	"github.com/openreal2sim/review-dashboard/internal/cli"
	"github.com/openreal2sim/review-dashboard/internal/config"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/openreal2sim/review-dashboard/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	insertReconstructionStm = "INSERT INTO reconstructions (name, week, author, prompt, status, pose, gripped, created_at, updated_at) VALUES ('%s', '%s', '%s', '', '%s', '%s', FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);"
)

var _ = Describe("reviewctl", Ordered, func() {
	var (
		s       store.Store
		gormdb  *gorm.DB
		objects *objectstore.MemoryStore
		server  *httptest.Server
		outDir  string
	)

	run := func(cmd *cobra.Command, args ...string) (string, error) {
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append(args, "--server-url", server.URL))
		err := cmd.ExecuteContext(context.TODO())
		return out.String(), err
	}

	BeforeAll(func() {
		cfg := config.NewSqlite(filepath.Join(GinkgoT().TempDir(), "cli.db"))
		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		gormdb = db

		s = store.NewStore(db)
		Expect(s.InitialMigration(context.TODO())).To(Succeed())

		objects = objectstore.NewMemoryStore()
		router, err := apiserver.New(cfg, s, objects, nil).Router(prometheus.NewRegistry())
		Expect(err).To(BeNil())
		server = httptest.NewServer(router)
	})

	AfterAll(func() {
		server.Close()
		s.Close()
	})

	BeforeEach(func() {
		outDir = GinkgoT().TempDir()
		for _, stm := range []string{
			fmt.Sprintf(insertReconstructionStm, "mug", "week_1", "alice", "approved", "approved"),
			fmt.Sprintf(insertReconstructionStm, "cup", "week_1", "bob", "pending", "pending"),
			fmt.Sprintf(insertReconstructionStm, "plate", "week_2", "alice", "object", "wrong"),
		} {
			Expect(gormdb.Exec(stm).Error).To(BeNil())
		}
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM reconstructions;")
	})

	Context("get", func() {
		It("prints a table sorted by name", func() {
			out, err := run(cli.NewCmdGet(), "reconstructions")
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring("NAME"))
			Expect(out).To(MatchRegexp(`(?s)cup.*mug.*plate`))
		})

		It("filters by author", func() {
			out, err := run(cli.NewCmdGet(), "reconstructions", "--author", "alice", "-o", "json")
			Expect(err).To(BeNil())

			var recs v1alpha1.ReconstructionList
			Expect(json.Unmarshal([]byte(out), &recs)).To(Succeed())
			Expect(recs).To(HaveLen(2))
		})

		It("prints a single reconstruction as yaml", func() {
			out, err := run(cli.NewCmdGet(), "reconstruction/mug", "-o", "yaml")
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring("name: mug"))
			Expect(out).To(ContainSubstring("author: alice"))
		})

		It("rejects an unknown kind", func() {
			_, err := run(cli.NewCmdGet(), "sources")
			Expect(err).NotTo(BeNil())
		})

		It("fails for a missing name", func() {
			_, err := run(cli.NewCmdGet(), "reconstruction", "missing")
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("does not exist"))
		})
	})

	Context("label", func() {
		It("sets the pose along with status no_recon", func() {
			_, err := run(cli.NewCmdLabel(), "cup", "--status", "no_recon")
			Expect(err).To(BeNil())

			rec, err := s.Reconstruction().Get(context.TODO(), "cup")
			Expect(err).To(BeNil())
			Expect(rec.Status).To(Equal("no_recon"))
			Expect(rec.Pose).To(Equal("no_recon"))
		})

		It("only touches the given labels", func() {
			_, err := run(cli.NewCmdLabel(), "plate", "--gripped")
			Expect(err).To(BeNil())

			rec, err := s.Reconstruction().Get(context.TODO(), "plate")
			Expect(err).To(BeNil())
			Expect(rec.Gripped).To(BeTrue())
			Expect(rec.Status).To(Equal("object"))
			Expect(rec.Pose).To(Equal("wrong"))
		})

		It("rejects an invalid status before calling the server", func() {
			_, err := run(cli.NewCmdLabel(), "cup", "--status", "delete")
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("invalid status"))
		})

		It("requires a label", func() {
			_, err := run(cli.NewCmdLabel(), "cup")
			Expect(err).NotTo(BeNil())
		})
	})

	Context("delete", func() {
		It("removes the record", func() {
			_, err := run(cli.NewCmdDelete(), "cup")
			Expect(err).To(BeNil())

			_, err = s.Reconstruction().Get(context.TODO(), "cup")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("stats", func() {
		It("prints the distribution as json", func() {
			out, err := run(cli.NewCmdStats(), "--week", "week_1", "-o", "json")
			Expect(err).To(BeNil())

			var stats v1alpha1.Stats
			Expect(json.Unmarshal([]byte(out), &stats)).To(Succeed())
			Expect(stats.All.Total).To(Equal(2))
			Expect(stats.All.Approved.Count).To(Equal(1))
			Expect(stats.Authors).To(HaveLen(2))
		})

		It("prints a table", func() {
			out, err := run(cli.NewCmdStats())
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring("(all)"))
			Expect(out).To(ContainSubstring("alice"))
		})
	})

	Context("export", func() {
		It("downloads and verifies the archive", func() {
			objects.
				Put("week_1/alice/mug/simulation/", nil).
				Put("week_1/alice/mug/simulation/scene.json", []byte(`{"objects":1}`)).
				Put("week_1/alice/mug/simulation/meshes/mug.glb", []byte("glb"))

			out, err := run(cli.NewCmdExport(), "mug", "-d", outDir, "--list")
			Expect(err).To(BeNil())
			Expect(out).To(ContainSubstring("mug/scene.json"))
			Expect(out).To(ContainSubstring("mug/meshes/mug.glb"))
			Expect(out).To(ContainSubstring("2 files"))

			_, err = os.Stat(filepath.Join(outDir, "mug.tar.gz"))
			Expect(err).To(BeNil())
			_, err = os.Stat(filepath.Join(outDir, "mug.tar.gz.part"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("removes a truncated download", func() {
			objects.
				Put("week_1/bob/cup/simulation/a.json", []byte("a")).
				Put("week_1/bob/cup/simulation/b.json", []byte("b")).
				FailOn("week_1/bob/cup/simulation/b.json", errors.New("connection reset"))

			_, err := run(cli.NewCmdExport(), "cup", "-d", outDir)
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("export of \"cup\" failed"))

			entries, err := os.ReadDir(outDir)
			Expect(err).To(BeNil())
			Expect(entries).To(BeEmpty())
		})

		It("reports a missing simulation folder", func() {
			_, err := run(cli.NewCmdExport(), "plate", "-d", outDir)
			Expect(err).NotTo(BeNil())
			Expect(err.Error()).To(ContainSubstring("no simulation folder"))

			entries, err := os.ReadDir(outDir)
			Expect(err).To(BeNil())
			Expect(entries).To(BeEmpty())
		})
	})

	Context("configure", func() {
		It("writes a config the other commands can read", func() {
			path := filepath.Join(GinkgoT().TempDir(), "client.yaml")

			cmd := cli.NewCmdConfigure()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs([]string{"--config", path, "--server-url", server.URL})
			Expect(cmd.ExecuteContext(context.TODO())).To(Succeed())

			get := cli.NewCmdGet()
			out.Reset()
			get.SetOut(&out)
			get.SetArgs([]string{"reconstructions", "--config", path})
			Expect(get.ExecuteContext(context.TODO())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("mug"))
		})
	})
})
