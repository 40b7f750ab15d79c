package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openreal2sim/review-dashboard/internal/archive"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"github.com/openreal2sim/review-dashboard/pkg/metrics"
	"go.uber.org/zap"
)

// SimulationPrefix is the object storage folder holding the exportable files of rec.
func SimulationPrefix(rec model.Reconstruction) string {
	return fmt.Sprintf("%s/%s/%s/simulation/", rec.Week, rec.Author, rec.Name)
}

type ExportResult struct {
	Entries int
	Bytes   int64
}

type ExportService struct {
	store   store.Store
	objects objectstore.ObjectStore
}

func NewExportService(store store.Store, objects objectstore.ObjectStore) *ExportService {
	return &ExportService{store: store, objects: objects}
}

// ExportPlan is the resolved content of one export. Nothing has been written yet.
type ExportPlan struct {
	Name    string
	Prefix  string
	Objects []objectstore.ObjectInfo

	objects objectstore.ObjectStore
}

// Prepare resolves the reconstruction and lists its simulation folder.
// Every error a caller can still report cleanly happens here.
func (e *ExportService) Prepare(ctx context.Context, name string) (*ExportPlan, error) {
	logger := zap.S().Named("export_service").With("reconstruction", name)

	rec, err := e.store.Reconstruction().Get(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			metrics.IncreaseExportsTotalMetric(metrics.ExportNotFound)
			return nil, NewErrReconstructionNotFound(name)
		}
		metrics.IncreaseExportsTotalMetric(metrics.ExportFailed)
		return nil, NewErrUpstream("read the metadata", err)
	}

	if rec.Week == "" || rec.Author == "" {
		// the prefix matches nothing and the export ends up as a missing simulation folder
		logger.Warnw("reconstruction has no week or author", "week", rec.Week, "author", rec.Author)
	}

	prefix := SimulationPrefix(*rec)
	listed, err := e.objects.List(ctx, prefix)
	if err != nil {
		metrics.IncreaseExportsTotalMetric(metrics.ExportFailed)
		return nil, NewErrUpstream("list the simulation folder", err)
	}

	objects := make([]objectstore.ObjectInfo, 0, len(listed))
	for _, obj := range listed {
		if obj.IsDirMarker() {
			continue
		}
		objects = append(objects, obj)
	}

	if len(objects) == 0 {
		metrics.IncreaseExportsTotalMetric(metrics.ExportNotFound)
		return nil, NewErrNoSimulationFolder(name)
	}

	logger.Debugw("export prepared", "prefix", prefix, "objects", len(objects), "skipped", len(listed)-len(objects))

	return &ExportPlan{
		Name:    name,
		Prefix:  prefix,
		Objects: objects,
		objects: e.objects,
	}, nil
}

// EntryName is the path of obj inside the archive.
func (p *ExportPlan) EntryName(obj objectstore.ObjectInfo) string {
	return p.Name + "/" + strings.TrimPrefix(obj.Key, p.Prefix)
}

// Stream writes the archive to dst, one object at a time in listing order.
//
// On failure the archive is left without its trailer and no further object is fetched.
// A failing dst or a cancelled ctx yields ErrExportAborted, a failing fetch ErrUpstream.
func (p *ExportPlan) Stream(ctx context.Context, dst io.Writer) (ExportResult, error) {
	logger := zap.S().Named("export_service").With("reconstruction", p.Name)

	sink := &sinkWriter{w: dst}
	writer := archive.NewTarGzWriter(sink)

	result, err := p.stream(ctx, writer, sink)
	if err != nil {
		if sink.err != nil || ctx.Err() != nil {
			metrics.IncreaseExportsTotalMetric(metrics.ExportAborted)
		} else {
			metrics.IncreaseExportsTotalMetric(metrics.ExportFailed)
		}
		logger.Debugw("export stopped", "entries", result.Entries, "bytes", result.Bytes, "error", err)
		return result, err
	}

	metrics.IncreaseExportsTotalMetric(metrics.ExportSuccess)
	metrics.AddExportedEntries(result.Entries, result.Bytes)
	logger.Infow("export done", "entries", result.Entries, "bytes", result.Bytes)

	return result, nil
}

func (p *ExportPlan) stream(ctx context.Context, writer *archive.TarGzWriter, sink *sinkWriter) (ExportResult, error) {
	result := func() ExportResult {
		return ExportResult{Entries: writer.Entries(), Bytes: writer.Written()}
	}

	for _, obj := range p.Objects {
		if err := ctx.Err(); err != nil {
			return result(), NewErrExportAborted(err)
		}

		// fetch first: a failed fetch must not leave a dangling entry header
		rc, err := p.objects.Get(ctx, obj.Key)
		if err != nil {
			if ctx.Err() != nil {
				return result(), NewErrExportAborted(ctx.Err())
			}
			return result(), NewErrUpstream(fmt.Sprintf("fetch %q", obj.Key), err)
		}

		err = writer.Add(p.EntryName(obj), obj.Size, rc)
		rc.Close()
		if err != nil {
			if sink.err != nil {
				return result(), NewErrExportAborted(sink.err)
			}
			return result(), NewErrUpstream(fmt.Sprintf("read %q", obj.Key), err)
		}
	}

	if err := writer.Close(); err != nil {
		if sink.err != nil {
			return result(), NewErrExportAborted(sink.err)
		}
		return result(), err
	}

	return result(), nil
}

// Export streams the simulation folder of name into dst.
func (e *ExportService) Export(ctx context.Context, name string, dst io.Writer) (ExportResult, error) {
	plan, err := e.Prepare(ctx, name)
	if err != nil {
		return ExportResult{}, err
	}
	return plan.Stream(ctx, dst)
}

// sinkWriter remembers the first write error so a gone consumer can be told apart from a failing source.
type sinkWriter struct {
	w   io.Writer
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}
