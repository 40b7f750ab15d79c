package v1alpha1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/openreal2sim/review-dashboard/internal/service"
	"go.uber.org/zap"
)

const contentTypeGzip = "application/gzip"

// (GET /export?video=<name>)
//
// Errors are plain text. Once the archive started streaming a failure can only cut the connection,
// the client sees a truncated response and never a complete archive.
func (s *ServiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	logger := zap.S().Named("export_handler")

	name := r.URL.Query().Get("video")
	if name == "" {
		writeText(w, http.StatusBadRequest, `Missing required query parameter "video".`)
		return
	}

	plan, err := s.exportSrv.Prepare(r.Context(), name)
	if err != nil {
		var notFound *service.ErrResourceNotFound
		if errors.As(err, &notFound) {
			writeText(w, http.StatusNotFound, err.Error())
			return
		}
		logger.Errorw("failed to prepare export", "reconstruction", name, "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypeGzip)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".tar.gz"))
	w.WriteHeader(http.StatusOK)

	result, err := plan.Stream(r.Context(), newFlushWriter(w))
	if err != nil {
		var aborted *service.ErrExportAborted
		if errors.As(err, &aborted) {
			logger.Debugw("client went away during export", "reconstruction", name, "entries", result.Entries)
			return
		}
		logger.Errorw("export truncated", "reconstruction", name, "entries", result.Entries, "total", len(plan.Objects), "error", err)
		// headers are sent, drop the connection so the download cannot end cleanly
		panic(http.ErrAbortHandler)
	}
}

// writeText writes msg as is. http.Error appends a newline.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

// flushWriter pushes every write to the client so entries are not held in the server buffer.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func newFlushWriter(w http.ResponseWriter) *flushWriter {
	return &flushWriter{w: w, rc: http.NewResponseController(w)}
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := f.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}
