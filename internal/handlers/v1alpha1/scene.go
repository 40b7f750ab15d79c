package v1alpha1

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"go.uber.org/zap"
)

const (
	contentTypeGLB = "model/gltf-binary"
	contentTypeMP4 = "video/mp4"

	prefetchTimeout = 30 * time.Second
)

// (GET /api/v1/reconstructions/{name}/scene?next=<name>...)
//
// next carries the reconstructions listed after name in the reviewer's current order.
// Their scenes are fetched in the background so stepping through the list hits the cache.
func (s *ServiceHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, err := s.sceneSrv.Scene(r.Context(), name)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if next := r.URL.Query()["next"]; len(next) > 0 {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), prefetchTimeout)
		go func() {
			defer cancel()
			warmed := s.sceneSrv.Prefetch(ctx, append([]string{name}, next...), name)
			zap.S().Named("handler").Debugw("prefetched scenes", "reconstruction", name, "warmed", warmed)
		}()
	}

	w.Header().Set("Content-Type", contentTypeGLB)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// (GET /api/v1/reconstructions/{name}/poses)
func (s *ServiceHandler) ListPoseVideos(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	videos, err := s.sceneSrv.PoseVideos(r.Context(), name)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, PoseVideoListReply{api.PoseVideoList{Name: name, Videos: videos}})
}

// (GET /api/v1/reconstructions/{name}/poses/{file})
func (s *ServiceHandler) GetPoseVideo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file := chi.URLParam(r, "file")

	rc, err := s.sceneSrv.PoseVideo(r.Context(), name, file)
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeMP4)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		zap.S().Named("handler").Debugw("pose video stream interrupted", "reconstruction", name, "file", file, "error", err)
	}
}
