package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"github.com/openreal2sim/review-dashboard/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultSceneCacheSize = 32
	// scenes warmed ahead of the one being reviewed
	prefetchDepth = 3
)

func ScenePath(rec model.Reconstruction) string {
	return fmt.Sprintf("%s/%s/%s/reconstruction/scene.glb", rec.Week, rec.Author, rec.Name)
}

func objectsFolder(rec model.Reconstruction) string {
	return fmt.Sprintf("%s/%s/%s/reconstruction/objects/", rec.Week, rec.Author, rec.Name)
}

// SceneService serves the review artifacts of a reconstruction: the GLB scene and the pose videos.
type SceneService struct {
	reconstructions *ReconstructionService
	objects         objectstore.ObjectStore
	// keyed by object key, scenes are never rewritten in place
	cache *lru.Cache[string, []byte]
}

func NewSceneService(reconstructions *ReconstructionService, objects objectstore.ObjectStore, cacheSize int) (*SceneService, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultSceneCacheSize
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &SceneService{reconstructions: reconstructions, objects: objects, cache: cache}, nil
}

// Scene returns the GLB bytes of the reconstruction.
func (s *SceneService) Scene(ctx context.Context, name string) ([]byte, error) {
	rec, err := s.reconstructions.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	key := ScenePath(*rec)
	if data, found := s.cache.Get(key); found {
		metrics.IncreaseSceneCacheMetric(true)
		return data, nil
	}
	metrics.IncreaseSceneCacheMetric(false)

	rc, err := s.objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, NewErrSceneNotFound(name)
		}
		return nil, NewErrUpstream("fetch the scene", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, NewErrUpstream("read the scene", err)
	}

	s.cache.Add(key, data)
	return data, nil
}

// Prefetch warms the cache with the scenes following selected in ordered. It returns how many are cached.
func (s *SceneService) Prefetch(ctx context.Context, ordered []string, selected string) int {
	idx := -1
	for i, name := range ordered {
		if name == selected {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}

	warmed := 0
	for _, name := range ordered[idx+1 : min(idx+1+prefetchDepth, len(ordered))] {
		if _, err := s.Scene(ctx, name); err != nil {
			zap.S().Named("scene_service").Debugw("failed to prefetch scene", "reconstruction", name, "error", err)
			continue
		}
		warmed++
	}
	return warmed
}

// PoseVideos lists the pose videos named by the objects index of the reconstruction.
func (s *SceneService) PoseVideos(ctx context.Context, name string) ([]string, error) {
	rec, err := s.reconstructions.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	rc, err := s.objects.Get(ctx, objectsFolder(*rec)+"index.json")
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, NewErrResourceNotFound(name, "objects index of reconstruction")
		}
		return nil, NewErrUpstream("fetch the objects index", err)
	}
	defer rc.Close()

	videos := []string{}
	if err := json.NewDecoder(rc).Decode(&videos); err != nil {
		return nil, NewErrUpstream("decode the objects index", err)
	}
	return videos, nil
}

// PoseVideo opens one of the videos listed by PoseVideos. Files missing from the index are not served.
func (s *SceneService) PoseVideo(ctx context.Context, name, file string) (io.ReadCloser, error) {
	videos, err := s.PoseVideos(ctx, name)
	if err != nil {
		return nil, err
	}

	listed := false
	for _, v := range videos {
		if v == file {
			listed = true
			break
		}
	}
	if !listed {
		return nil, NewErrPoseVideoNotFound(name, file)
	}

	rec, err := s.reconstructions.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	rc, err := s.objects.Get(ctx, objectsFolder(*rec)+file)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, NewErrPoseVideoNotFound(name, file)
		}
		return nil, NewErrUpstream("fetch the pose video", err)
	}
	return rc, nil
}
