package service

import (
	"context"
	"errors"
	"strings"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"github.com/openreal2sim/review-dashboard/pkg/metrics"
	"go.uber.org/zap"
)

const filterAll = "all"

type ReconstructionService struct {
	store store.Store
}

func NewReconstructionService(store store.Store) *ReconstructionService {
	return &ReconstructionService{store: store}
}

// Document returns the whole metadata document keyed by reconstruction name.
func (r *ReconstructionService) Document(ctx context.Context) (map[string]model.Reconstruction, error) {
	recs, err := r.store.Reconstruction().List(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	return recs.Document(), nil
}

func (r *ReconstructionService) List(ctx context.Context, filter *ReconstructionFilter) (model.ReconstructionList, error) {
	storeFilter := store.NewReconstructionQueryFilter()
	if filter != nil {
		if !isWildcard(filter.Author) {
			storeFilter = storeFilter.ByAuthor(filter.Author)
		}
		if !isWildcard(filter.Week) {
			storeFilter = storeFilter.ByWeek(filter.Week)
		}
		if !isWildcard(filter.Status) {
			storeFilter = storeFilter.ByStatus(filter.Status)
		}
		if !isWildcard(filter.Pose) {
			storeFilter = storeFilter.ByPose(filter.Pose)
		}
	}

	return r.store.Reconstruction().List(ctx, storeFilter, store.NewReconstructionQueryOptions().WithSortOrder(store.SortByName))
}

func (r *ReconstructionService) Get(ctx context.Context, name string) (*model.Reconstruction, error) {
	rec, err := r.store.Reconstruction().Get(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrReconstructionNotFound(name)
		}
		return nil, err
	}
	return rec, nil
}

// Set replaces the record stored under rec.Name. Fields absent from rec are cleared,
// callers wanting a partial change merge first or use UpdateLabels.
func (r *ReconstructionService) Set(ctx context.Context, rec model.Reconstruction) (*model.Reconstruction, error) {
	if err := normalize(&rec); err != nil {
		return nil, err
	}
	return r.store.Reconstruction().Set(ctx, rec)
}

func (r *ReconstructionService) SetMany(ctx context.Context, recs model.ReconstructionList) error {
	for i := range recs {
		if err := normalize(&recs[i]); err != nil {
			return err
		}
	}
	return r.store.Reconstruction().SetMany(ctx, recs)
}

// Delete removes the record. Removing an unknown name is a no-op.
func (r *ReconstructionService) Delete(ctx context.Context, name string) error {
	return r.store.Reconstruction().Delete(ctx, name)
}

// UpdateLabels merges the given labels into the stored record and writes it back.
// Concurrent updates of the same record are last write wins.
func (r *ReconstructionService) UpdateLabels(ctx context.Context, name string, update v1alpha1.LabelUpdate) (*model.Reconstruction, error) {
	rec, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if update.Status != nil {
		rec.Status = string(*update.Status)
		metrics.IncreaseLabelUpdatesMetric("status")
		// nothing was reconstructed, so there is no pose to judge either
		if *update.Status == v1alpha1.ReconstructionStatusNoRecon {
			rec.Pose = string(v1alpha1.PoseStatusNoRecon)
		}
	}
	if update.Pose != nil {
		rec.Pose = string(*update.Pose)
		metrics.IncreaseLabelUpdatesMetric("pose")
	}
	if update.Gripped != nil {
		rec.Gripped = *update.Gripped
		metrics.IncreaseLabelUpdatesMetric("gripped")
	}

	zap.S().Named("reconstruction_service").Debugw("labels updated", "reconstruction", name, "status", rec.Status, "pose", rec.Pose, "gripped", rec.Gripped)

	return r.Set(ctx, *rec)
}

func normalize(rec *model.Reconstruction) error {
	if rec.Name == "" {
		return NewErrMissingName()
	}
	if rec.Status == "" {
		rec.Status = string(v1alpha1.ReconstructionStatusPending)
	}
	if rec.Pose == "" {
		rec.Pose = string(v1alpha1.PoseStatusPending)
	}
	if !v1alpha1.ReconstructionStatus(rec.Status).IsValid() {
		return NewErrInvalidStatus(rec.Status)
	}
	if !v1alpha1.PoseStatus(rec.Pose).IsValid() {
		return NewErrInvalidPose(rec.Pose)
	}
	return nil
}

func isWildcard(v string) bool {
	return v == "" || strings.EqualFold(v, filterAll)
}

type ReconstructionFilterFunc func(f *ReconstructionFilter)

// ReconstructionFilter narrows a listing. Empty or "all" values match everything.
type ReconstructionFilter struct {
	Author string
	Week   string
	Status string
	Pose   string
}

func NewReconstructionFilter(filters ...ReconstructionFilterFunc) *ReconstructionFilter {
	f := &ReconstructionFilter{}
	for _, fn := range filters {
		fn(f)
	}
	return f
}

func (f *ReconstructionFilter) WithOption(o ReconstructionFilterFunc) *ReconstructionFilter {
	o(f)
	return f
}

func WithAuthor(author string) ReconstructionFilterFunc {
	return func(f *ReconstructionFilter) {
		f.Author = author
	}
}

func WithWeek(week string) ReconstructionFilterFunc {
	return func(f *ReconstructionFilter) {
		f.Week = week
	}
}

func WithStatus(status string) ReconstructionFilterFunc {
	return func(f *ReconstructionFilter) {
		f.Status = status
	}
}

func WithPose(pose string) ReconstructionFilterFunc {
	return func(f *ReconstructionFilter) {
		f.Pose = pose
	}
}
