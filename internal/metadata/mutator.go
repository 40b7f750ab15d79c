package metadata

import (
	"context"
	"fmt"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"go.uber.org/zap"
)

// Remote is the shared metadata document.
type Remote interface {
	Fetch(ctx context.Context) (v1alpha1.MetadataDocument, error)
	Set(ctx context.Context, rec v1alpha1.Reconstruction) error
	SetMany(ctx context.Context, recs v1alpha1.ReconstructionList) error
	Remove(ctx context.Context, name string) error
}

// Mutator applies mutations to the cache first and then to the remote document.
// A failed remote write rolls the cache back. Nothing is retried.
type Mutator struct {
	cache  *Cache
	remote Remote
}

func NewMutator(cache *Cache, remote Remote) *Mutator {
	return &Mutator{cache: cache, remote: remote}
}

// Load fetches the document into the cache unless it is already there.
func (m *Mutator) Load(ctx context.Context) error {
	if m.cache.Loaded() {
		return nil
	}
	return m.Reload(ctx)
}

func (m *Mutator) Reload(ctx context.Context) error {
	doc, err := m.remote.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch the metadata: %w", err)
	}
	m.cache.Replace(doc)
	return nil
}

// Update replaces the record stored under rec.Name. The caller merges fields beforehand.
func (m *Mutator) Update(ctx context.Context, rec v1alpha1.Reconstruction) error {
	undo := m.cache.Set(rec)
	if err := m.remote.Set(ctx, rec); err != nil {
		undo()
		zap.S().Named("metadata").Debugw("update rolled back", "reconstruction", rec.Name, "error", err)
		return fmt.Errorf("failed to update %q: %w", rec.Name, err)
	}
	return nil
}

func (m *Mutator) UpdateMany(ctx context.Context, recs v1alpha1.ReconstructionList) error {
	undo := m.cache.SetMany(recs)
	if err := m.remote.SetMany(ctx, recs); err != nil {
		undo()
		zap.S().Named("metadata").Debugw("bulk update rolled back", "count", len(recs), "error", err)
		return fmt.Errorf("failed to update %d reconstructions: %w", len(recs), err)
	}
	return nil
}

// UpdateLabels merges update into the cached record and writes the result.
func (m *Mutator) UpdateLabels(ctx context.Context, name string, update v1alpha1.LabelUpdate) (v1alpha1.Reconstruction, error) {
	rec, found := m.cache.Get(name)
	if !found {
		return v1alpha1.Reconstruction{}, fmt.Errorf("reconstruction %q not found", name)
	}

	if update.Status != nil {
		rec.Status = *update.Status
		if *update.Status == v1alpha1.ReconstructionStatusNoRecon {
			rec.Pose = v1alpha1.PoseStatusNoRecon
		}
	}
	if update.Pose != nil {
		rec.Pose = *update.Pose
	}
	if update.Gripped != nil {
		rec.Gripped = *update.Gripped
	}

	return rec, m.Update(ctx, rec)
}

func (m *Mutator) Remove(ctx context.Context, name string) error {
	undo := m.cache.Delete(name)
	if err := m.remote.Remove(ctx, name); err != nil {
		undo()
		zap.S().Named("metadata").Debugw("remove rolled back", "reconstruction", name, "error", err)
		return fmt.Errorf("failed to remove %q: %w", name, err)
	}
	return nil
}
