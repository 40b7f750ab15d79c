package store

import (
	"context"
	"errors"

	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reconstruction is the metadata document: one row per reconstruction name.
//
// Writes are non-transactional field overwrites. Two reviewers writing the same name
// resolve by last write wins, nothing detects the conflict.
type Reconstruction interface {
	Get(ctx context.Context, name string) (*model.Reconstruction, error)
	List(ctx context.Context, filter *ReconstructionQueryFilter, opts *ReconstructionQueryOptions) (model.ReconstructionList, error)
	// Set replaces the whole record stored under rec.Name, creating it when missing.
	Set(ctx context.Context, rec model.Reconstruction) (*model.Reconstruction, error)
	SetMany(ctx context.Context, recs model.ReconstructionList) error
	// Delete removes the record. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error
	Count(ctx context.Context) (int64, error)
}

type ReconstructionStore struct {
	db *gorm.DB
}

func NewReconstructionStore(db *gorm.DB) Reconstruction {
	return &ReconstructionStore{db: db}
}

func (r *ReconstructionStore) Get(ctx context.Context, name string) (*model.Reconstruction, error) {
	rec := model.Reconstruction{}
	result := r.getDB(ctx).Where("name = ?", name).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &rec, nil
}

func (r *ReconstructionStore) List(ctx context.Context, filter *ReconstructionQueryFilter, opts *ReconstructionQueryOptions) (model.ReconstructionList, error) {
	var recs model.ReconstructionList
	tx := r.getDB(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&recs); result.Error != nil {
		return nil, result.Error
	}
	return recs, nil
}

func (r *ReconstructionStore) Set(ctx context.Context, rec model.Reconstruction) (*model.Reconstruction, error) {
	result := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&rec)
	if result.Error != nil {
		return nil, result.Error
	}
	return &rec, nil
}

func (r *ReconstructionStore) SetMany(ctx context.Context, recs model.ReconstructionList) error {
	if len(recs) == 0 {
		return nil
	}

	// the caller may own the transaction, only settle the one created here
	owned := FromContext(ctx) == nil
	ctx, err := newTransactionContext(ctx, r.db)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		if _, err := r.Set(ctx, rec); err != nil {
			if owned {
				_, _ = Rollback(ctx)
			}
			return err
		}
	}

	if owned {
		if _, err := Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *ReconstructionStore) Delete(ctx context.Context, name string) error {
	result := r.getDB(ctx).Where("name = ?", name).Delete(&model.Reconstruction{})
	return result.Error
}

func (r *ReconstructionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if result := r.getDB(ctx).Model(&model.Reconstruction{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (r *ReconstructionStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}
