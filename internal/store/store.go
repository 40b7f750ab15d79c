package store

import (
	"context"

	"github.com/openreal2sim/review-dashboard/internal/store/model"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Reconstruction() Reconstruction
	InitialMigration(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db             *gorm.DB
	reconstruction Reconstruction
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:             db,
		reconstruction: NewReconstructionStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Reconstruction() Reconstruction {
	return s.reconstruction
}

func (s *DataStore) InitialMigration(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&model.Reconstruction{})
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
