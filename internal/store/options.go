package store

import (
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByName
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ReconstructionQueryFilter BaseQuerier

func NewReconstructionQueryFilter() *ReconstructionQueryFilter {
	return &ReconstructionQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *ReconstructionQueryFilter) ByAuthor(author string) *ReconstructionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("author = ?", author)
	})
	return f
}

func (f *ReconstructionQueryFilter) ByWeek(week string) *ReconstructionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("week = ?", week)
	})
	return f
}

func (f *ReconstructionQueryFilter) ByStatus(status string) *ReconstructionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return f
}

func (f *ReconstructionQueryFilter) ByPose(pose string) *ReconstructionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("pose = ?", pose)
	})
	return f
}

func (f *ReconstructionQueryFilter) ByNames(names []string) *ReconstructionQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name IN ?", names)
	})
	return f
}

type ReconstructionQueryOptions BaseQuerier

func NewReconstructionQueryOptions() *ReconstructionQueryOptions {
	return &ReconstructionQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *ReconstructionQueryOptions) WithSortOrder(sort SortOrder) *ReconstructionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByName:
			return tx.Order("name")
		default:
			return tx
		}
	})
	return o
}

func (o *ReconstructionQueryOptions) WithLimit(limit int) *ReconstructionQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}
