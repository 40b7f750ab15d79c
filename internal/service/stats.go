package service

import (
	"context"
	"sort"
	"strings"

	"github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
)

type StatsService struct {
	store store.Store
}

func NewStatsService(store store.Store) *StatsService {
	return &StatsService{store: store}
}

// Compute returns the label distribution over the filtered records, overall and per author.
func (s *StatsService) Compute(ctx context.Context, filter *ReconstructionFilter) (v1alpha1.Stats, error) {
	storeFilter := store.NewReconstructionQueryFilter()
	if filter != nil && !isWildcard(filter.Week) {
		storeFilter = storeFilter.ByWeek(filter.Week)
	}

	recs, err := s.store.Reconstruction().List(ctx, storeFilter, nil)
	if err != nil {
		return v1alpha1.Stats{}, err
	}

	byAuthor := map[string]model.ReconstructionList{}
	for _, r := range recs {
		author := strings.ToLower(r.Author)
		if author == "" {
			continue
		}
		byAuthor[author] = append(byAuthor[author], r)
	}

	authors := make([]string, 0, len(byAuthor))
	for a := range byAuthor {
		authors = append(authors, a)
	}
	sort.Strings(authors)

	if filter != nil && !isWildcard(filter.Author) {
		authors = []string{strings.ToLower(filter.Author)}
	}

	stats := v1alpha1.Stats{
		All:     computeAuthorStats("", recs),
		Authors: make([]v1alpha1.AuthorStats, 0, len(authors)),
	}
	for _, a := range authors {
		stats.Authors = append(stats.Authors, computeAuthorStats(a, byAuthor[a]))
	}

	return stats, nil
}

func computeAuthorStats(author string, recs model.ReconstructionList) v1alpha1.AuthorStats {
	stats := v1alpha1.AuthorStats{
		Author: author,
		Total:  len(recs),
		Status: make(map[v1alpha1.ReconstructionStatus]v1alpha1.Count, len(v1alpha1.ReconstructionStatuses)),
		Pose:   make(map[v1alpha1.PoseStatus]v1alpha1.Count, len(v1alpha1.PoseStatuses)),
	}

	statusCounts := map[v1alpha1.ReconstructionStatus]int{}
	poseCounts := map[v1alpha1.PoseStatus]int{}
	statusTotal, poseTotal, approved := 0, 0, 0

	for _, r := range recs {
		status := v1alpha1.ReconstructionStatus(strings.ToLower(r.Status))
		if status.IsValid() {
			statusCounts[status]++
			statusTotal++
		}
		pose := v1alpha1.PoseStatus(strings.ToLower(r.Pose))
		if pose.IsValid() {
			poseCounts[pose]++
			poseTotal++
		}
		if status == v1alpha1.ReconstructionStatusApproved && pose == v1alpha1.PoseStatusApproved {
			approved++
		}
	}

	// label percentages are relative to the labelled records, the combined split to every record
	for _, st := range v1alpha1.ReconstructionStatuses {
		stats.Status[st] = newCount(statusCounts[st], statusTotal)
	}
	for _, p := range v1alpha1.PoseStatuses {
		stats.Pose[p] = newCount(poseCounts[p], poseTotal)
	}
	stats.Approved = newCount(approved, len(recs))
	stats.NotApproved = newCount(len(recs)-approved, len(recs))

	return stats
}

func newCount(count, total int) v1alpha1.Count {
	c := v1alpha1.Count{Count: count}
	if total > 0 {
		c.Percentage = float64(count) / float64(total) * 100
	}
	return c
}
