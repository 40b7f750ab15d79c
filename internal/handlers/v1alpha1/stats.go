package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/openreal2sim/review-dashboard/internal/service"
)

// (GET /api/v1/stats)
func (s *ServiceHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.NewReconstructionFilter(
		service.WithWeek(query.Get("week")),
		service.WithAuthor(query.Get("author")),
	)

	stats, err := s.statsSrv.Compute(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, StatsReply{stats})
}
