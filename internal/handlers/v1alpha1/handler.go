package v1alpha1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/openreal2sim/review-dashboard/internal/handlers/validator"
	"github.com/openreal2sim/review-dashboard/internal/service"
	"go.uber.org/zap"
)

type ServiceHandler struct {
	reconstructionSrv *service.ReconstructionService
	exportSrv         *service.ExportService
	sceneSrv          *service.SceneService
	statsSrv          *service.StatsService
	validator         *validator.Validator
}

func NewServiceHandler(reconstructionSrv *service.ReconstructionService, exportSrv *service.ExportService, sceneSrv *service.SceneService, statsSrv *service.StatsService) *ServiceHandler {
	return &ServiceHandler{
		reconstructionSrv: reconstructionSrv,
		exportSrv:         exportSrv,
		sceneSrv:          sceneSrv,
		statsSrv:          statsSrv,
		validator:         validator.NewReconstructionValidator(),
	}
}

func (s *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", s.Health)
	router.Get("/export", s.Export)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/metadata", s.GetMetadata)
		r.Get("/stats", s.GetStats)

		r.Route("/reconstructions", func(r chi.Router) {
			r.Get("/", s.ListReconstructions)
			r.Patch("/", s.UpdateReconstructions)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.GetReconstruction)
				r.Put("/", s.ReplaceReconstruction)
				r.Patch("/", s.UpdateLabels)
				r.Delete("/", s.DeleteReconstruction)
				r.Get("/scene", s.GetScene)
				r.Get("/poses", s.ListPoseVideos)
				r.Get("/poses/{file}", s.GetPoseVideo)
			})
		})
	})
}

// (GET /health)
func (s *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// renderError maps a service error to its status and renders it as json.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound     *service.ErrResourceNotFound
		invalidLabel *service.ErrInvalidLabel
		invalidField *validator.ErrInvalidField
	)

	switch {
	case errors.As(err, &notFound):
		_ = render.Render(w, r, NewErrorReply(http.StatusNotFound, err.Error()))
	case errors.As(err, &invalidLabel), errors.As(err, &invalidField):
		_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, err.Error()))
	default:
		zap.S().Named("handler").Errorw("request failed", "path", r.URL.Path, "error", err)
		_ = render.Render(w, r, NewErrorReply(http.StatusInternalServerError, err.Error()))
	}
}
