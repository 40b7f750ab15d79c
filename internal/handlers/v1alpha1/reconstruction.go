package v1alpha1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/handlers/v1alpha1/mappers"
	"github.com/openreal2sim/review-dashboard/internal/service"
)

// (GET /api/v1/metadata)
func (s *ServiceHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	doc, err := s.reconstructionSrv.Document(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, MetadataReply(mappers.DocumentToApi(doc)))
}

// (GET /api/v1/reconstructions)
func (s *ServiceHandler) ListReconstructions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := service.NewReconstructionFilter(
		service.WithAuthor(query.Get("author")),
		service.WithWeek(query.Get("week")),
		service.WithStatus(query.Get("status")),
		service.WithPose(query.Get("pose")),
	)

	recs, err := s.reconstructionSrv.List(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, ReconstructionListReply{Items: mappers.ReconstructionListToApi(recs), Total: len(recs)})
}

// (PATCH /api/v1/reconstructions)
func (s *ServiceHandler) UpdateReconstructions(w http.ResponseWriter, r *http.Request) {
	var body api.ReconstructionList
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err)))
		return
	}

	for _, rec := range body {
		if err := s.validator.Struct(rec); err != nil {
			_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, fmt.Sprintf("reconstruction %q: %s", rec.Name, err)))
			return
		}
	}

	if err := s.reconstructionSrv.SetMany(r.Context(), mappers.ReconstructionListFromApi(body)); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// (GET /api/v1/reconstructions/{name})
func (s *ServiceHandler) GetReconstruction(w http.ResponseWriter, r *http.Request) {
	rec, err := s.reconstructionSrv.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, ReconstructionReply{mappers.ReconstructionToApi(*rec)})
}

// (PUT /api/v1/reconstructions/{name})
func (s *ServiceHandler) ReplaceReconstruction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body api.Reconstruction
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err)))
		return
	}

	if body.Name == "" {
		body.Name = name
	}
	if body.Name != name {
		_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, fmt.Sprintf("body name %q does not match %q", body.Name, name)))
		return
	}

	if err := s.validator.Struct(body); err != nil {
		renderError(w, r, err)
		return
	}

	rec, err := s.reconstructionSrv.Set(r.Context(), mappers.ReconstructionFromApi(body))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, ReconstructionReply{mappers.ReconstructionToApi(*rec)})
}

// (PATCH /api/v1/reconstructions/{name})
func (s *ServiceHandler) UpdateLabels(w http.ResponseWriter, r *http.Request) {
	var body api.LabelUpdate
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		_ = render.Render(w, r, NewErrorReply(http.StatusBadRequest, fmt.Sprintf("invalid body: %s", err)))
		return
	}

	if err := s.validator.Struct(body); err != nil {
		renderError(w, r, err)
		return
	}

	rec, err := s.reconstructionSrv.UpdateLabels(r.Context(), chi.URLParam(r, "name"), body)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, ReconstructionReply{mappers.ReconstructionToApi(*rec)})
}

// (DELETE /api/v1/reconstructions/{name})
func (s *ServiceHandler) DeleteReconstruction(w http.ResponseWriter, r *http.Request) {
	if err := s.reconstructionSrv.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
