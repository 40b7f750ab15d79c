package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"
	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
)

type ErrorReply struct {
	api.Error
	status int
}

func NewErrorReply(status int, message string) ErrorReply {
	return ErrorReply{Error: api.Error{Message: message}, status: status}
}

func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.status)
	return nil
}

type ReconstructionReply struct {
	api.Reconstruction
}

func (rr ReconstructionReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type ReconstructionListReply struct {
	Items api.ReconstructionList `json:"items"`
	Total int                    `json:"total"`
}

func (l ReconstructionListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type MetadataReply api.MetadataDocument

func (m MetadataReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type PoseVideoListReply struct {
	api.PoseVideoList
}

func (p PoseVideoListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

type StatsReply struct {
	api.Stats
}

func (s StatsReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
