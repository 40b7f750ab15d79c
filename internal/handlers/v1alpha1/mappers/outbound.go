package mappers

import (
	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
)

func ReconstructionToApi(r model.Reconstruction) api.Reconstruction {
	return api.Reconstruction{
		Name:    r.Name,
		Week:    r.Week,
		Author:  r.Author,
		Prompt:  r.Prompt,
		Status:  api.StringToReconstructionStatus(r.Status),
		Pose:    api.StringToPoseStatus(r.Pose),
		Gripped: r.Gripped,
	}
}

func ReconstructionListToApi(recs model.ReconstructionList) api.ReconstructionList {
	list := make(api.ReconstructionList, 0, len(recs))
	for _, r := range recs {
		list = append(list, ReconstructionToApi(r))
	}
	return list
}

func DocumentToApi(doc map[string]model.Reconstruction) api.MetadataDocument {
	apiDoc := make(api.MetadataDocument, len(doc))
	for name, r := range doc {
		apiDoc[name] = ReconstructionToApi(r)
	}
	return apiDoc
}
