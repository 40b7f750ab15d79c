package mappers

import (
	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/store/model"
)

func ReconstructionFromApi(r api.Reconstruction) model.Reconstruction {
	return model.Reconstruction{
		Name:    r.Name,
		Week:    r.Week,
		Author:  r.Author,
		Prompt:  r.Prompt,
		Status:  string(r.Status),
		Pose:    string(r.Pose),
		Gripped: r.Gripped,
	}
}

func ReconstructionListFromApi(recs api.ReconstructionList) model.ReconstructionList {
	list := make(model.ReconstructionList, 0, len(recs))
	for _, r := range recs {
		list = append(list, ReconstructionFromApi(r))
	}
	return list
}
