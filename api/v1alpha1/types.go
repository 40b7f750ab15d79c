package v1alpha1

// ReconstructionStatus is the reviewer verdict on the reconstructed objects.
type ReconstructionStatus string

const (
	ReconstructionStatusPending  ReconstructionStatus = "pending"
	ReconstructionStatusObject   ReconstructionStatus = "object"
	ReconstructionStatusPose     ReconstructionStatus = "pose"
	ReconstructionStatusApproved ReconstructionStatus = "approved"
	ReconstructionStatusNoRecon  ReconstructionStatus = "no_recon"
)

// PoseStatus is the reviewer verdict on the estimated object poses.
type PoseStatus string

const (
	PoseStatusPending  PoseStatus = "pending"
	PoseStatusWrong    PoseStatus = "wrong"
	PoseStatusAlmost   PoseStatus = "almost"
	PoseStatusApproved PoseStatus = "approved"
	PoseStatusNoRecon  PoseStatus = "no_recon"
)

// Reconstruction is one entry of the metadata document.
type Reconstruction struct {
	Name    string               `json:"name" validate:"required,max=255,path_segment"`
	Week    string               `json:"week,omitempty" validate:"omitempty,path_segment"`
	Author  string               `json:"author,omitempty" validate:"omitempty,path_segment"`
	Prompt  string               `json:"prompt,omitempty"`
	Status  ReconstructionStatus `json:"status" validate:"omitempty,reconstruction_status"`
	Pose    PoseStatus           `json:"pose" validate:"omitempty,pose_status"`
	Gripped bool                 `json:"gripped"`
}

type ReconstructionList []Reconstruction

// MetadataDocument maps a reconstruction name to its record.
type MetadataDocument map[string]Reconstruction

// LabelUpdate carries the labels a reviewer changes. Nil fields are left untouched.
type LabelUpdate struct {
	Status  *ReconstructionStatus `json:"status,omitempty" validate:"omitnil,reconstruction_status"`
	Pose    *PoseStatus           `json:"pose,omitempty" validate:"omitnil,pose_status"`
	Gripped *bool                 `json:"gripped,omitempty"`
}

type PoseVideoList struct {
	Name   string   `json:"name"`
	Videos []string `json:"videos"`
}

type Count struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AuthorStats holds the label distribution for one author, or for everyone when Author is empty.
type AuthorStats struct {
	Author      string                         `json:"author,omitempty"`
	Total       int                            `json:"total"`
	Status      map[ReconstructionStatus]Count `json:"status"`
	Pose        map[PoseStatus]Count           `json:"pose"`
	Approved    Count                          `json:"approved"`
	NotApproved Count                          `json:"notApproved"`
}

type Stats struct {
	All     AuthorStats   `json:"all"`
	Authors []AuthorStats `json:"authors"`
}

type Error struct {
	Message string `json:"message"`
}
