package v1alpha1

// ReconstructionStatuses lists the status values in the order reviewers pick them.
var ReconstructionStatuses = []ReconstructionStatus{
	ReconstructionStatusNoRecon,
	ReconstructionStatusPending,
	ReconstructionStatusObject,
	ReconstructionStatusPose,
	ReconstructionStatusApproved,
}

var PoseStatuses = []PoseStatus{
	PoseStatusNoRecon,
	PoseStatusPending,
	PoseStatusWrong,
	PoseStatusAlmost,
	PoseStatusApproved,
}

func StringToReconstructionStatus(s string) ReconstructionStatus {
	switch s {
	case string(ReconstructionStatusObject):
		return ReconstructionStatusObject
	case string(ReconstructionStatusPose):
		return ReconstructionStatusPose
	case string(ReconstructionStatusApproved):
		return ReconstructionStatusApproved
	case string(ReconstructionStatusNoRecon):
		return ReconstructionStatusNoRecon
	default:
		return ReconstructionStatusPending
	}
}

func StringToPoseStatus(s string) PoseStatus {
	switch s {
	case string(PoseStatusWrong):
		return PoseStatusWrong
	case string(PoseStatusAlmost):
		return PoseStatusAlmost
	case string(PoseStatusApproved):
		return PoseStatusApproved
	case string(PoseStatusNoRecon):
		return PoseStatusNoRecon
	default:
		return PoseStatusPending
	}
}

func (s ReconstructionStatus) IsValid() bool {
	for _, v := range ReconstructionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (p PoseStatus) IsValid() bool {
	for _, v := range PoseStatuses {
		if p == v {
			return true
		}
	}
	return false
}
