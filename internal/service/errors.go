package service

import (
	"errors"
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(name string, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %q not found", resourceType, name)}
}

func NewErrReconstructionNotFound(name string) *ErrResourceNotFound {
	return &ErrResourceNotFound{errors.New("The reconstruction " + quote(name) + " does not exist.")}
}

func NewErrNoSimulationFolder(name string) *ErrResourceNotFound {
	return &ErrResourceNotFound{errors.New("The reconstruction " + quote(name) + " has no simulation folder.")}
}

// quote wraps name in double quotes without escaping, reviewers see the name as stored.
func quote(name string) string {
	return "\"" + name + "\""
}

func NewErrSceneNotFound(name string) *ErrResourceNotFound {
	return NewErrResourceNotFound(name, "scene of reconstruction")
}

func NewErrPoseVideoNotFound(name, file string) *ErrResourceNotFound {
	return NewErrResourceNotFound(fmt.Sprintf("%s/%s", name, file), "pose video")
}

type ErrInvalidLabel struct {
	error
}

func NewErrInvalidStatus(status string) *ErrInvalidLabel {
	return &ErrInvalidLabel{fmt.Errorf("unknown status %q", status)}
}

func NewErrInvalidPose(pose string) *ErrInvalidLabel {
	return &ErrInvalidLabel{fmt.Errorf("unknown pose %q", pose)}
}

func NewErrMissingName() *ErrInvalidLabel {
	return &ErrInvalidLabel{fmt.Errorf("reconstruction name is required")}
}

// ErrUpstream wraps a failure of the metadata store or the object storage.
type ErrUpstream struct {
	error
}

func NewErrUpstream(op string, err error) *ErrUpstream {
	return &ErrUpstream{fmt.Errorf("failed to %s: %w", op, err)}
}

func (e *ErrUpstream) Unwrap() error {
	return errors.Unwrap(e.error)
}

// ErrExportAborted reports that the consumer of an export went away mid-stream.
type ErrExportAborted struct {
	error
}

func NewErrExportAborted(err error) *ErrExportAborted {
	return &ErrExportAborted{fmt.Errorf("export aborted: %w", err)}
}

func (e *ErrExportAborted) Unwrap() error {
	return errors.Unwrap(e.error)
}
