package server

import "errors"

var (
	// ErrRunnerRequired is returned when a pipeline runner is not provided.
	ErrRunnerRequired = errors.New("pipeline runner required")

	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")
)
