package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrJobNotFound indicates a job was not found by the given identifier.
	ErrJobNotFound = errors.New("job not found")

	// ErrCandidateNotFound indicates a candidate was not found by the given identifier.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrInterviewNotFound indicates an interview was not found by the given identifier.
	ErrInterviewNotFound = errors.New("interview not found")

	// ErrWorkflowNotFound indicates a workflow run was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrCheckpointNotFound indicates no suspended state exists for the given workflow.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrAlreadyExists indicates an entity with the same identifier already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSlotTaken indicates the interview slot was reserved by a concurrent
	// writer between selection and creation.
	ErrSlotTaken = errors.New("interview slot already taken")
)

// EntityError wraps repository errors with the operation and entity that
// failed.
type EntityError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Create")
	Entity string // Entity kind (e.g., "candidate", "interview")
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *EntityError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for entity errors.
func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEntityError creates a new entity error with context.
func NewEntityError(op, entity, id string, err error) *EntityError {
	return &EntityError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrCandidateNotFound) ||
		errors.Is(err, ErrInterviewNotFound) ||
		errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrCheckpointNotFound)
}

// IsSlotTaken checks if an error indicates a lost slot reservation race.
func IsSlotTaken(err error) bool {
	return errors.Is(err, ErrSlotTaken)
}
