package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/hireflowhq/hireflow/pkg/interviews"
	"github.com/hireflowhq/hireflow/pkg/orchestrator"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, conflictType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(conflictType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError maps domain errors onto RFC-7807 responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsNotFound(err):
		return notFound(c, err.Error())

	case errors.Is(err, orchestrator.ErrWorkflowNotSuspended):
		return conflict(c, "workflow_not_suspended", err.Error())

	case errors.Is(err, orchestrator.ErrIncompleteDecisions),
		errors.Is(err, orchestrator.ErrInvalidDecision):
		return badRequest(c, err.Error())

	case errors.Is(err, interviews.ErrRescheduleLimit):
		return conflict(c, "reschedule_limit", err.Error())

	case errors.Is(err, interviews.ErrSlotConflict):
		return conflict(c, "slot_conflict", err.Error())

	case errors.Is(err, interviews.ErrNotReschedulable),
		errors.Is(err, interviews.ErrAlreadyCancelled):
		return conflict(c, "invalid_interview_state", err.Error())

	case persistence.IsSlotTaken(err):
		return conflict(c, "slot_conflict", err.Error())

	default:
		return internalError(c, err)
	}
}
