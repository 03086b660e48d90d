// Package web provides HTTP handlers and REST API endpoints for the
// hiring pipeline.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/hireflowhq/hireflow/pkg/interviews"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/orchestrator"
	"github.com/hireflowhq/hireflow/pkg/persistence"
)

type APIHandlers struct {
	store        persistence.Persistence
	orchestrator *orchestrator.Orchestrator
	interviews   *interviews.Service
	validator    *validator.Validate
	logger       *slog.Logger
}

func NewAPIHandlers(
	logger *slog.Logger,
	store persistence.Persistence,
	orch *orchestrator.Orchestrator,
	interviewService *interviews.Service,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		store:        store,
		orchestrator: orch,
		interviews:   interviewService,
		validator:    validate,
		logger:       logger,
	}
}

func (h *APIHandlers) CreateJob(c fiber.Ctx) error {
	var req CreateJobRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	job := &models.Job{
		ID:                   uuid.New().String(),
		Title:                req.Title,
		Description:          req.Description,
		Department:           req.Department,
		Location:             req.Location,
		RequiredTechnologies: req.RequiredTechnologies,
		ExperienceRequired:   req.ExperienceRequired,
		Status:               models.JobStatusActive,
		PositionsAvailable:   req.PositionsAvailable,
	}

	if err := h.store.Jobs().Create(c.Context(), job); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(job)
}

func (h *APIHandlers) GetJobs(c fiber.Ctx) error {
	jobs, err := h.store.Jobs().List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"jobs": jobs, "total_count": len(jobs)})
}

func (h *APIHandlers) GetJob(c fiber.Ctx) error {
	job, err := h.store.Jobs().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(job)
}

func (h *APIHandlers) AddInterviewer(c fiber.Ctx) error {
	jobID := c.Params("id")

	if _, err := h.store.Jobs().GetByID(c.Context(), jobID); err != nil {
		return handleServiceError(c, err)
	}

	var req AddInterviewerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	interviewer := &models.Interviewer{
		ID:                  uuid.New().String(),
		JobID:               jobID,
		Name:                req.Name,
		Email:               req.Email,
		Role:                req.Role,
		Technologies:        req.Technologies,
		MaxInterviewsPerDay: req.MaxInterviewsPerDay,
		Timezone:            req.Timezone,
	}

	if err := h.store.Jobs().SaveInterviewer(c.Context(), interviewer); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(interviewer)
}

func (h *APIHandlers) GetInterviewers(c fiber.Ctx) error {
	panel, err := h.store.Jobs().Interviewers(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"interviewers": panel, "total_count": len(panel)})
}

func (h *APIHandlers) CreateCandidate(c fiber.Ctx) error {
	var req CreateCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := h.store.Jobs().GetByID(c.Context(), req.JobID); err != nil {
		return handleServiceError(c, err)
	}

	candidate := &models.Candidate{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		JobID:            req.JobID,
		ExperienceYears:  req.ExperienceYears,
		Technologies:     req.Technologies,
		ResumeText:       req.ResumeText,
		TimeAvailability: req.TimeAvailability,
		Stage:            models.StageResumeReceived,
	}

	if err := h.store.Candidates().Create(c.Context(), candidate); err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(candidate)
}

func (h *APIHandlers) GetCandidates(c fiber.Ctx) error {
	filter := persistence.CandidateFilter{
		JobID: c.Query("job_id"),
		Stage: models.CandidateStage(c.Query("stage")),
	}

	candidates, err := h.store.Candidates().List(c.Context(), filter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"candidates": candidates, "total_count": len(candidates)})
}

func (h *APIHandlers) GetCandidate(c fiber.Ctx) error {
	candidate, err := h.store.Candidates().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(candidate)
}

func (h *APIHandlers) GetCandidateInterviews(c fiber.Ctx) error {
	list, err := h.store.Interviews().ListByCandidate(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"interviews": list, "total_count": len(list)})
}

// StartWorkflow creates a run and executes it in the background; the
// caller polls the workflow resource for progress.
func (h *APIHandlers) StartWorkflow(c fiber.Ctx) error {
	var req StartWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if _, err := h.store.Jobs().GetByID(c.Context(), req.JobID); err != nil {
		return handleServiceError(c, err)
	}

	workflow, err := h.orchestrator.Create(c.Context(), req.JobID, req.Name)
	if err != nil {
		return internalError(c, err)
	}

	go func() {
		if err := h.orchestrator.Run(context.Background(), workflow); err != nil {
			h.logger.Error("Workflow run failed", "workflow_id", workflow.ID, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(workflow)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	filter := persistence.WorkflowFilter{
		Status: models.WorkflowStatus(c.Query("status")),
		JobID:  c.Query("job_id"),
	}

	workflows, err := h.store.Workflows().List(c.Context(), filter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows, "total_count": len(workflows)})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.store.Workflows().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

// SubmitDecisions applies reviewer verdicts to a suspended workflow and
// resumes it synchronously; the remaining steps are scheduling and
// notifications.
func (h *APIHandlers) SubmitDecisions(c fiber.Ctx) error {
	var req SubmitDecisionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	records := make([]models.DecisionRecord, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		records = append(records, models.DecisionRecord{
			CandidateID:   d.CandidateID,
			DecisionType:  d.DecisionType,
			Decision:      models.Decision(d.Decision),
			Comments:      d.Comments,
			ScheduledTime: d.ScheduledTime,
			DecidedAt:     time.Now().UTC(),
		})
	}

	workflow, err := h.orchestrator.Resume(c.Context(), c.Params("id"), records, req.ResumedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) GetInterview(c fiber.Ctx) error {
	interview, err := h.store.Interviews().GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) RescheduleInterview(c fiber.Ctx) error {
	var req RescheduleInterviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	interview, err := h.interviews.Reschedule(c.Context(), c.Params("id"), req.ScheduledTime)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) CancelInterview(c fiber.Ctx) error {
	var req CancelInterviewRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	interview, err := h.interviews.Cancel(c.Context(), c.Params("id"), req.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Hireflow API is healthy"
	httpStatus := http.StatusOK

	if err := h.store.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Hireflow API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
