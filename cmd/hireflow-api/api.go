// Package main provides the Hireflow API server implementation.
package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"

	"github.com/hireflowhq/hireflow/pkg/eventbus"
	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/interviews"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/orchestrator"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/registry"
	"github.com/hireflowhq/hireflow/pkg/scheduling"
	"github.com/hireflowhq/hireflow/pkg/web"
)

const reservationTTL = 30 * time.Minute

type APIConfig struct {
	EvaluatorType  string
	DispatcherType string
	HRContact      string
	RedisURL       string
}

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	config      APIConfig
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	config APIConfig,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		registry:    reg,
		eventBus:    eventBus,
		config:      config,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Notifier builds the notification service from the configured dispatcher.
func (a *API) Notifier() (*notification.Service, error) {
	dispatcher, err := a.registry.CreateDispatcher(a.config.DispatcherType, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	return notification.NewService(a.logger, dispatcher), nil
}

// Orchestrator wires the workflow engine from the configured backends.
func (a *API) Orchestrator(notifier *notification.Service) (*orchestrator.Orchestrator, error) {
	evaluator, err := a.registry.CreateEvaluator(a.config.EvaluatorType, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	reserver, err := a.reserver()
	if err != nil {
		return nil, err
	}

	aggregator := evaluation.NewAggregator(a.logger, evaluator, models.DefaultScoringConfig())
	engine := scheduling.NewEngine(a.logger, reserver)

	return orchestrator.New(a.logger, a.persistence, aggregator, engine, notifier, a.eventBus, orchestrator.Config{
		HRContact: a.config.HRContact,
	}), nil
}

func (a *API) reserver() (scheduling.SlotReserver, error) {
	if a.config.RedisURL == "" {
		return scheduling.NewMemoryReserver(), nil
	}

	opts, err := redis.ParseURL(a.config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return scheduling.NewRedisReserver(redis.NewClient(opts), reservationTTL), nil
}

func (a *API) App() (*fiber.App, error) {
	notifier, err := a.Notifier()
	if err != nil {
		return nil, err
	}

	orch, err := a.Orchestrator(notifier)
	if err != nil {
		return nil, err
	}

	interviewService := interviews.NewService(a.logger, a.persistence, a.eventBus)

	handlers := web.NewAPIHandlers(a.logger, a.persistence, orch, interviewService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hireflow API")
	})

	j := app.Group("/jobs")
	j.Post("/", handlers.CreateJob)
	j.Get("/", handlers.GetJobs)
	j.Get("/:id", handlers.GetJob)
	j.Post("/:id/interviewers", handlers.AddInterviewer)
	j.Get("/:id/interviewers", handlers.GetInterviewers)

	ca := app.Group("/candidates")
	ca.Post("/", handlers.CreateCandidate)
	ca.Get("/", handlers.GetCandidates)
	ca.Get("/:id", handlers.GetCandidate)
	ca.Get("/:id/interviews", handlers.GetCandidateInterviews)

	w := app.Group("/workflows")
	w.Post("/", handlers.StartWorkflow)
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)
	w.Post("/:id/decisions", handlers.SubmitDecisions)

	iv := app.Group("/interviews")
	iv.Get("/:id", handlers.GetInterview)
	iv.Post("/:id/reschedule", handlers.RescheduleInterview)
	iv.Post("/:id/cancel", handlers.CancelInterview)

	app.Get("/health", handlers.HealthCheck)

	return app, nil
}

func (a *API) Start(port int) error {
	app, err := a.App()
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(port))
}
