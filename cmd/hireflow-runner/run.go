package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hireflowhq/hireflow/pkg/cmd"
	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/log"
	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/hireflowhq/hireflow/pkg/notification"
	"github.com/hireflowhq/hireflow/pkg/orchestrator"
	"github.com/hireflowhq/hireflow/pkg/persistence"
	"github.com/hireflowhq/hireflow/pkg/registry"
	"github.com/hireflowhq/hireflow/pkg/scheduling"
)

// buildOrchestrator assembles the workflow engine from the command's
// shared flags. The returned cleanup closes persistence and the bus.
func buildOrchestrator(ctx context.Context, command *cli.Command, logger *slog.Logger) (*orchestrator.Orchestrator, persistence.Persistence, func(), error) {
	reg := registry.NewBuiltinRegistry(logger)

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, nil, nil, err
	}

	bus := cmd.NewEventBus(command.String("event-bus"), logger)

	cleanup := func() {
		if err := bus.Close(); err != nil {
			logger.Error("Failed to close event bus", "error", err)
		}

		if err := store.Close(ctx); err != nil {
			logger.Error("Failed to close persistence", "error", err)
		}
	}

	evaluator, err := reg.CreateEvaluator(command.String("evaluator"), nil)
	if err != nil {
		cleanup()

		return nil, nil, nil, err
	}

	dispatcher, err := reg.CreateDispatcher(command.String("dispatcher"), nil)
	if err != nil {
		cleanup()

		return nil, nil, nil, err
	}

	aggregator := evaluation.NewAggregator(logger, evaluator, models.DefaultScoringConfig())
	engine := scheduling.NewEngine(logger, scheduling.NewMemoryReserver())
	notifier := notification.NewService(logger, dispatcher)

	orch := orchestrator.New(logger, store, aggregator, engine, notifier, bus, orchestrator.Config{
		HRContact: command.String("hr-contact"),
	})

	return orch, store, cleanup, nil
}

func runWorkflow(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("runner")

	orch, store, cleanup, err := buildOrchestrator(ctx, command, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	jobID := command.String("job-id")

	name := command.String("name")
	if name == "" {
		job, err := store.Jobs().GetByID(ctx, jobID)
		if err != nil {
			return fmt.Errorf("failed to load job: %w", err)
		}

		name = "Hiring run: " + job.Title
	}

	workflow, err := orch.Start(ctx, jobID, name)
	if err != nil {
		return err
	}

	return printWorkflow(workflow)
}

func resumeWorkflow(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("runner")

	orch, _, cleanup, err := buildOrchestrator(ctx, command, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(command.String("decisions-file"))
	if err != nil {
		return fmt.Errorf("failed to read decisions file: %w", err)
	}

	var decisions []models.DecisionRecord
	if err := json.Unmarshal(data, &decisions); err != nil {
		return fmt.Errorf("invalid decisions file: %w", err)
	}

	workflow, err := orch.Resume(ctx, command.String("workflow-id"), decisions, command.String("resumed-by"))
	if err != nil {
		return err
	}

	return printWorkflow(workflow)
}

func printWorkflow(workflow *models.Workflow) error {
	out, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
