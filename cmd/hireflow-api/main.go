package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hireflowhq/hireflow/pkg/cmd"
	"github.com/hireflowhq/hireflow/pkg/log"
	"github.com/hireflowhq/hireflow/pkg/otelhelper"
	"github.com/hireflowhq/hireflow/pkg/registry"
	"github.com/hireflowhq/hireflow/pkg/reminder"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "hireflow-api",
		Usage:                 "Manage jobs, candidates and hiring workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "evaluator",
				Usage:   "Evaluator backend for candidate scoring",
				Value:   "heuristic",
				Sources: cli.EnvVars("EVALUATOR"),
			},
			&cli.StringFlag{
				Name:    "dispatcher",
				Usage:   "Notification dispatcher backend",
				Value:   "log",
				Sources: cli.EnvVars("DISPATCHER"),
			},
			&cli.StringFlag{
				Name:    "hr-contact",
				Usage:   "Email address receiving run summaries and reminders",
				Sources: cli.EnvVars("HR_CONTACT"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for distributed slot reservations (in-memory when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "reminder-schedule",
				Usage:   "Cron schedule for the pending-decision reminder sweep",
				Value:   reminder.DefaultSchedule,
				Sources: cli.EnvVars("REMINDER_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OTLP trace export",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Hireflow API")

			if command.Bool("tracing") {
				if _, err := otelhelper.NewTracer(ctx, "hireflow-api"); err != nil {
					return err
				}
			}

			reg := registry.NewBuiltinRegistry(logger)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, reg, eventBus, APIConfig{
				EvaluatorType:  command.String("evaluator"),
				DispatcherType: command.String("dispatcher"),
				HRContact:      command.String("hr-contact"),
				RedisURL:       command.String("redis-url"),
			})

			if contact := command.String("hr-contact"); contact != "" {
				notifier, err := api.Notifier()
				if err != nil {
					return err
				}

				sweep := reminder.NewService(logger, persistence, notifier, contact, 0)
				if err := sweep.Start(command.String("reminder-schedule")); err != nil {
					return err
				}

				defer sweep.Stop()
			}

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
