// Package main provides the Hireflow CLI for running and resuming hiring
// workflows without the API server.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/hireflowhq/hireflow/pkg/log"
)

func main() {
	sharedFlags := []cli.Flag{
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
			Usage:   "Email address receiving run summaries",
			Sources: cli.EnvVars("HR_CONTACT"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}

	command := &cli.Command{
		Name:                  "hireflow-runner",
		Usage:                 "Run and resume hiring workflows",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute a hiring workflow for a job",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "job-id",
						Usage:    "Job to run the hiring workflow for",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Workflow name (derived from the job when empty)",
					},
				}, sharedFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					log.Setup(cmd.String("log-level"))

					return runWorkflow(ctx, cmd)
				},
			},
			{
				Name:  "resume",
				Usage: "Submit reviewer decisions and resume a paused workflow",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "workflow-id",
						Usage:    "Suspended workflow to resume",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "decisions-file",
						Usage:    "JSON file with the reviewer decisions",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "resumed-by",
						Usage: "Reviewer identity recorded on the resumption",
						Value: "cli",
					},
				}, sharedFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					log.Setup(cmd.String("log-level"))

					return resumeWorkflow(ctx, cmd)
				},
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("runner").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
