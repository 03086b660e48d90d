package registry

import (
	"log/slog"

	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/notification"
)

// HeuristicEvaluatorFactory builds the keyword-based evaluator shipped
// with the binaries.
type HeuristicEvaluatorFactory struct{}

func (f *HeuristicEvaluatorFactory) ID() string {
	return "heuristic"
}

func (f *HeuristicEvaluatorFactory) Create(_ map[string]any) (evaluation.Evaluator, error) {
	return evaluation.NewHeuristicEvaluator(), nil
}

// LogDispatcherFactory builds the dispatcher that logs notifications
// instead of delivering them.
type LogDispatcherFactory struct {
	Logger *slog.Logger
}

func (f *LogDispatcherFactory) ID() string {
	return "log"
}

func (f *LogDispatcherFactory) Create(_ map[string]any) (notification.Dispatcher, error) {
	return notification.NewLogDispatcher(f.Logger), nil
}

// NewBuiltinRegistry creates a registry preloaded with the backends every
// deployment has available.
func NewBuiltinRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.RegisterEvaluator(&HeuristicEvaluatorFactory{})
	r.RegisterDispatcher(&LogDispatcherFactory{Logger: logger})

	return r
}
