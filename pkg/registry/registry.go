// Package registry wires pluggable agent backends (evaluators and
// notification dispatchers) behind string identifiers so binaries can
// select them from configuration.
package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hireflowhq/hireflow/pkg/evaluation"
	"github.com/hireflowhq/hireflow/pkg/notification"
)

// EvaluatorFactory builds an evaluation backend from configuration.
type EvaluatorFactory interface {
	ID() string
	Create(config map[string]any) (evaluation.Evaluator, error)
}

// DispatcherFactory builds a notification backend from configuration.
type DispatcherFactory interface {
	ID() string
	Create(config map[string]any) (notification.Dispatcher, error)
}

type Registry struct {
	logger              *slog.Logger
	evaluatorFactories  map[string]EvaluatorFactory
	dispatcherFactories map[string]DispatcherFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:              log,
		evaluatorFactories:  make(map[string]EvaluatorFactory),
		dispatcherFactories: make(map[string]DispatcherFactory),
	}
}

func (r *Registry) RegisterEvaluator(factory EvaluatorFactory) {
	r.evaluatorFactories[factory.ID()] = factory
}

func (r *Registry) RegisterDispatcher(factory DispatcherFactory) {
	r.dispatcherFactories[factory.ID()] = factory
}

func (r *Registry) CreateEvaluator(evaluatorType string, config map[string]any) (evaluation.Evaluator, error) {
	factory, ok := r.evaluatorFactories[evaluatorType]
	if !ok {
		return nil, fmt.Errorf("evaluator type '%s' not registered", evaluatorType)
	}

	return factory.Create(config)
}

func (r *Registry) CreateDispatcher(dispatcherType string, config map[string]any) (notification.Dispatcher, error) {
	factory, ok := r.dispatcherFactories[dispatcherType]
	if !ok {
		return nil, fmt.Errorf("dispatcher type '%s' not registered", dispatcherType)
	}

	return factory.Create(config)
}

// AvailableEvaluators lists the registered evaluator types in sorted order.
func (r *Registry) AvailableEvaluators() []string {
	types := make([]string, 0, len(r.evaluatorFactories))
	for evaluatorType := range r.evaluatorFactories {
		types = append(types, evaluatorType)
	}

	sort.Strings(types)

	return types
}

// AvailableDispatchers lists the registered dispatcher types in sorted order.
func (r *Registry) AvailableDispatchers() []string {
	types := make([]string, 0, len(r.dispatcherFactories))
	for dispatcherType := range r.dispatcherFactories {
		types = append(types, dispatcherType)
	}

	sort.Strings(types)

	return types
}
