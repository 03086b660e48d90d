package orchestrator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// State is the durable snapshot of a run taken at the human-decision
// gate. It carries everything the resumed process needs to finish the run
// without re-evaluating candidates.
type State struct {
	WorkflowID string `json:"workflow_id"`
	JobID      string `json:"job_id"`
	Name       string `json:"name"`

	// ResumeStep names the first pipeline step the resumed run executes.
	ResumeStep string `json:"resume_step"`

	// Batches holds candidate IDs in evaluation order.
	Batches [][]string `json:"batches"`

	Evaluations map[string]*models.Evaluation `json:"evaluations"`

	Approved []string `json:"approved,omitempty"`
	Rejected []string `json:"rejected,omitempty"`
	OnHold   []string `json:"on_hold,omitempty"`

	PendingDecisions []models.PendingDecision `json:"pending_decisions,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	SuspendedAt time.Time `json:"suspended_at,omitempty"`
}

func newState(workflow *models.Workflow) *State {
	return &State{
		WorkflowID:  workflow.ID,
		JobID:       workflow.JobID,
		Name:        workflow.Name,
		Evaluations: make(map[string]*models.Evaluation),
		StartedAt:   workflow.StartedAt,
	}
}

// candidateIDs flattens the batches in evaluation order.
func (s *State) candidateIDs() []string {
	ids := make([]string, 0)
	for _, batch := range s.Batches {
		ids = append(ids, batch...)
	}

	return ids
}

func (s *State) encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode orchestrator state: %w", err)
	}

	return data, nil
}

func decodeState(data []byte) (*State, error) {
	var state State

	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode orchestrator state: %w", err)
	}

	if state.Evaluations == nil {
		state.Evaluations = make(map[string]*models.Evaluation)
	}

	return &state, nil
}
