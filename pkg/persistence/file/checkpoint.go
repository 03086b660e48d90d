package file

import (
	"encoding/json"
	"fmt"
	"time"
)

// checkpointDocument wraps the opaque orchestrator state with the metadata
// the reminder sweep needs without deserializing the state itself.
type checkpointDocument struct {
	WorkflowID string          `json:"workflow_id"`
	State      json.RawMessage `json:"state"`
	SavedAt    time.Time       `json:"saved_at"`
}

func (d *checkpointDocument) fill(workflowID string, state []byte) error {
	if !json.Valid(state) {
		return fmt.Errorf("checkpoint state for %s is not valid JSON", workflowID)
	}

	d.WorkflowID = workflowID
	d.State = json.RawMessage(state)
	d.SavedAt = time.Now().UTC()

	return nil
}
