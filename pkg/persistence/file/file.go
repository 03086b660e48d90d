// Package file provides file-based persistence for jobs, candidates,
// interviews and workflow runs. Each entity is stored as one JSON document
// under a per-kind directory; it is meant for development and tests.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hireflowhq/hireflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the
// file system.
type Persistence struct {
	root       string
	jobs       *JobRepository
	candidates *CandidateRepository
	interviews *InterviewRepository
	workflows  *WorkflowRepository
	checkpoint *CheckpointRepository
}

// NewPersistence creates a new instance of Persistence with the specified
// root directory. A "file://" prefix on root is stripped.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:       cleanRoot,
		jobs:       NewJobRepository(cleanRoot),
		candidates: NewCandidateRepository(cleanRoot),
		interviews: NewInterviewRepository(cleanRoot),
		workflows:  NewWorkflowRepository(cleanRoot),
		checkpoint: NewCheckpointRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there
// is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying
// the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Jobs() persistence.JobRepository {
	return fp.jobs
}

func (fp *Persistence) Candidates() persistence.CandidateRepository {
	return fp.candidates
}

func (fp *Persistence) Interviews() persistence.InterviewRepository {
	return fp.interviews
}

func (fp *Persistence) Workflows() persistence.WorkflowRepository {
	return fp.workflows
}

func (fp *Persistence) Checkpoints() persistence.CheckpointRepository {
	return fp.checkpoint
}

// readDocument loads and unmarshals one entity file. Missing files are
// reported as found=false with a nil error so repositories can map them to
// their own sentinel.
func readDocument(root, kind, id string, out any) (bool, error) {
	filePath := filepath.Clean(path.Join(root, kind, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s %s: %w", kind, id, err)
	}

	return true, nil
}

// writeDocument marshals and stores one entity file, creating the kind
// directory on first use.
func writeDocument(root, kind, id string, in any) error {
	dir := path.Join(root, kind)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}

// listIDs returns the entity IDs stored under one kind directory.
func listIDs(root, kind string) ([]string, error) {
	dir := path.Join(root, kind)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
	}

	ids := make([]string, 0, len(jsonFiles))
	for _, file := range jsonFiles {
		ids = append(ids, strings.TrimSuffix(file, ".json"))
	}

	return ids, nil
}

func removeDocument(root, kind, id string) error {
	err := os.Remove(path.Join(root, kind, id+".json"))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}

	return nil
}
