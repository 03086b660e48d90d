// Package evaluation scores candidates against a job across five
// independent dimensions and collapses the results into a recommendation.
package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// ErrMalformedResponse indicates the assessment backend returned a payload
// that is not the expected result shape. It is distinct from transport
// errors so callers can tell a bad answer from no answer.
var ErrMalformedResponse = errors.New("malformed assessment response")

// Evaluator produces one dimension assessment for a candidate.
type Evaluator interface {
	Evaluate(ctx context.Context, dimension models.Dimension, jobDescription, resumeText string) (*models.DimensionResult, error)
}

// CompletionFunc is the transport to an assessment backend: it takes a
// prompt and returns the raw response payload.
type CompletionFunc func(ctx context.Context, prompt string) ([]byte, error)

// dimensionResultSchema is the shape every backend response must satisfy
// before it is trusted as a DimensionResult.
const dimensionResultSchema = `{
	"type": "object",
	"required": ["scores", "overall_score", "feedback"],
	"properties": {
		"scores": {
			"type": "object",
			"minProperties": 1,
			"additionalProperties": {"type": "number", "minimum": 0, "maximum": 10}
		},
		"overall_score": {"type": "number", "minimum": 0, "maximum": 10},
		"feedback": {"type": "string"},
		"key_points": {"type": "array", "items": {"type": "string"}},
		"strengths": {"type": "array", "items": {"type": "string"}},
		"weaknesses": {"type": "array", "items": {"type": "string"}}
	}
}`

var compiledResultSchema = gojsonschema.NewStringLoader(dimensionResultSchema)

// ParseDimensionResult validates a raw backend payload against the result
// schema and decodes it. Schema violations and bad JSON both come back as
// ErrMalformedResponse.
func ParseDimensionResult(dimension models.Dimension, payload []byte) (*models.DimensionResult, error) {
	validation, err := gojsonschema.Validate(compiledResultSchema, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(details, "; "))
	}

	var result models.DimensionResult

	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result.Dimension = dimension

	return &result, nil
}

// PromptEvaluator assesses one dimension by sending a structured prompt to
// a completion backend and schema-validating the reply.
type PromptEvaluator struct {
	complete CompletionFunc
}

// NewPromptEvaluator creates an evaluator backed by the given completion
// transport.
func NewPromptEvaluator(complete CompletionFunc) *PromptEvaluator {
	return &PromptEvaluator{complete: complete}
}

func (e *PromptEvaluator) Evaluate(ctx context.Context, dimension models.Dimension, jobDescription, resumeText string) (*models.DimensionResult, error) {
	payload, err := e.complete(ctx, buildPrompt(dimension, jobDescription, resumeText))
	if err != nil {
		return nil, fmt.Errorf("assessment request for %s failed: %w", dimension, err)
	}

	return ParseDimensionResult(dimension, payload)
}

func buildPrompt(dimension models.Dimension, jobDescription, resumeText string) string {
	var b strings.Builder

	b.WriteString("Assess the candidate's ")
	b.WriteString(strings.ReplaceAll(string(dimension), "_", " "))
	b.WriteString(" against the job below. Respond with a JSON object containing ")
	b.WriteString(`"scores" (named sub-scores, 0-10), "overall_score" (0-10), `)
	b.WriteString(`"feedback", and optional "key_points", "strengths", "weaknesses" arrays.`)
	b.WriteString("\n\nJob description:\n")
	b.WriteString(jobDescription)
	b.WriteString("\n\nResume:\n")
	b.WriteString(resumeText)

	return b.String()
}
