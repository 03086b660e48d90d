package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/hireflowhq/hireflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubEvaluator returns canned results per dimension and errors for the
// dimensions listed in failing.
type stubEvaluator struct {
	results map[models.Dimension]*models.DimensionResult
	failing map[models.Dimension]error
}

func (s *stubEvaluator) Evaluate(_ context.Context, dimension models.Dimension, _, _ string) (*models.DimensionResult, error) {
	if err, ok := s.failing[dimension]; ok {
		return nil, err
	}

	result, ok := s.results[dimension]
	if !ok {
		return nil, fmt.Errorf("no stub for %s", dimension)
	}

	return result, nil
}

func uniformResults(score float64) map[models.Dimension]*models.DimensionResult {
	results := make(map[models.Dimension]*models.DimensionResult)
	for _, dimension := range models.Dimensions() {
		results[dimension] = &models.DimensionResult{
			Dimension:    dimension,
			Scores:       map[string]float64{"depth": score},
			OverallScore: score,
			Feedback:     "ok",
		}
	}

	return results
}

func testCandidate() *models.Candidate {
	return &models.Candidate{ID: "cand-1", Name: "Dana Reyes", Email: "dana@example.com", JobID: "job-1"}
}

func testJob() *models.Job {
	return &models.Job{ID: "job-1", Title: "Backend Engineer", Description: "Build services"}
}

func TestAggregator_UniformScores(t *testing.T) {
	tests := []struct {
		score float64
		want  models.Recommendation
		match int
	}{
		{9.0, models.RecommendationFastTrack, 90},
		{8.0, models.RecommendationFastTrack, 80},
		{6.5, models.RecommendationInterview, 65},
		{6.0, models.RecommendationInterview, 60},
		{4.0, models.RecommendationReviewRequired, 40},
		{3.0, models.RecommendationReject, 30},
		{2.0, models.RecommendationReject, 20},
		{10.0, models.RecommendationFastTrack, 100},
	}

	for _, tt := range tests {
		aggregator := NewAggregator(testLogger(), &stubEvaluator{results: uniformResults(tt.score)}, models.DefaultScoringConfig())

		evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
		require.NoError(t, err)

		// Weights sum to 1.0, so a uniform score passes through unchanged
		// and equals the unweighted mean.
		assert.InDelta(t, tt.score, evaluation.WeightedScore, 1e-6, "score %.1f", tt.score)
		assert.InDelta(t, tt.score, evaluation.OverallScore, 1e-6, "score %.1f", tt.score)
		assert.Equal(t, tt.match, evaluation.MatchPercentage, "score %.1f", tt.score)
		assert.Equal(t, tt.want, evaluation.Recommendation, "score %.1f", tt.score)
		assert.Empty(t, evaluation.Errors)
		assert.Len(t, evaluation.Dimensions, 5)
	}
}

func TestAggregator_WeightedMix(t *testing.T) {
	results := uniformResults(5.0)
	results[models.DimensionTechnical].OverallScore = 9.0

	aggregator := NewAggregator(testLogger(), &stubEvaluator{results: results}, models.DefaultScoringConfig())

	evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	// Weighted: 9.0*0.35 + 5.0*0.65 = 6.40. Unweighted mean: 29/5 = 5.8.
	assert.InDelta(t, 6.40, evaluation.WeightedScore, 1e-6)
	assert.InDelta(t, 5.8, evaluation.OverallScore, 1e-6)
	assert.Equal(t, 64, evaluation.MatchPercentage)
	assert.Equal(t, models.RecommendationInterview, evaluation.Recommendation)
}

func TestAggregator_FailedDimensionSkipsWeight(t *testing.T) {
	aggregator := NewAggregator(testLogger(), &stubEvaluator{
		results: uniformResults(8.0),
		failing: map[models.Dimension]error{
			models.DimensionATS: ErrMalformedResponse,
		},
	}, models.DefaultScoringConfig())

	evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	// ats weight (0.10) drops out without renormalization: 8.0 * 0.90.
	// The unweighted mean covers only the four present dimensions.
	assert.InDelta(t, 7.2, evaluation.WeightedScore, 1e-6)
	assert.InDelta(t, 8.0, evaluation.OverallScore, 1e-6)
	assert.Equal(t, models.RecommendationInterview, evaluation.Recommendation)
	assert.Len(t, evaluation.Dimensions, 4)
	require.Len(t, evaluation.Errors, 1)
	assert.Contains(t, evaluation.Errors[0], "ats_compatibility")
}

func TestAggregator_AllDimensionsFailedRoutesToReview(t *testing.T) {
	failing := make(map[models.Dimension]error)
	for _, dimension := range models.Dimensions() {
		failing[dimension] = errors.New("backend unavailable")
	}

	aggregator := NewAggregator(testLogger(), &stubEvaluator{failing: failing}, models.DefaultScoringConfig())

	evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Zero(t, evaluation.WeightedScore)
	assert.Equal(t, models.RecommendationReviewRequired, evaluation.Recommendation)
	assert.Len(t, evaluation.Errors, 5)
	assert.True(t, evaluation.Recommendation.NeedsHumanDecision())
}

func TestAggregator_TraitsDedupedAndCapped(t *testing.T) {
	results := uniformResults(7.0)
	for _, dimension := range models.Dimensions() {
		results[dimension].Strengths = []string{"clear communicator", "strong fundamentals", string(dimension) + " depth"}
		results[dimension].Weaknesses = []string{"sparse detail"}
	}

	aggregator := NewAggregator(testLogger(), &stubEvaluator{results: results}, models.DefaultScoringConfig())

	evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Len(t, evaluation.Strengths, 5)
	assert.Equal(t, []string{"sparse detail"}, evaluation.Weaknesses)

	seen := make(map[string]int)
	for _, s := range evaluation.Strengths {
		seen[s]++
	}

	for s, n := range seen {
		assert.Equal(t, 1, n, s)
	}
}

func TestAggregator_SummaryMentionsFailures(t *testing.T) {
	aggregator := NewAggregator(testLogger(), &stubEvaluator{
		results: uniformResults(7.0),
		failing: map[models.Dimension]error{models.DimensionEducation: errors.New("timeout")},
	}, models.DefaultScoringConfig())

	evaluation, err := aggregator.EvaluateCandidate(context.Background(), testCandidate(), testJob())
	require.NoError(t, err)

	assert.Contains(t, evaluation.Summary, "Dana Reyes")
	assert.Contains(t, evaluation.Summary, "1 dimension assessment(s) failed")
}

func TestParseDimensionResult_Valid(t *testing.T) {
	payload := []byte(`{
		"scores": {"depth": 8, "breadth": 7},
		"overall_score": 7.5,
		"feedback": "solid",
		"strengths": ["go", "sql"],
		"weaknesses": []
	}`)

	result, err := ParseDimensionResult(models.DimensionTechnical, payload)
	require.NoError(t, err)

	assert.Equal(t, models.DimensionTechnical, result.Dimension)
	assert.InDelta(t, 7.5, result.OverallScore, 1e-9)
	assert.Equal(t, []string{"go", "sql"}, result.Strengths)
}

func TestParseDimensionResult_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "it was great"},
		{"missing fields", `{"scores": {"depth": 5}}`},
		{"score out of range", `{"scores": {"depth": 15}, "overall_score": 5, "feedback": "x"}`},
		{"overall out of range", `{"scores": {"depth": 5}, "overall_score": 11, "feedback": "x"}`},
		{"wrong types", `{"scores": "high", "overall_score": 5, "feedback": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDimensionResult(models.DimensionTechnical, []byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestPromptEvaluator_TransportErrorIsNotMalformed(t *testing.T) {
	transportErr := errors.New("connection refused")

	evaluator := NewPromptEvaluator(func(_ context.Context, _ string) ([]byte, error) {
		return nil, transportErr
	})

	_, err := evaluator.Evaluate(context.Background(), models.DimensionTechnical, "job", "resume")
	assert.ErrorIs(t, err, transportErr)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestPromptEvaluator_PromptCarriesInputs(t *testing.T) {
	var captured string

	evaluator := NewPromptEvaluator(func(_ context.Context, prompt string) ([]byte, error) {
		captured = prompt

		return []byte(`{"scores": {"depth": 6}, "overall_score": 6, "feedback": "fine"}`), nil
	})

	result, err := evaluator.Evaluate(context.Background(), models.DimensionSoftSkills, "lead a team", "ten years experience")
	require.NoError(t, err)

	assert.Contains(t, captured, "soft skills")
	assert.Contains(t, captured, "lead a team")
	assert.Contains(t, captured, "ten years experience")
	assert.Equal(t, models.DimensionSoftSkills, result.Dimension)
}
