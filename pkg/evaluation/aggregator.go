package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hireflowhq/hireflow/pkg/models"
)

const maxListedTraits = 5

// Aggregator fans a candidate out across every dimension and folds the
// results into a single scored evaluation.
type Aggregator struct {
	evaluator Evaluator
	config    models.ScoringConfig
	logger    *slog.Logger
}

// NewAggregator creates an aggregator with the given scoring configuration.
func NewAggregator(logger *slog.Logger, evaluator Evaluator, config models.ScoringConfig) *Aggregator {
	return &Aggregator{
		evaluator: evaluator,
		config:    config,
		logger:    logger,
	}
}

// EvaluateCandidate runs every dimension assessment concurrently and
// aggregates the outcome. A dimension whose assessment fails is recorded in
// Errors and excluded from scoring without renormalizing the remaining
// weights; the call itself only errors when the context is cancelled.
func (a *Aggregator) EvaluateCandidate(ctx context.Context, candidate *models.Candidate, job *models.Job) (*models.Evaluation, error) {
	evaluation := &models.Evaluation{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		Dimensions:  make(map[models.Dimension]*models.DimensionResult),
	}

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)

	for _, dimension := range models.Dimensions() {
		group.Go(func() error {
			result, err := a.evaluator.Evaluate(groupCtx, dimension, job.Description, candidate.ResumeText)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				a.logger.Warn("Dimension assessment failed",
					"candidate_id", candidate.ID, "dimension", dimension, "error", err)

				evaluation.Errors = append(evaluation.Errors, fmt.Sprintf("%s: %v", dimension, err))

				return nil
			}

			evaluation.Dimensions[dimension] = result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation of candidate %s cancelled: %w", candidate.ID, err)
	}

	sort.Strings(evaluation.Errors)

	a.score(evaluation)
	a.collectTraits(evaluation)
	evaluation.Summary = a.summarize(candidate, evaluation)

	return evaluation, nil
}

// score collapses the present dimension results into the weighted score,
// the unweighted overall score, the match percentage and the
// recommendation tier. Missing dimensions contribute nothing.
func (a *Aggregator) score(evaluation *models.Evaluation) {
	weighted := 0.0

	for dimension, weight := range a.config.Weights {
		result, ok := evaluation.Dimensions[dimension]
		if !ok {
			continue
		}

		weighted += result.OverallScore * weight
	}

	mean := 0.0
	for _, result := range evaluation.Dimensions {
		mean += result.OverallScore
	}

	if assessed := len(evaluation.Dimensions); assessed > 0 {
		mean /= float64(assessed)
	}

	evaluation.WeightedScore = weighted
	evaluation.OverallScore = math.Round(mean*100) / 100

	// Threshold comparisons use the rounded weighted score so accumulated
	// float error cannot flip a boundary case.
	rounded := math.Round(weighted*100) / 100

	evaluation.MatchPercentage = int(math.Min(100, math.Round(rounded*10)))
	evaluation.Recommendation = a.recommend(rounded, len(evaluation.Dimensions))
}

func (a *Aggregator) recommend(weighted float64, assessed int) models.Recommendation {
	// With no usable assessment the score carries no signal; route to a
	// reviewer instead of auto-rejecting on a zero.
	if assessed == 0 {
		return models.RecommendationReviewRequired
	}

	switch {
	case weighted >= a.config.FastTrackThreshold:
		return models.RecommendationFastTrack
	case weighted >= a.config.MinimumPassScore:
		return models.RecommendationInterview
	case weighted <= a.config.AutoRejectThreshold:
		return models.RecommendationReject
	default:
		return models.RecommendationReviewRequired
	}
}

// collectTraits merges per-dimension strengths and weaknesses in scoring
// order, dropping duplicates and keeping at most five of each.
func (a *Aggregator) collectTraits(evaluation *models.Evaluation) {
	var strengths, weaknesses []string

	for _, dimension := range models.Dimensions() {
		result, ok := evaluation.Dimensions[dimension]
		if !ok {
			continue
		}

		strengths = append(strengths, result.Strengths...)
		weaknesses = append(weaknesses, result.Weaknesses...)
	}

	evaluation.Strengths = dedupCapped(strengths, maxListedTraits)
	evaluation.Weaknesses = dedupCapped(weaknesses, maxListedTraits)
}

func dedupCapped(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, limit)

	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}

		out = append(out, item)
		if len(out) == limit {
			break
		}
	}

	return out
}

func (a *Aggregator) summarize(candidate *models.Candidate, evaluation *models.Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s scored %.2f/10 (%d%% match), recommendation: %s.",
		candidate.Name, evaluation.WeightedScore, evaluation.MatchPercentage, evaluation.Recommendation)

	if len(evaluation.Strengths) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(evaluation.Strengths, ", "))
	}

	if len(evaluation.Weaknesses) > 0 {
		fmt.Fprintf(&b, " Weaknesses: %s.", strings.Join(evaluation.Weaknesses, ", "))
	}

	if len(evaluation.Errors) > 0 {
		fmt.Fprintf(&b, " %d dimension assessment(s) failed.", len(evaluation.Errors))
	}

	return b.String()
}
