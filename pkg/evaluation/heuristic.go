package evaluation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hireflowhq/hireflow/pkg/models"
)

// HeuristicEvaluator scores resumes with keyword analysis instead of an
// external model. It is the default backend for local runs; production
// deployments register a model-backed evaluator instead.
type HeuristicEvaluator struct{}

// NewHeuristicEvaluator creates the keyword-based evaluation backend.
func NewHeuristicEvaluator() *HeuristicEvaluator {
	return &HeuristicEvaluator{}
}

func (e *HeuristicEvaluator) Evaluate(ctx context.Context, dimension models.Dimension, jobDescription, resumeText string) (*models.DimensionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resume := tokenSet(resumeText)

	var score float64

	var matched, missing []string

	switch dimension {
	case models.DimensionTechnical, models.DimensionExperience:
		score, matched, missing = overlapScore(tokenSet(jobDescription), resume)
	case models.DimensionEducation:
		score, matched = keywordScore(resume, []string{
			"degree", "bachelor", "bachelors", "master", "masters", "phd",
			"university", "college", "certified", "certification",
		})
	case models.DimensionSoftSkills:
		score, matched = keywordScore(resume, []string{
			"led", "leadership", "team", "mentored", "communication",
			"collaborated", "collaboration", "presented", "stakeholders",
		})
	case models.DimensionATS:
		score = structureScore(resumeText)
	default:
		return nil, fmt.Errorf("unknown dimension %q", dimension)
	}

	result := &models.DimensionResult{
		Dimension:    dimension,
		Scores:       map[string]float64{"keyword_match": score},
		OverallScore: score,
		Feedback:     fmt.Sprintf("heuristic %s score %.1f/10", strings.ReplaceAll(string(dimension), "_", " "), score),
	}

	if len(matched) > 0 {
		result.Strengths = append(result.Strengths, "mentions "+strings.Join(capped(matched, 3), ", "))
	}

	if len(missing) > 0 {
		result.Weaknesses = append(result.Weaknesses, "no mention of "+strings.Join(capped(missing, 3), ", "))
	}

	return result, nil
}

// overlapScore rates how many of the job's terms appear in the resume.
func overlapScore(job, resume map[string]struct{}) (float64, []string, []string) {
	if len(job) == 0 {
		return 5.0, nil, nil
	}

	var matched, missing []string

	for term := range job {
		if _, ok := resume[term]; ok {
			matched = append(matched, term)
		} else {
			missing = append(missing, term)
		}
	}

	sort.Strings(matched)
	sort.Strings(missing)

	ratio := float64(len(matched)) / float64(len(job))

	return math.Round(ratio*100) / 10, matched, missing
}

// keywordScore awards two points per distinct keyword hit, capped at ten.
func keywordScore(resume map[string]struct{}, keywords []string) (float64, []string) {
	var matched []string

	for _, keyword := range keywords {
		if _, ok := resume[keyword]; ok {
			matched = append(matched, keyword)
		}
	}

	return math.Min(10, float64(len(matched))*2), matched
}

// structureScore approximates machine readability: enough text to parse,
// not so much that sections drown.
func structureScore(resumeText string) float64 {
	words := len(strings.Fields(resumeText))

	switch {
	case words == 0:
		return 0
	case words < 50:
		return 4
	case words <= 800:
		return 8
	default:
		return 6
	}
}

func tokenSet(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '+' && r != '#'
	})

	set := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		if len(token) < 3 {
			continue
		}

		set[token] = struct{}{}
	}

	return set
}

func capped(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}

	return items[:limit]
}
