package models

// Dimension is one of the independent axes a candidate is evaluated on.
type Dimension string

const (
	DimensionTechnical  Dimension = "technical_skills"
	DimensionExperience Dimension = "experience_relevance"
	DimensionEducation  Dimension = "education_qualifications"
	DimensionSoftSkills Dimension = "soft_skills"
	DimensionATS        Dimension = "ats_compatibility"
)

// Dimensions lists every evaluation axis in scoring order.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionTechnical,
		DimensionExperience,
		DimensionEducation,
		DimensionSoftSkills,
		DimensionATS,
	}
}

// Recommendation is the tier derived from the weighted score.
type Recommendation string

const (
	RecommendationFastTrack      Recommendation = "fast_track"
	RecommendationInterview      Recommendation = "interview"
	RecommendationReviewRequired Recommendation = "review_required"
	RecommendationReject         Recommendation = "reject"
)

// NeedsHumanDecision reports whether the tier requires a reviewer before the
// candidate may proceed.
func (r Recommendation) NeedsHumanDecision() bool {
	return r == RecommendationReject || r == RecommendationReviewRequired
}

// DimensionResult is the fixed-shape outcome of one dimension assessment.
// Scores holds five named sub-scores in the 0-10 range; OverallScore is
// their mean as reported by the evaluator.
type DimensionResult struct {
	Dimension    Dimension          `json:"dimension"`
	Scores       map[string]float64 `json:"scores"`
	OverallScore float64            `json:"overall_score"`
	Feedback     string             `json:"feedback"`
	KeyPoints    []string           `json:"key_points,omitempty"`
	Strengths    []string           `json:"strengths,omitempty"`
	Weaknesses   []string           `json:"weaknesses,omitempty"`
}

// Evaluation is the aggregated per-candidate result. Immutable once the
// scoring step has produced it.
type Evaluation struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`

	// Dimension results keyed by dimension. A dimension whose assessment
	// failed to parse is absent from the map.
	Dimensions map[Dimension]*DimensionResult `json:"dimensions"`

	// WeightedScore is the sum over configured dimension weights; the
	// recommendation and match percentage derive from it. OverallScore is
	// the unweighted mean of the present dimensions' overall scores.
	WeightedScore   float64        `json:"weighted_score"`
	OverallScore    float64        `json:"overall_score"`
	MatchPercentage int            `json:"match_percentage"`
	Recommendation  Recommendation `json:"recommendation"`

	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
	Summary    string   `json:"summary,omitempty"`

	// Per-dimension errors, keyed by the step name that produced them.
	Errors []string `json:"errors,omitempty"`
}

// ScoringConfig carries the weights and thresholds used to collapse
// dimension results into a recommendation.
type ScoringConfig struct {
	Weights             map[Dimension]float64 `json:"weights"`
	MinimumPassScore    float64               `json:"minimum_pass_score"`
	AutoRejectThreshold float64               `json:"auto_reject_threshold"`
	FastTrackThreshold  float64               `json:"fast_track_threshold"`
}

// DefaultScoringConfig returns the standard weights (summing to 1.0) and
// the 8.0 / 6.0 / 3.0 recommendation boundaries.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: map[Dimension]float64{
			DimensionTechnical:  0.35,
			DimensionExperience: 0.25,
			DimensionEducation:  0.15,
			DimensionSoftSkills: 0.15,
			DimensionATS:        0.10,
		},
		MinimumPassScore:    6.0,
		AutoRejectThreshold: 3.0,
		FastTrackThreshold:  8.0,
	}
}
