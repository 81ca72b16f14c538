// Package viewmodel turns raw dashboard payloads into render-ready state.
//
// Every function here is pure: inputs are passed explicitly (including the
// reference time and any random source) and nothing performs I/O.
package viewmodel

import "github.com/noah-isme/studyboard-api/internal/models"

// Risk thresholds applied to the latest performance sample.
const (
	HighRiskGrade      = 60.0
	HighRiskCompletion = 0.6
	MediumRiskGrade    = 75.0
	MediumRiskComplete = 0.8
)

// ClassifyRisk derives the risk tier for a student. A supplied prediction always
// wins; without one the latest sample is classified against the fixed thresholds.
func ClassifyRisk(latest *models.PerformanceSample, override *models.Prediction) models.RiskLevel {
	if override != nil {
		return override.RiskLevel
	}
	if latest == nil {
		return models.RiskUnknown
	}

	switch {
	case latest.AvgGrade < HighRiskGrade || latest.CompletionRate < HighRiskCompletion:
		return models.RiskHigh
	case latest.AvgGrade < MediumRiskGrade || latest.CompletionRate < MediumRiskComplete:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// LatestSample returns the last sample of a chronologically ordered series.
func LatestSample(samples []models.PerformanceSample) *models.PerformanceSample {
	if len(samples) == 0 {
		return nil
	}
	latest := samples[len(samples)-1]
	return &latest
}

// Decline describes how the latest sample compares with the one before it.
type Decline struct {
	Declining  bool
	Percentage float64
}

// DetectDecline compares the last two samples. Percentage is the relative drop
// in average grade, expressed as a fraction of the previous value.
func DetectDecline(samples []models.PerformanceSample) Decline {
	if len(samples) < 2 {
		return Decline{}
	}

	previous := samples[len(samples)-2].AvgGrade
	latest := samples[len(samples)-1].AvgGrade
	if latest >= previous || previous <= 0 {
		return Decline{}
	}

	return Decline{
		Declining:  true,
		Percentage: (previous - latest) / previous,
	}
}

// ScoreBand labels a score for display.
type ScoreBand string

const (
	BandPending   ScoreBand = "pending"
	BandExcellent ScoreBand = "excellent"
	BandGood      ScoreBand = "good"
	BandPoor      ScoreBand = "poor"
)

// BandForScore buckets a score into excellent (>= 90), good (>= 75) or poor.
func BandForScore(score *float64) ScoreBand {
	if score == nil {
		return BandPending
	}
	switch {
	case *score >= 90:
		return BandExcellent
	case *score >= 75:
		return BandGood
	default:
		return BandPoor
	}
}
