package models

import (
	"time"

	"gorm.io/datatypes"
)

// RiskLevel is the categorical likelihood of a student falling behind.
type RiskLevel string

const (
	RiskHigh    RiskLevel = "high"
	RiskMedium  RiskLevel = "medium"
	RiskLow     RiskLevel = "low"
	RiskUnknown RiskLevel = "unknown"
)

// IsAtRisk reports whether the tier warrants teacher attention.
func (r RiskLevel) IsAtRisk() bool {
	return r == RiskHigh || r == RiskMedium
}

// CurrentPerformance summarises the figures a prediction was computed from.
type CurrentPerformance struct {
	AvgGrade       float64 `json:"avg_grade"`
	CompletionRate float64 `json:"completion_rate"`
}

// AtRiskSubject flags an assignment similar students historically struggled with.
type AtRiskSubject struct {
	Assignment      string   `json:"assignment"`
	Subject         string   `json:"subject"`
	Grade           *float64 `json:"grade"`
	StuckPercentage float64  `json:"stuck_percentage"`
}

// Prediction is the read-only value object produced by the prediction collaborator.
type Prediction struct {
	RiskLevel           RiskLevel           `json:"risk_level"`
	Declining           bool                `json:"declining"`
	DeclinePercentage   float64             `json:"decline_percentage"`
	CurrentPerformance  CurrentPerformance  `json:"current_performance"`
	AtRiskSubjects      []AtRiskSubject     `json:"at_risk_subjects"`
	StudyTips           map[string][]string `json:"study_tips"`
	ShouldEmphasizeTips bool                `json:"should_emphasize_tips"`
}

// PredictionRecord is the persisted form written by the external prediction job.
type PredictionRecord struct {
	StudentID           uint                                    `gorm:"primaryKey;autoIncrement:false"`
	RiskLevel           string                                  `gorm:"size:16;not null"`
	Declining           bool                                    `gorm:"not null;default:false"`
	DeclinePercentage   float64                                 `gorm:"not null;default:0"`
	AvgGrade            float64                                 `gorm:"not null;default:0"`
	CompletionRate      float64                                 `gorm:"not null;default:0"`
	AtRiskSubjects      datatypes.JSONSlice[AtRiskSubject]      `gorm:"type:json"`
	StudyTips           datatypes.JSONType[map[string][]string] `gorm:"type:json"`
	ShouldEmphasizeTips bool                                    `gorm:"not null;default:false"`
	UpdatedAt           time.Time
}

// TableName keeps the table name stable regardless of the struct name.
func (PredictionRecord) TableName() string {
	return "predictions"
}

// ToPrediction converts the stored record into the value object.
func (r PredictionRecord) ToPrediction() Prediction {
	subjects := []AtRiskSubject(r.AtRiskSubjects)
	if subjects == nil {
		subjects = []AtRiskSubject{}
	}
	tips := r.StudyTips.Data()
	if tips == nil {
		tips = map[string][]string{}
	}

	return Prediction{
		RiskLevel:         RiskLevel(r.RiskLevel),
		Declining:         r.Declining,
		DeclinePercentage: r.DeclinePercentage,
		CurrentPerformance: CurrentPerformance{
			AvgGrade:       r.AvgGrade,
			CompletionRate: r.CompletionRate,
		},
		AtRiskSubjects:      subjects,
		StudyTips:           tips,
		ShouldEmphasizeTips: r.ShouldEmphasizeTips,
	}
}

// StudentPrediction pairs a student with their current prediction.
type StudentPrediction struct {
	Student    Student    `json:"student"`
	Prediction Prediction `json:"prediction"`
}
