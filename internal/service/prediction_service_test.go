package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/studyboard-api/internal/models"
)

func TestPredictionServiceStoredAndFallback(t *testing.T) {
	s := seedSchool(t)
	svc := newPredictions(s)
	ctx := context.Background()

	stored, err := svc.ForStudent(ctx, s.ben.ID)
	require.NoError(t, err)
	require.Equal(t, models.RiskMedium, stored.RiskLevel)
	require.Len(t, stored.AtRiskSubjects, 2)
	require.Equal(t, []string{"Outline first"}, stored.StudyTips["English"])

	fallback, err := svc.ForStudent(ctx, s.ada.ID)
	require.NoError(t, err)
	require.Equal(t, models.RiskHigh, fallback.RiskLevel)
	require.True(t, fallback.Declining)
	require.InDelta(t, 0.3125, fallback.DeclinePercentage, 1e-9)
	require.Equal(t, 0.5, fallback.CurrentPerformance.CompletionRate)
	require.NotNil(t, fallback.AtRiskSubjects)
	require.NotNil(t, fallback.StudyTips)

	unknown, err := svc.ForStudent(ctx, 999)
	require.NoError(t, err)
	require.Equal(t, models.RiskUnknown, unknown.RiskLevel)
}

func TestPredictionServiceAtRiskForTeacher(t *testing.T) {
	s := seedSchool(t)
	svc := newPredictions(s)

	atRisk, err := svc.AtRiskForTeacher(context.Background(), s.teacher.ID)
	require.NoError(t, err)
	require.Len(t, atRisk, 2)

	none, err := svc.AtRiskForTeacher(context.Background(), s.other.ID)
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = svc.AtRiskForTeacher(context.Background(), 999)
	require.ErrorIs(t, err, ErrTeacherNotFound)
}
