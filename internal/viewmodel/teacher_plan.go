package viewmodel

import (
	"fmt"
	"time"

	"github.com/noah-isme/studyboard-api/internal/models"
)

// GenerateTeacherPlan builds the teacher's follow-up list for at-risk students.
// Grading tasks come first, then feedback messages, then check-ins.
func GenerateTeacherPlan(atRisk []models.StudentPrediction, now time.Time) []Task {
	specs := make([]taskSpec, 0, len(atRisk)*3)

	for _, entry := range atRisk {
		for _, subject := range entry.Prediction.AtRiskSubjects {
			if subject.Grade != nil {
				continue
			}
			specs = append(specs, taskSpec{
				text:     fmt.Sprintf("Grade %s for %s", subject.Assignment, entry.Student.Name),
				category: TaskCategoryGrading,
				offset:   1,
				subject:  studentSubject(entry.Student.ID) + "|" + subject.Assignment,
			})
		}
	}

	for _, entry := range atRisk {
		if entry.Prediction.RiskLevel == models.RiskHigh {
			specs = append(specs, taskSpec{
				text:     "Send encouraging feedback to " + entry.Student.Name,
				category: TaskCategoryMessages,
				offset:   2,
				subject:  studentSubject(entry.Student.ID),
			})
		}
	}

	for _, entry := range atRisk {
		if entry.Prediction.RiskLevel == models.RiskHigh || entry.Prediction.Declining {
			specs = append(specs, taskSpec{
				text:     "Schedule check-in with " + entry.Student.Name,
				category: TaskCategoryScheduling,
				offset:   3,
				subject:  studentSubject(entry.Student.ID),
			})
		}
	}

	return buildTasks(specs, now)
}

func studentSubject(id uint) string {
	return fmt.Sprintf("student:%d", id)
}
