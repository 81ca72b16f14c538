package viewmodel

import "fmt"

const (
	difficultyFeedback = "I noticed you're having difficulty with %s. Let's schedule time to review the core concepts together. Would you like to meet during office hours this week?"
	progressFeedback   = "You're making progress on %s, but there's room for improvement. Consider reviewing the material and attempting some practice problems. I'm here if you need help!"
	effortFeedback     = "Good effort on %s! To reach the next level, focus on [specific concept]. Keep up the good work!"
)

// ComposeFeedback prefills the message a teacher sends about one assignment.
// Without a grade the encouraging template is used.
func ComposeFeedback(assignment string, grade *float64) string {
	switch {
	case grade == nil:
		return fmt.Sprintf(effortFeedback, assignment)
	case *grade < HighRiskGrade:
		return fmt.Sprintf(difficultyFeedback, assignment)
	case *grade < MediumRiskGrade:
		return fmt.Sprintf(progressFeedback, assignment)
	default:
		return fmt.Sprintf(effortFeedback, assignment)
	}
}
