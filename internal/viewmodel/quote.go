package viewmodel

import (
	"math/rand"

	"github.com/noah-isme/studyboard-api/internal/models"
)

var (
	atRiskQuotes = []string{
		"Keep working hard - every effort counts toward improvement.",
		"Stay focused and committed. You can turn this around.",
		"Consistency is key. Keep pushing forward one step at a time.",
		"Don't give up. Reach out for help and keep trying.",
	}
	excellentQuotes = []string{
		"Outstanding work! Keep up this exceptional performance!",
		"You're excelling! Your hard work is paying off beautifully.",
		"Brilliant! You're setting a great example for others.",
	}
	goodQuotes = []string{
		"Great job! You're on the right track to excellence.",
		"Well done! Keep pushing forward and you'll reach the top.",
		"Good work! Your effort is showing positive results.",
	}
	steadyQuotes = []string{
		"Keep working hard - progress takes time and effort.",
		"Stay committed to your goals. You're building important skills.",
		"Focus on improvement, not perfection. Keep going!",
	}
)

// QuotePool returns the pool a quote is drawn from for the given standing.
func QuotePool(avgGrade float64, tier models.RiskLevel) []string {
	switch {
	case tier.IsAtRisk():
		return atRiskQuotes
	case avgGrade >= 90:
		return excellentQuotes
	case avgGrade >= 75:
		return goodQuotes
	default:
		return steadyQuotes
	}
}

// SelectQuote draws uniformly from the matching pool using the supplied source.
func SelectQuote(avgGrade float64, tier models.RiskLevel, rng *rand.Rand) string {
	pool := QuotePool(avgGrade, tier)
	return pool[rng.Intn(len(pool))]
}
