package planner

import (
	"ContentPlanner/internal/catalog"
	"ContentPlanner/internal/domain"
)

// RecommendedPostsPerDay derives a suggested per-day capacity from the
// aggregate frequency demand over the horizon. Alternation groups count
// once (only one member publishes per period).
func RecommendedPostsPerDay(cat catalog.Catalog, weeks int) int {
	var weeklyCount, monthlyCount float64

	for _, item := range cat.Standalone() {
		value := float64(item.Frequency) / float64(item.Interval)
		if item.Kind == domain.FrequencyWeekly {
			weeklyCount += value
		} else {
			monthlyCount += value
		}
	}
	for _, g := range cat.Groups {
		value := float64(g.Frequency) / float64(g.Interval)
		if g.Kind == domain.FrequencyWeekly {
			weeklyCount += value
		} else {
			monthlyCount += value
		}
	}

	totalPosts := weeklyCount*float64(weeks) + monthlyCount*float64(weeks/domain.WeeksPerMonth)
	totalDays := float64(weeks * domain.DaysPerWeek)
	recommended := int(totalPosts/totalDays) + 1

	// Demand can bunch up: assume the weekly peak spreads over about three
	// days and keep whichever bound is higher.
	peakPerWeek := max(weeklyCount, monthlyCount/domain.WeeksPerMonth)
	byPeak := int(peakPerWeek/3) + 1

	return max(recommended, byPeak)
}
