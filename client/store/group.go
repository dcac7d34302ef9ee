package store

import (
	"sort"

	"activity-planner/internal/models"
)

// DateGroup is one calendar day's worth of activities.
type DateGroup struct {
	Date       string
	Activities []*models.Activity
}

// GroupByDate sorts activities by date ascending and partitions them by UTC
// calendar day. Pure function; safe to recompute on every read.
func GroupByDate(activities []*models.Activity) []DateGroup {
	sorted := make([]*models.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var groups []DateGroup
	for _, activity := range sorted {
		key := activity.Date.UTC().Format("2006-01-02")
		if len(groups) == 0 || groups[len(groups)-1].Date != key {
			groups = append(groups, DateGroup{Date: key})
		}
		last := len(groups) - 1
		groups[last].Activities = append(groups[last].Activities, activity)
	}
	return groups
}
