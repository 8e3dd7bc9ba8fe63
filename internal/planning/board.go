// Package planning aggregates weekly resource allocations into a
// capacity-aware planner board. The board is a pure function of the rows
// passed in: building it twice from the same inputs yields identical
// results, and nothing here touches storage.
package planning

import (
	"grantia/internal/models"
)

// CellKey identifies one editable planner cell: one user, one activity,
// one week. A proper struct key avoids the delimiter-collision bugs of
// concatenated string keys.
type CellKey struct {
	UserID     string
	ActivityID string
	WeekStart  string
}

// LoadKey identifies a user's total competing load in one week. Activity
// identity is irrelevant across other projects; only the sum matters.
type LoadKey struct {
	UserID    string
	WeekStart string
}

// Board partitions a window of allocation rows into the current project's
// cells and the per-user competing load from every other project.
type Board struct {
	Cells     map[CellKey]float64
	OtherLoad map[LoadKey]float64
}

// BuildBoard partitions allocations by project. Rows belonging to
// currentProjectID become addressable cells; rows from other projects are
// summed into OtherLoad. Rows with an empty activity id are malformed and
// discarded.
func BuildBoard(allocations []models.Allocation, currentProjectID string) Board {
	board := Board{
		Cells:     make(map[CellKey]float64),
		OtherLoad: make(map[LoadKey]float64),
	}

	for _, a := range allocations {
		if a.ActivityID == "" {
			continue
		}
		week := WeekKey(a.WeekStartDate)
		if a.ProjectID == currentProjectID {
			board.Cells[CellKey{UserID: a.UserID, ActivityID: a.ActivityID, WeekStart: week}] = a.Hours
		} else {
			board.OtherLoad[LoadKey{UserID: a.UserID, WeekStart: week}] += a.Hours
		}
	}

	return board
}

// ProjectHours sums the current-project cells for one user and week,
// iterating only the known activities of the project. Stray cell keys
// left over from stale or orphaned state never contribute.
func (b Board) ProjectHours(userID, week string, activities []models.Activity) float64 {
	var total float64
	for _, act := range activities {
		total += b.Cells[CellKey{UserID: userID, ActivityID: act.ID, WeekStart: week}]
	}
	return total
}

// WeekStat is the per-user, per-week capacity comparison shown in the
// planner. Over-allocation is flagged, never blocked.
type WeekStat struct {
	WeekStart    string  `json:"week_start"`
	ProjectHours float64 `json:"project_hours"`
	OtherHours   float64 `json:"other_hours"`
	TotalHours   float64 `json:"total_hours"`
	Remaining    float64 `json:"remaining"`
	OverCapacity bool    `json:"over_capacity"`
}

// Stat computes the capacity comparison for one user and week given the
// user's weekly capacity and the current project's activities.
func (b Board) Stat(userID, week string, capacity float64, activities []models.Activity) WeekStat {
	project := b.ProjectHours(userID, week, activities)
	other := b.OtherLoad[LoadKey{UserID: userID, WeekStart: week}]
	total := project + other
	return WeekStat{
		WeekStart:    week,
		ProjectHours: project,
		OtherHours:   other,
		TotalHours:   total,
		Remaining:    capacity - total,
		OverCapacity: total > capacity,
	}
}
