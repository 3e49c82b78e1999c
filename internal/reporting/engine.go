// Package reporting holds the pure analytics computations. Every function
// operates on already-materialized sprint/task rows; handlers fetch and hand
// them in.
package reporting

import (
	"math"
	"sort"
	"time"

	"github.com/agile-mini/agile-mini-backend/internal/sprints"
	"github.com/agile-mini/agile-mini-backend/internal/tasks"
)

const dayFormat = "2006-01-02"

type BurndownPoint struct {
	Date            string `json:"date"`
	RemainingTasks  int    `json:"remaining_tasks"`
	RemainingPoints int64  `json:"remaining_points"`
}

// Burndown enumerates every calendar day of the sprint, both endpoints
// included. A task still counts as remaining on its completion day: only a
// completion date strictly after the day removes it.
func Burndown(sprint sprints.Sprint, ts []tasks.Task) []BurndownPoint {
	days := dayRange(sprint.StartDate, sprint.EndDate)

	out := make([]BurndownPoint, 0, len(days))
	for _, day := range days {
		var (
			remainingTasks  int
			remainingPoints int64
		)
		for _, t := range ts {
			if t.CompletedAt == nil || dateOf(*t.CompletedAt).After(day) {
				remainingTasks++
				remainingPoints += points(t)
			}
		}
		out = append(out, BurndownPoint{
			Date:            day.Format(dayFormat),
			RemainingTasks:  remainingTasks,
			RemainingPoints: remainingPoints,
		})
	}
	return out
}

type CFDPoint struct {
	Date  string `json:"date"`
	ToDo  int    `json:"To Do"`
	Doing int    `json:"Doing"`
	Done  int    `json:"Done"`
}

// CFD classifies each task per day from its stored dates, not from
// snapshots: Done if completed by that day, else Doing if started by that
// day, else To Do. Buckets always sum to the sprint's task count.
func CFD(sprint sprints.Sprint, ts []tasks.Task) []CFDPoint {
	days := dayRange(sprint.StartDate, sprint.EndDate)

	out := make([]CFDPoint, 0, len(days))
	for _, day := range days {
		var p CFDPoint
		p.Date = day.Format(dayFormat)
		for _, t := range ts {
			switch {
			case t.CompletedAt != nil && !dateOf(*t.CompletedAt).After(day):
				p.Done++
			case t.StartedAt != nil && !dateOf(*t.StartedAt).After(day):
				p.Doing++
			default:
				p.ToDo++
			}
		}
		out = append(out, p)
	}
	return out
}

type VelocityPoint struct {
	SprintID        int64  `json:"sprint_id"`
	SprintName      string `json:"sprint_name"`
	CompletedTasks  int    `json:"completed_tasks"`
	CompletedPoints int64  `json:"completed_points"`
}

// Velocity aggregates completed work per sprint, ascending by sprint id.
// Sprints without a single completed task are omitted entirely.
func Velocity(sl []sprints.Sprint, ts []tasks.Task) []VelocityPoint {
	names := make(map[int64]string, len(sl))
	for _, s := range sl {
		names[s.ID] = s.Name
	}

	byID := make(map[int64]*VelocityPoint)
	for _, t := range ts {
		if t.SprintID == nil || t.CompletedAt == nil {
			continue
		}
		name, ok := names[*t.SprintID]
		if !ok {
			continue
		}
		vp := byID[*t.SprintID]
		if vp == nil {
			vp = &VelocityPoint{SprintID: *t.SprintID, SprintName: name}
			byID[*t.SprintID] = vp
		}
		vp.CompletedTasks++
		vp.CompletedPoints += points(t)
	}

	out := make([]VelocityPoint, 0, len(byID))
	for _, vp := range byID {
		out = append(out, *vp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SprintID < out[j].SprintID })
	return out
}

type StatusBucket struct {
	Tasks  int   `json:"tasks"`
	Points int64 `json:"points"`
}

type SprintSummary struct {
	ToDo        StatusBucket `json:"To Do"`
	Doing       StatusBucket `json:"Doing"`
	Done        StatusBucket `json:"Done"`
	TotalTasks  int          `json:"total_tasks"`
	TotalPoints int64        `json:"total_points"`
}

// Summary partitions a sprint's tasks into the three known buckets; any
// unrecognized status counts as To Do.
func Summary(ts []tasks.Task) SprintSummary {
	var s SprintSummary
	for _, t := range ts {
		var bucket *StatusBucket
		switch t.Status {
		case tasks.StatusDoing:
			bucket = &s.Doing
		case tasks.StatusDone:
			bucket = &s.Done
		default:
			bucket = &s.ToDo
		}
		bucket.Tasks++
		bucket.Points += points(t)
		s.TotalTasks++
		s.TotalPoints += points(t)
	}
	return s
}

type LeadCycleReport struct {
	LeadTimeAvg     *float64 `json:"lead_time_avg"`
	CycleTimeAvg    *float64 `json:"cycle_time_avg"`
	LeadTimeMedian  *float64 `json:"lead_time_median"`
	CycleTimeMedian *float64 `json:"cycle_time_median"`
}

// LeadCycle computes per-task lead time (created → completed) and cycle time
// (started → completed) in hours, then the mean and median of each series
// rounded to two decimals. Empty series yield nulls, never a division by
// zero.
func LeadCycle(ts []tasks.Task) LeadCycleReport {
	var leadTimes, cycleTimes []float64
	for _, t := range ts {
		if t.CompletedAt == nil {
			continue
		}
		leadTimes = append(leadTimes, t.CompletedAt.Sub(t.CreatedAt).Hours())
		if t.StartedAt != nil {
			cycleTimes = append(cycleTimes, t.CompletedAt.Sub(*t.StartedAt).Hours())
		}
	}

	return LeadCycleReport{
		LeadTimeAvg:     round2(mean(leadTimes)),
		CycleTimeAvg:    round2(mean(cycleTimes)),
		LeadTimeMedian:  round2(median(leadTimes)),
		CycleTimeMedian: round2(median(cycleTimes)),
	}
}

func points(t tasks.Task) int64 {
	if t.Points == nil {
		return 0
	}
	return *t.Points
}

// dayRange returns the closed interval of calendar days from the start
// date through the end date.
func dayRange(start, end time.Time) []time.Time {
	first := dateOf(start)
	last := dateOf(end)

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}

func median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

func round2(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	r := math.Round(v*100) / 100
	return &r
}
