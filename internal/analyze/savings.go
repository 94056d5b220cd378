package analyze

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/ledgerlens/internal/model"
	"github.com/castlemilk/ledgerlens/internal/stats"
)

// GoalStatus classifies progress toward a savings goal.
type GoalStatus string

const (
	GoalOnTrack  GoalStatus = "on_track"
	GoalOffTrack GoalStatus = "off_track"
	GoalAchieved GoalStatus = "achieved"
	GoalOverdue  GoalStatus = "overdue"
)

// SavingsRate returns (income−expenses)/income as a percentage, 0 when there
// is no income to save from.
func SavingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// GoalAllocation is one goal's share of the monthly savings pool.
type GoalAllocation struct {
	GoalID              int64
	Name                string
	Priority            int
	RequiredMonthly     float64
	Allocated           float64
	ProjectedCompletion *time.Time
	Status              GoalStatus
}

// AllocateToGoals distributes available monthly savings across goals in
// ascending priority order (1 first). Each goal receives its exact required
// monthly contribution while savings last; the goal that exhausts the pool
// takes what remains, and everything after it gets zero. Results keep
// priority order.
func AllocateToGoals(goals []model.Goal, monthlySavings float64, asOf time.Time) []GoalAllocation {
	ordered := make([]model.Goal, len(goals))
	copy(ordered, goals)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	available := math.Max(0, monthlySavings)
	allocations := make([]GoalAllocation, 0, len(ordered))
	for _, goal := range ordered {
		alloc := GoalAllocation{GoalID: goal.ID, Name: goal.Name, Priority: goal.Priority}
		if goal.CurrentSaved >= goal.TargetAmount {
			alloc.Status = GoalAchieved
			allocations = append(allocations, alloc)
			continue
		}

		alloc.RequiredMonthly = stats.RoundToCent(requiredMonthly(goal, asOf))
		alloc.Allocated = stats.RoundToCent(math.Min(alloc.RequiredMonthly, available))
		available -= alloc.Allocated

		if projected, ok := ProjectCompletion(goal, alloc.Allocated, asOf); ok {
			alloc.ProjectedCompletion = &projected
		}
		alloc.Status = goalStatus(goal, alloc.ProjectedCompletion, asOf)
		allocations = append(allocations, alloc)
	}
	return allocations
}

// requiredMonthly is the remaining amount spread over the months left until
// the target date, with a floor of one month.
func requiredMonthly(goal model.Goal, asOf time.Time) float64 {
	remaining := goal.TargetAmount - goal.CurrentSaved
	months := model.MonthKeyOf(asOf).MonthsUntil(model.MonthKeyOf(goal.TargetDate))
	if months < 1 {
		months = 1
	}
	return remaining / float64(months)
}

// ProjectCompletion estimates when a goal completes at the given monthly
// contribution. The second return is false when the contribution is zero or
// negative, since no completion date can be projected.
func ProjectCompletion(goal model.Goal, monthlyContribution float64, asOf time.Time) (time.Time, bool) {
	remaining := goal.TargetAmount - goal.CurrentSaved
	if remaining <= 0 {
		return asOf, true
	}
	if monthlyContribution <= 0 {
		return time.Time{}, false
	}
	months := int(math.Ceil(remaining / monthlyContribution))
	return asOf.AddDate(0, months, 0), true
}

func goalStatus(goal model.Goal, projected *time.Time, asOf time.Time) GoalStatus {
	if goal.CurrentSaved >= goal.TargetAmount {
		return GoalAchieved
	}
	if goal.TargetDate.Before(asOf) {
		return GoalOverdue
	}
	if projected != nil && !projected.After(goal.TargetDate) {
		return GoalOnTrack
	}
	return GoalOffTrack
}
