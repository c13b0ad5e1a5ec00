package usecase

import (
	"strconv"
	"strings"

	"watch-tracker/domain/model"
)

// DefaultGoalMinutes is the global goal used until the user sets one.
const DefaultGoalMinutes = 120

// GoalStore holds the global watch-time goal in minutes.
type GoalStore struct {
	minutes int
}

func NewGoalStore(minutes int) *GoalStore {
	if minutes <= 0 {
		minutes = DefaultGoalMinutes
	}
	return &GoalStore{minutes: minutes}
}

func (g *GoalStore) Get() int {
	return g.minutes
}

// Set replaces the global goal. Existing month buckets keep their own goal.
func (g *GoalStore) Set(minutes int) {
	g.minutes = minutes
}

// ParseGoalInput turns user text into a goal in minutes. Anything other than
// a positive integer is rejected with model.ErrInvalidGoal.
func ParseGoalInput(raw string) (int, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || minutes <= 0 {
		return 0, model.ErrInvalidGoal
	}
	return minutes, nil
}
