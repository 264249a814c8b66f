// Package rules implements the recurrence evaluator: the pure functions that
// decide whether a category is collected on a given date.
package rules

import (
	"time"

	"gomical/internal/model"
)

// NthOfMonth returns the 1-based ordinal occurrence of t's weekday within its
// month: the 1st-7th are ordinal 1, the 8th-14th ordinal 2, and so on.
func NthOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// Matches reports whether rule selects the given date.
//
// A disabled rule never matches. Otherwise the date's weekday must be in the
// rule's weekday set; weekly mode needs nothing more, nth mode additionally
// requires the date's ordinal occurrence to be selected. Unknown modes never
// match.
func Matches(t time.Time, rule model.Rule) bool {
	if rule.Mode == model.ModeOff {
		return false
	}
	if !rule.HasWeekday(int(t.Weekday())) {
		return false
	}
	switch rule.Mode {
	case model.ModeWeekly:
		return true
	case model.ModeNth:
		return rule.HasNth(NthOfMonth(t))
	}
	return false
}

// CategoriesOn returns every category collected on the given date, preserving
// store order.
func CategoriesOn(s model.State, t time.Time) []model.Category {
	out := make([]model.Category, 0, len(s.Types))
	for _, c := range s.Types {
		if Matches(t, s.Rule(c.ID)) {
			out = append(out, c)
		}
	}
	return out
}
