// Package feed builds an iCalendar subscription feed of collection days, so
// the schedule can be subscribed to from a phone calendar app. Each active
// category becomes one recurring all-day VEVENT series.
package feed

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"gomical/internal/model"
	"gomical/internal/rules"
)

const (
	productID = "-//gomical//Garbage Calendar//JA"
	uidDomain = "gomical.local"

	// How far ahead to look for a rule's first occurrence. A rule that never
	// fires inside this window (e.g. 5th Friday only) is left out of the feed.
	firstOccurrenceWindowDays = 400
)

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// Build serializes the collection schedule as an iCalendar document.
// Recurrence starts from the first matching date at or after `from`.
func Build(state model.State, from time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("ごみ収集カレンダー")
	cal.SetCalscale("GREGORIAN")

	for _, cat := range state.Types {
		rule := state.Rule(cat.ID)
		if !rule.Active() {
			continue
		}

		start, ok := firstOccurrence(from, rule)
		if !ok {
			continue
		}

		rruleValue, err := recurrenceString(rule)
		if err != nil {
			return "", fmt.Errorf("feed: category %s: %w", cat.ID, err)
		}

		ev := cal.AddEvent(fmt.Sprintf("%s@%s", cat.ID, uidDomain))
		ev.SetDtStampTime(time.Now().UTC())
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		ev.SetSummary(cat.Label)
		ev.AddRrule(rruleValue)
	}

	return cal.Serialize(), nil
}

// recurrenceString converts a rule to an RFC 5545 RRULE value, validated
// through rrule-go. Weekly rules map to FREQ=WEEKLY;BYDAY=..., nth rules to
// FREQ=MONTHLY with ordinal BYDAY entries (e.g. 1MO,3MO).
func recurrenceString(rule model.Rule) (string, error) {
	var opt rrule.ROption

	switch rule.Mode {
	case model.ModeWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range rule.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case model.ModeNth:
		opt.Freq = rrule.MONTHLY
		for _, d := range rule.Weekdays {
			for _, n := range rule.Nth {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d].Nth(n))
			}
		}
	default:
		return "", fmt.Errorf("mode %q has no recurrence", rule.Mode)
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("invalid recurrence: %w", err)
	}
	return opt.RRuleString(), nil
}

func firstOccurrence(from time.Time, rule model.Rule) (time.Time, bool) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < firstOccurrenceWindowDays; i++ {
		if rules.Matches(day, rule) {
			return day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}
