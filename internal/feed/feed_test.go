package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomical/internal/model"
)

func testState() model.State {
	return model.State{
		Types: []model.Category{
			{ID: "burnable", Label: "燃やすごみ"},
			{ID: "nonburnable", Label: "燃やさないごみ"},
			{ID: "dormant", Label: "休止中"},
		},
		Rules: map[string]model.Rule{
			"burnable":    {Mode: model.ModeWeekly, Weekdays: []int{3}, Nth: []int{}},
			"nonburnable": {Mode: model.ModeNth, Weekdays: []int{1}, Nth: []int{1, 3}},
			"dormant":     {Mode: model.ModeOff, Weekdays: []int{2}, Nth: []int{}},
		},
	}
}

func TestBuild(t *testing.T) {
	from := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) // Wednesday
	out, err := Build(testState(), from)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "METHOD:PUBLISH")

	// One VEVENT per active category; the off rule is left out.
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "燃やすごみ")
	assert.Contains(t, out, "燃やさないごみ")
	assert.NotContains(t, out, "休止中")

	// Weekly Wednesday starts on the first Wednesday at or after `from`.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250101")
	assert.Contains(t, out, "FREQ=WEEKLY")

	// 1st/3rd Monday starts on 2025-01-06, the first Monday of January.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250106")
	assert.Contains(t, out, "FREQ=MONTHLY")
}

func TestBuildEmptyWhenNothingActive(t *testing.T) {
	state := model.State{
		Types: []model.Category{{ID: "a", Label: "A"}},
		Rules: map[string]model.Rule{
			"a": {Mode: model.ModeWeekly, Weekdays: []int{}},
		},
	}

	out, err := Build(state, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, strings.Count(out, "BEGIN:VEVENT"))
}

func TestRecurrenceString(t *testing.T) {
	tests := []struct {
		name     string
		rule     model.Rule
		contains []string
	}{
		{
			name:     "weekly single day",
			rule:     model.Rule{Mode: model.ModeWeekly, Weekdays: []int{3}},
			contains: []string{"FREQ=WEEKLY", "BYDAY=WE"},
		},
		{
			name:     "weekly multiple days",
			rule:     model.Rule{Mode: model.ModeWeekly, Weekdays: []int{3, 6}},
			contains: []string{"FREQ=WEEKLY", "WE", "SA"},
		},
		{
			name:     "nth mondays",
			rule:     model.Rule{Mode: model.ModeNth, Weekdays: []int{1}, Nth: []int{1, 3}},
			contains: []string{"FREQ=MONTHLY", "1MO", "3MO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := recurrenceString(tt.rule)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestRecurrenceStringOffRuleFails(t *testing.T) {
	_, err := recurrenceString(model.Rule{Mode: model.ModeOff})
	assert.Error(t, err)
}

func TestFirstOccurrenceSkipsImpossibleRules(t *testing.T) {
	// 5th Saturday rules fire in some months, so an occurrence is found.
	rule := model.Rule{Mode: model.ModeNth, Weekdays: []int{6}, Nth: []int{5}}
	start, ok := firstOccurrence(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), rule)
	require.True(t, ok)
	assert.Equal(t, time.Saturday, start.Weekday())
	assert.GreaterOrEqual(t, start.Day(), 29)
}
