package web

import (
	"fmt"
	"strings"
	"time"

	"gomical/internal/calendar"
	"gomical/internal/model"
	"gomical/internal/rules"
)

var weekdayKanji = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// DayCell is one rendered day of the month grid.
type DayCell struct {
	Day     int
	Date    string // YYYY-MM-DD
	Weekday int    // 0=Sunday
	IsToday bool
	Holiday string
	Labels  []model.Category
}

// Banner is the "tomorrow" reminder shown above the grid when anything is
// collected the next day.
type Banner struct {
	DateLabel string // e.g. "3月4日"
	Labels    string // category labels joined with ・
}

// WeekdayToggle is one weekday button in the settings panel.
type WeekdayToggle struct {
	Day  int
	Name string
	On   bool
}

// NthToggle is one ordinal-week button in the settings panel.
type NthToggle struct {
	N  int
	On bool
}

// SettingRow is one category's entry in the settings panel.
type SettingRow struct {
	Cat      model.Category
	Rule     model.Rule
	Weekdays []WeekdayToggle
	Nths     []NthToggle
	Disabled bool // rule can never match as configured
}

// MonthView is everything the calendar and print templates need for one
// month.
type MonthView struct {
	Year     int
	MonthNum int
	Title    string
	Lead     []int // one entry per leading blank cell
	Trail    []int // one entry per trailing blank cell
	Cells    []DayCell
	Legend   []model.Category
	Banner   *Banner
	Weekdays []string
	Settings []SettingRow

	PrevYear, PrevMonth int
	NextYear, NextMonth int
}

// DayDetail is the day-detail payload for /api/day.
type DayDetail struct {
	Date       string           `json:"date"`
	Label      string           `json:"label"`
	Weekday    string           `json:"weekday"`
	Nth        int              `json:"nth"`
	Holiday    string           `json:"holiday,omitempty"`
	Categories []model.Category `json:"categories"`
}

type holidayLookup interface {
	Lookup(t time.Time) (string, bool)
}

func (s *Server) buildMonthView(m calendar.Month, withBanner bool) MonthView {
	state := s.store.Snapshot()
	today := calendar.Today(s.loc)

	view := MonthView{
		Year:     m.Year,
		MonthNum: m.MonthNum,
		Title:    fmt.Sprintf("%d年 %d月", m.Year, m.MonthNum),
		Lead:     make([]int, m.LeadingBlanks()),
		Trail:    make([]int, m.TrailingBlanks()),
		Legend:   state.Types,
		Weekdays: weekdayKanji[:],
	}

	prev, next := m.Prev(), m.Next()
	view.PrevYear, view.PrevMonth = prev.Year, prev.MonthNum
	view.NextYear, view.NextMonth = next.Year, next.MonthNum

	for _, day := range m.Days() {
		cell := DayCell{
			Day:     day.Day(),
			Date:    calendar.DateKey(day),
			Weekday: int(day.Weekday()),
			IsToday: calendar.DateKey(day) == calendar.DateKey(today),
			Labels:  rules.CategoriesOn(state, day),
		}
		if name, ok := s.holidays.Lookup(day); ok {
			cell.Holiday = name
		}
		view.Cells = append(view.Cells, cell)
	}

	if withBanner {
		view.Banner = s.buildBanner(state)
		view.Settings = buildSettings(state)
	}
	return view
}

func buildSettings(state model.State) []SettingRow {
	rows := make([]SettingRow, 0, len(state.Types))
	for _, c := range state.Types {
		rule := state.Rule(c.ID)
		row := SettingRow{Cat: c, Rule: rule, Disabled: !rule.Active()}
		for d := 0; d < 7; d++ {
			row.Weekdays = append(row.Weekdays, WeekdayToggle{Day: d, Name: weekdayKanji[d], On: rule.HasWeekday(d)})
		}
		for n := 1; n <= 5; n++ {
			row.Nths = append(row.Nths, NthToggle{N: n, On: rule.HasNth(n)})
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Server) buildBanner(state model.State) *Banner {
	tomorrow := calendar.Tomorrow(s.loc)
	list := rules.CategoriesOn(state, tomorrow)
	if len(list) == 0 {
		return nil
	}

	labels := make([]string, 0, len(list))
	for _, c := range list {
		labels = append(labels, c.Label)
	}
	return &Banner{
		DateLabel: fmt.Sprintf("%d月%d日", int(tomorrow.Month()), tomorrow.Day()),
		Labels:    strings.Join(labels, "・"),
	}
}

func (s *Server) buildDayDetail(day time.Time) DayDetail {
	state := s.store.Snapshot()

	detail := DayDetail{
		Date:       calendar.DateKey(day),
		Label:      fmt.Sprintf("%d年%d月%d日 (%s)", day.Year(), int(day.Month()), day.Day(), weekdayKanji[int(day.Weekday())]),
		Weekday:    weekdayKanji[int(day.Weekday())],
		Nth:        rules.NthOfMonth(day),
		Categories: rules.CategoriesOn(state, day),
	}
	if name, ok := s.holidays.Lookup(day); ok {
		detail.Holiday = name
	}
	return detail
}
