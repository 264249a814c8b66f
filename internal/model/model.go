package model

// Mode selects how a recurrence rule picks collection days.
type Mode string

const (
	// ModeOff disables collection for the category.
	ModeOff Mode = "off"
	// ModeWeekly collects on every matching weekday.
	ModeWeekly Mode = "weekly"
	// ModeNth collects only on selected ordinal weekdays of the month
	// (e.g. 1st and 3rd Monday).
	ModeNth Mode = "nth"
)

// Category is one kind of collected waste with its display identity.
// ID and Label are fixed at creation; there is no rename.
type Category struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	BgColor   string `json:"bgColor"`
	TextColor string `json:"textColor"`
	Icon      string `json:"icon"`
}

// Rule is the per-category recurrence policy.
//
// Weekdays holds weekday numbers 0-6 with Sunday=0. Nth holds ordinal
// occurrences 1-5 and is only meaningful when Mode == ModeNth.
type Rule struct {
	Mode     Mode  `json:"mode"`
	Weekdays []int `json:"weekdays"`
	Nth      []int `json:"nth"`
}

// OffRule returns a fresh disabled rule.
func OffRule() Rule {
	return Rule{Mode: ModeOff, Weekdays: []int{}, Nth: []int{}}
}

// HasWeekday reports whether d (0-6, Sunday=0) is selected.
func (r Rule) HasWeekday(d int) bool {
	return containsInt(r.Weekdays, d)
}

// HasNth reports whether ordinal n (1-5) is selected.
func (r Rule) HasNth(n int) bool {
	return containsInt(r.Nth, n)
}

// Active reports whether the rule can ever match a date.
func (r Rule) Active() bool {
	if r.Mode == ModeOff || len(r.Weekdays) == 0 {
		return false
	}
	if r.Mode == ModeNth && len(r.Nth) == 0 {
		return false
	}
	return r.Mode == ModeWeekly || r.Mode == ModeNth
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	out := r
	out.Weekdays = append([]int{}, r.Weekdays...)
	out.Nth = append([]int{}, r.Nth...)
	return out
}

// State is the complete persisted application state: the ordered category
// list plus one rule per category id. This is exactly the stored JSON shape.
type State struct {
	Types []Category      `json:"types"`
	Rules map[string]Rule `json:"rules"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Types: append([]Category{}, s.Types...),
		Rules: make(map[string]Rule, len(s.Rules)),
	}
	for id, r := range s.Rules {
		out.Rules[id] = r.Clone()
	}
	return out
}

// Category returns the category with the given id, if present.
func (s State) Category(id string) (Category, bool) {
	for _, c := range s.Types {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// HasID reports whether a category with the given id exists.
func (s State) HasID(id string) bool {
	_, ok := s.Category(id)
	return ok
}

// Rule returns the rule for id, falling back to a disabled rule so every
// category always evaluates against something.
func (s State) Rule(id string) Rule {
	if r, ok := s.Rules[id]; ok {
		return r
	}
	return OffRule()
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
