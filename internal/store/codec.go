package store

import (
	"encoding/json"
	"strings"

	"gomical/internal/model"
)

// decodeState validates the stored JSON document against the expected shape
// and returns a well-formed state, or ok=false when the document is unusable
// and the caller should fall back to defaults.
//
// Recoverable gaps are repaired rather than rejected: a missing or empty
// category list falls back to the seeded categories, a missing rule table
// falls back to the seeded rules, and any category without a rule gets a
// disabled one synthesized so every category always has a rule at runtime.
func decodeState(data []byte) (model.State, bool) {
	var doc struct {
		Types []model.Category           `json:"types"`
		Rules map[string]json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.State{}, false
	}

	state := model.State{Types: doc.Types}
	if len(state.Types) == 0 {
		state = model.DefaultState()
		state.Rules = map[string]model.Rule{}
	}

	if doc.Rules == nil {
		state.Rules = model.DefaultState().Rules
	} else {
		if state.Rules == nil {
			state.Rules = make(map[string]model.Rule, len(doc.Rules))
		}
		for id, raw := range doc.Rules {
			var r model.Rule
			if err := json.Unmarshal(raw, &r); err != nil {
				// A single mangled rule does not poison the document.
				state.Rules[id] = model.OffRule()
				continue
			}
			state.Rules[id] = sanitizeRule(r)
		}
	}

	for _, c := range state.Types {
		if _, ok := state.Rules[c.ID]; !ok {
			state.Rules[c.ID] = model.OffRule()
		}
	}

	return state, true
}

func sanitizeRule(r model.Rule) model.Rule {
	if r.Weekdays == nil {
		r.Weekdays = []int{}
	}
	if r.Nth == nil {
		r.Nth = []int{}
	}
	return r
}

func marshalState(state model.State) ([]byte, error) {
	return json.MarshalIndent(state, "", "  ")
}

func trimLabel(label string) string {
	return strings.TrimSpace(label)
}
