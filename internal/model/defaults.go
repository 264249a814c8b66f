package model

// PaletteEntry is one display color set from the fixed palette.
type PaletteEntry struct {
	Color     string
	BgColor   string
	TextColor string
}

// Palette is the fixed color palette assigned cyclically to new categories,
// indexed by the category count at the time of creation.
var Palette = []PaletteEntry{
	{BgColor: "#fee2e2", TextColor: "#991b1b", Color: "#ef4444"},
	{BgColor: "#fef3c7", TextColor: "#92400e", Color: "#f59e0b"},
	{BgColor: "#dbeafe", TextColor: "#1d4ed8", Color: "#3b82f6"},
	{BgColor: "#dcfce7", TextColor: "#166534", Color: "#22c55e"},
	{BgColor: "#e0e7ff", TextColor: "#3730a3", Color: "#6366f1"},
	{BgColor: "#fae8ff", TextColor: "#86198f", Color: "#e879f9"},
	{BgColor: "#f3e8ff", TextColor: "#6b21a8", Color: "#a855f7"},
	{BgColor: "#e0f2fe", TextColor: "#075985", Color: "#0ea5e9"},
}

// PaletteFor returns the palette entry for the n-th created category.
func PaletteFor(n int) PaletteEntry {
	return Palette[n%len(Palette)]
}

// DefaultIcon is assigned to user-created categories.
const DefaultIcon = "fa-trash-can"

func defaultTypes() []Category {
	return []Category{
		{ID: "burnable", Label: "燃やすごみ", Color: "#ef4444", BgColor: "#fee2e2", TextColor: "#991b1b", Icon: "fa-fire"},
		{ID: "nonburnable", Label: "燃やさないごみ", Color: "#374151", BgColor: "#f3f4f6", TextColor: "#374151", Icon: "fa-battery-full"},
		{ID: "plastic", Label: "プラスチック", Color: "#1d4ed8", BgColor: "#dbeafe", TextColor: "#1e40af", Icon: "fa-bottle-water"},
		{ID: "paper", Label: "古紙・びん・缶", Color: "#a16207", BgColor: "#fef9c3", TextColor: "#854d0e", Icon: "fa-newspaper"},
		{ID: "pet", Label: "ペットボトル", Color: "#15803d", BgColor: "#dcfce7", TextColor: "#166534", Icon: "fa-recycle"},
		{ID: "tray", Label: "食品トレイ", Color: "#4338ca", BgColor: "#e0e7ff", TextColor: "#3730a3", Icon: "fa-utensils"},
		{ID: "cloth", Label: "古布", Color: "#a21caf", BgColor: "#fae8ff", TextColor: "#86198f", Icon: "fa-shirt"},
	}
}

func defaultRules() map[string]Rule {
	return map[string]Rule{
		"burnable":    {Mode: ModeWeekly, Weekdays: []int{3, 6}, Nth: []int{}},
		"nonburnable": {Mode: ModeNth, Weekdays: []int{1}, Nth: []int{1, 3}},
		"plastic":     {Mode: ModeWeekly, Weekdays: []int{2}, Nth: []int{}},
		"paper":       {Mode: ModeNth, Weekdays: []int{2}, Nth: []int{2, 4}},
		"pet":         {Mode: ModeWeekly, Weekdays: []int{5}, Nth: []int{}},
		"tray":        {Mode: ModeWeekly, Weekdays: []int{5}, Nth: []int{}},
		"cloth":       {Mode: ModeWeekly, Weekdays: []int{5}, Nth: []int{}},
	}
}

// DefaultState returns a fresh copy of the seeded default state.
func DefaultState() State {
	return State{Types: defaultTypes(), Rules: defaultRules()}
}
