package model

import (
	"fmt"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// FallbackID is used when slugification leaves nothing.
const FallbackID = "cat"

// Slugify derives a category id from a label: lowercase, runs of
// non-alphanumeric characters collapsed to single hyphens, leading and
// trailing hyphens trimmed. An empty result falls back to FallbackID.
func Slugify(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return FallbackID
	}
	return s
}

// UniqueID derives a slug from label that does not collide with any existing
// category id in s, appending -1, -2, ... until unique.
func UniqueID(s State, label string) string {
	base := Slugify(label)
	id := base
	for n := 1; s.HasID(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}
