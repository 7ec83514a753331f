// Package palette normalizes clone colours and fills in colours for clones
// the input does not mention.
package palette

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidColour is returned for colours that are not at least six hex
// digits.
var ErrInvalidColour = errors.New("invalid colour")

// Default is the fallback palette, used in order for clones without an
// explicit colour.
var Default = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#aec7e8", "#ffbb78", "#98df8a", "#ff9896", "#c5b0d5",
	"#c49c94", "#f7b6d2", "#c7c7c7", "#dbdb8d", "#9edae5",
}

// CloneColour assigns a colour to a clone.
type CloneColour struct {
	CloneID string `json:"clone_id" toml:"clone_id" yaml:"clone_id" validate:"required"`
	Colour  string `json:"colour" toml:"colour" yaml:"colour" validate:"required"`
}

// Normalize converts a hex colour to "#rrggbb". A leading '#' is optional and
// anything after the sixth digit (typically an alpha channel) is dropped.
func Normalize(colour string) (string, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(colour), "#")
	if len(hex) < 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidColour, colour)
	}
	hex = hex[:6]
	for _, c := range hex {
		if !isHex(c) {
			return "", fmt.Errorf("%w: %q", ErrInvalidColour, colour)
		}
	}
	return "#" + strings.ToLower(hex), nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Map is a normalized clone → colour mapping.
type Map map[string]string

// FromList normalizes a list of clone colours. A clone listed twice keeps
// the later colour.
func FromList(list []CloneColour) (Map, error) {
	m := make(Map, len(list))
	for _, cc := range list {
		c, err := Normalize(cc.Colour)
		if err != nil {
			return nil, fmt.Errorf("clone %q: %w", cc.CloneID, err)
		}
		m[cc.CloneID] = c
	}
	return m, nil
}

// Assign gives every clone in clones that has no colour yet the next colour
// from the default palette, cycling when the palette runs out. Colours
// already used are skipped while unused ones remain. It returns the clones
// that were assigned.
func (m Map) Assign(clones []string) []string {
	used := make(map[string]bool, len(m))
	for _, c := range m {
		used[c] = true
	}

	var assigned []string
	next := 0
	for _, clone := range clones {
		if _, ok := m[clone]; ok {
			continue
		}
		for next < len(Default) && used[Default[next]] {
			next++
		}
		var colour string
		if next < len(Default) {
			colour = Default[next]
			next++
		} else {
			colour = Default[len(assigned)%len(Default)]
		}
		m[clone] = colour
		used[colour] = true
		assigned = append(assigned, clone)
	}
	return assigned
}

// List returns the mapping as clone colours ordered by clones. Clones with
// no colour are omitted.
func (m Map) List(clones []string) []CloneColour {
	out := make([]CloneColour, 0, len(clones))
	for _, clone := range clones {
		if c, ok := m[clone]; ok {
			out = append(out, CloneColour{CloneID: clone, Colour: c})
		}
	}
	return out
}
