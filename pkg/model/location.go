// Package model holds the three fragment graph types the engine merges:
// the Element Graph (markup structure), the Behavior Graph (extracted UI
// behaviors) and the Style Graph (stylesheet rules), plus the derived
// ElementContext view that analyzers consume.
package model

import "fmt"

// Location points into the source text a node was parsed from. It is
// diagnostic-only: never used for identity or equality.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length,omitempty"`
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}
