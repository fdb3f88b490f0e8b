// Package parser maps source files to the fragment kinds they
// contribute and assembles document graphs from a source collection.
// The per-dialect parsers live in the markup, script and stylesheet
// subpackages; the shared fragment vocabulary lives in the fragment
// subpackage so the dialect parsers need no import back into this one.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/weavelint/weavelint/pkg/parser/fragment"
)

// Kind is one fragment type a source file can contribute.
type Kind = fragment.Kind

const (
	KindMarkup     = fragment.KindMarkup
	KindScript     = fragment.KindScript
	KindStylesheet = fragment.KindStylesheet
)

// FragmentError is a recoverable per-fragment parse failure.
type FragmentError = fragment.FragmentError

// Detect maps a file name to the fragment kinds it contributes. JSX and
// TSX component files contribute both an element graph and a behavior
// graph; unknown extensions are sniffed from content by the caller or
// contribute nothing.
func Detect(name string) []Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return []Kind{KindMarkup}
	case ".jsx", ".tsx":
		return []Kind{KindMarkup, KindScript}
	case ".svelte":
		return []Kind{KindMarkup}
	case ".js", ".mjs", ".cjs", ".ts", ".mts":
		return []Kind{KindScript}
	case ".css":
		return []Kind{KindStylesheet}
	default:
		return nil
	}
}
