// Package fragment holds the fragment vocabulary shared by the parser
// registry and the per-dialect parsers: the fragment kinds a source can
// contribute and the recoverable parse-failure error.
package fragment

import "fmt"

// Kind is one fragment type a source file can contribute.
type Kind int

const (
	KindMarkup Kind = iota
	KindScript
	KindStylesheet
)

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindScript:
		return "script"
	case KindStylesheet:
		return "stylesheet"
	default:
		return "unknown"
	}
}

// FragmentError is a recoverable per-fragment parse failure. The
// fragment is dropped from the merge with a recorded warning; the build
// carries on with the remaining fragments.
type FragmentError struct {
	SourceFile string
	Kind       Kind
	Reason     string
}

func (e *FragmentError) Error() string {
	return fmt.Sprintf("%s: cannot parse %s fragment: %s", e.SourceFile, e.Kind, e.Reason)
}
