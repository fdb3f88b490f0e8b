// Package selector implements the CSS selector subset the engine resolves:
// bare tag names, #id, .class (including compound .a.b), and
// [attr] / [attr="value"] attribute tests. Anything beyond the subset is
// reported as unsupported and matches nothing.
package selector

import (
	"strings"
)

// AttrTest is one [attr] or [attr="value"] clause of a compound selector.
type AttrTest struct {
	Name  string
	Value string
	// HasValue distinguishes [attr="value"] from bare [attr].
	HasValue bool
}

// Compound is a parsed simple-selector sequence: an optional tag name
// followed by any mix of ID, class and attribute tests, optionally ending
// in a single pseudo-class. Combinators are outside the supported subset.
type Compound struct {
	Tag     string
	ID      string
	Classes []string
	Attrs   []AttrTest
	Pseudo  string
}

// Element is the view of a DOM node that matching needs. Attribute names
// are expected to be matched case-insensitively by the implementation.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
}

// Parse parses a compound selector. ok is false when the selector uses
// syntax outside the supported subset (combinators, universal selector,
// selector lists, pseudo-elements); callers are expected to fail open and
// treat not-ok as "matches nothing".
func Parse(s string) (Compound, bool) {
	var c Compound
	s = strings.TrimSpace(s)
	if s == "" {
		return c, false
	}
	// Whitespace or a comma inside the selector means a combinator or a
	// selector list, both outside the subset.
	if strings.ContainsAny(s, " \t\n,>+~*") {
		return c, false
	}

	i := 0
	// Optional leading tag name.
	if isNameStart(s[0]) {
		j := i
		for j < len(s) && isNameChar(s[j]) {
			j++
		}
		c.Tag = strings.ToLower(s[i:j])
		i = j
	}

	for i < len(s) {
		switch s[i] {
		case '#':
			j := i + 1
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			if j == i+1 || c.ID != "" {
				return Compound{}, false
			}
			c.ID = s[i+1 : j]
			i = j
		case '.':
			j := i + 1
			for j < len(s) && isNameChar(s[j]) {
				j++
			}
			if j == i+1 {
				return Compound{}, false
			}
			c.Classes = append(c.Classes, s[i+1:j])
			i = j
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return Compound{}, false
			}
			test, ok := parseAttrTest(s[i+1 : i+end])
			if !ok {
				return Compound{}, false
			}
			c.Attrs = append(c.Attrs, test)
			i += end + 1
		case ':':
			// "::" pseudo-elements are unsupported; a trailing single
			// pseudo-class is recorded so stylesheet rules can keep it.
			if i+1 < len(s) && s[i+1] == ':' {
				return Compound{}, false
			}
			rest := s[i+1:]
			if rest == "" || !isPseudoName(rest) {
				return Compound{}, false
			}
			c.Pseudo = strings.ToLower(rest)
			i = len(s)
		default:
			return Compound{}, false
		}
	}
	return c, true
}

func parseAttrTest(body string) (AttrTest, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return AttrTest{}, false
	}
	eq := strings.IndexByte(body, '=')
	if eq < 0 {
		if !isName(body) {
			return AttrTest{}, false
		}
		return AttrTest{Name: strings.ToLower(body)}, true
	}
	name := strings.TrimSpace(body[:eq])
	value := strings.TrimSpace(body[eq+1:])
	if !isName(name) {
		return AttrTest{}, false
	}
	value = strings.Trim(value, `"'`)
	return AttrTest{Name: strings.ToLower(name), Value: value, HasValue: true}, true
}

// Matches reports whether the compound selector matches the element.
// The pseudo-class, if any, is ignored: structural matching only.
func (c Compound) Matches(e Element) bool {
	if c.Tag != "" && c.Tag != strings.ToLower(e.Tag()) {
		return false
	}
	if c.ID != "" {
		id, ok := e.Attr("id")
		if !ok || id != c.ID {
			return false
		}
	}
	if len(c.Classes) > 0 {
		raw, _ := e.Attr("class")
		have := map[string]bool{}
		for _, cls := range strings.Fields(raw) {
			have[cls] = true
		}
		for _, want := range c.Classes {
			if !have[want] {
				return false
			}
		}
	}
	for _, test := range c.Attrs {
		v, ok := e.Attr(test.Name)
		if !ok {
			return false
		}
		if test.HasValue && v != test.Value {
			return false
		}
	}
	return true
}

// Match parses sel and matches it against e in one step, failing open:
// unsupported syntax matches nothing.
func Match(sel string, e Element) bool {
	c, ok := Parse(sel)
	if !ok {
		return false
	}
	return c.Matches(e)
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isNameStart(b) || b == '-' || (b >= '0' && b <= '9')
}

func isName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

// isPseudoName accepts functional pseudo-classes like :nth-child(2) as a
// single token so they can be stripped for structural matching.
func isPseudoName(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '(':
			depth++
		case s[i] == ')':
			depth--
			if depth < 0 {
				return false
			}
		case depth == 0 && !isNameChar(s[i]):
			return false
		}
	}
	return depth == 0
}
