package selector

// Specificity is the CSS cascade tie-break tuple:
// (inline, id-count, class/attr-count, tag-count).
type Specificity [4]int

// Inline is the specificity of a style="" attribute rule.
var Inline = Specificity{1, 0, 0, 0}

// Compare returns -1, 0 or 1 comparing s against o position by position.
func (s Specificity) Compare(o Specificity) int {
	for i := range s {
		if s[i] != o[i] {
			if s[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Compute counts specificity components lexically so that selectors beyond
// the matching subset (descendant chains, pseudo-elements) still get a
// usable tuple for cascade ordering.
func Compute(sel string) Specificity {
	var sp Specificity
	i := 0
	for i < len(sel) {
		switch sel[i] {
		case '#':
			sp[1]++
			i = skipName(sel, i+1)
		case '.':
			sp[2]++
			i = skipName(sel, i+1)
		case '[':
			sp[2]++
			for i < len(sel) && sel[i] != ']' {
				i++
			}
			i++
		case ':':
			// Pseudo-elements (::before) count as tags, pseudo-classes
			// as classes. :not() itself contributes nothing.
			if i+1 < len(sel) && sel[i+1] == ':' {
				sp[3]++
				i = skipName(sel, i+2)
			} else {
				j := skipName(sel, i+1)
				if sel[i+1:j] != "not" {
					sp[2]++
				}
				i = j
			}
		default:
			if isNameStart(sel[i]) {
				sp[3]++
				i = skipName(sel, i)
			} else {
				i++
			}
		}
	}
	return sp
}

func skipName(s string, i int) int {
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	return i
}
