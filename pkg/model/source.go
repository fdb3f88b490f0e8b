package model

// Scope is the breadth of one document build.
type Scope string

const (
	// ScopeFile analyzes a single source file in isolation.
	ScopeFile Scope = "file"
	// ScopePage analyzes an HTML entry point plus its linked resources.
	ScopePage Scope = "page"
	// ScopeWorkspace analyzes everything discoverable under a root.
	ScopeWorkspace Scope = "workspace"
)

// SourceFiles names the texts in a SourceCollection, positionally:
// JavaScript[i] in the collection came from SourceFiles.JavaScript[i],
// and likewise for CSS and Markup.
type SourceFiles struct {
	HTML       string   `json:"html,omitempty"`
	Markup     []string `json:"markup,omitempty"`
	JavaScript []string `json:"javascript,omitempty"`
	CSS        []string `json:"css,omitempty"`
}

// SourceCollection is one immutable snapshot of raw source texts fed to
// a document build. HTML is the primary markup document; Markup carries
// any additional markup documents (component files, extra pages) a
// page- or workspace-scope build discovered.
type SourceCollection struct {
	HTML        string      `json:"html,omitempty"`
	Markup      []string    `json:"markup,omitempty"`
	JavaScript  []string    `json:"javascript,omitempty"`
	CSS         []string    `json:"css,omitempty"`
	SourceFiles SourceFiles `json:"sourceFiles"`
}

// Empty reports whether the collection carries no source text at all.
func (c *SourceCollection) Empty() bool {
	return c.HTML == "" && len(c.Markup) == 0 && len(c.JavaScript) == 0 && len(c.CSS) == 0
}
