package parser

import (
	"context"

	"github.com/weavelint/weavelint/pkg/cache"
	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser/markup"
	"github.com/weavelint/weavelint/pkg/parser/script"
	"github.com/weavelint/weavelint/pkg/parser/stylesheet"
)

// Builder assembles a document graph from a source collection. The
// optional fragment cache lets repeated builds skip re-parsing unchanged
// sources; the merge itself always runs fresh.
type Builder struct {
	Cache *cache.Cache
}

// Build parses every contributed source into its fragment type(s),
// contributes them to a new document graph for the scope and merges it.
//
// A parse failure on one fragment never aborts the others: the fragment
// is dropped and a warning recorded on the graph. Cancellation is
// cooperative and checked between fragments, never mid-fragment; a
// cancelled build discards its partial graph and returns ctx.Err()
// without ever publishing partial results.
func (b *Builder) Build(ctx context.Context, col *model.SourceCollection, scope model.Scope) (*document.Graph, error) {
	doc := document.New(scope)

	type markupSource struct{ name, text string }
	markups := make([]markupSource, 0, 1+len(col.Markup))
	if col.HTML != "" {
		name := col.SourceFiles.HTML
		if name == "" {
			name = "inline.html"
		}
		markups = append(markups, markupSource{name, col.HTML})
	}
	for i, text := range col.Markup {
		name := positional(col.SourceFiles.Markup, i, "inline.html")
		markups = append(markups, markupSource{name, text})
	}

	for _, m := range markups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if frag, ok := b.parseMarkup(doc, m.name, m.text); ok {
			doc.AddFragment(frag)
		}
	}

	for i, text := range col.JavaScript {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := positional(col.SourceFiles.JavaScript, i, "inline.js")
		kinds := Detect(name)
		if kinds == nil {
			kinds = []Kind{KindScript}
		}
		for _, kind := range kinds {
			switch kind {
			case KindMarkup:
				// JSX/TSX component files contribute an element graph too.
				if frag, ok := b.parseMarkup(doc, name, text); ok {
					doc.AddFragment(frag)
				}
			case KindScript:
				if bg, ok := b.parseScript(doc, name, text); ok {
					doc.AddBehaviors(bg)
				}
			}
		}
	}

	for i, text := range col.CSS {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := positional(col.SourceFiles.CSS, i, "inline.css")
		if sg, ok := b.parseStylesheet(doc, name, text); ok {
			doc.AddStyles(sg)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc.Merge()
	return doc, nil
}

func (b *Builder) parseMarkup(doc *document.Graph, name, text string) (*model.ElementGraph, bool) {
	var key uint64
	if b.Cache != nil {
		key = cache.Key("markup", text)
		if frag, ok := b.Cache.Elements(key); ok {
			return frag, true
		}
	}
	frag, err := markup.Parse(name, text)
	if err != nil {
		doc.AddWarning(name, err.Error())
		return nil, false
	}
	if b.Cache != nil {
		b.Cache.StoreElements(key, frag)
		// The cached copy stays pristine; the build gets its own clone.
		frag = frag.Clone()
	}
	return frag, true
}

func (b *Builder) parseScript(doc *document.Graph, name, text string) (*model.BehaviorGraph, bool) {
	var key uint64
	if b.Cache != nil {
		key = cache.Key("script", text)
		if bg, ok := b.Cache.Behaviors(key); ok {
			return bg, true
		}
	}
	bg, err := script.Parse(name, text)
	if err != nil {
		doc.AddWarning(name, err.Error())
		return nil, false
	}
	if b.Cache != nil {
		b.Cache.StoreBehaviors(key, bg)
	}
	return bg, true
}

func (b *Builder) parseStylesheet(doc *document.Graph, name, text string) (*model.StyleGraph, bool) {
	var key uint64
	if b.Cache != nil {
		key = cache.Key("stylesheet", text)
		if sg, ok := b.Cache.Styles(key); ok {
			return sg, true
		}
	}
	sg, err := stylesheet.Parse(name, text)
	if err != nil {
		doc.AddWarning(name, err.Error())
		return nil, false
	}
	if b.Cache != nil {
		b.Cache.StoreStyles(key, sg)
	}
	return sg, true
}

func positional(names []string, i int, fallback string) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fallback
}
