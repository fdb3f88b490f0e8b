// Package markup parses HTML, JSX/TSX component files and Svelte
// templates into element graphs using tree-sitter grammars. Parsing is
// total: a source either yields a graph or a recoverable error, never a
// panic.
package markup

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/svelte"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser/fragment"
)

// Parse builds an element graph from one markup source, choosing the
// grammar by file extension: .jsx/.tsx use the JavaScript grammars,
// .svelte the Svelte grammar, everything else the HTML grammar.
func Parse(sourceFile, src string) (*model.ElementGraph, error) {
	switch strings.ToLower(filepath.Ext(sourceFile)) {
	case ".jsx", ".tsx":
		return parseJSX(sourceFile, src)
	case ".svelte":
		return parseWithGrammar(sourceFile, src, svelte.GetLanguage())
	default:
		return parseWithGrammar(sourceFile, src, html.GetLanguage())
	}
}

// parseWithGrammar handles HTML and Svelte; both grammars share the
// element/start_tag/attribute node shape.
func parseWithGrammar(sourceFile, src string, lang *sitter.Language) (*model.ElementGraph, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, &fragment.FragmentError{SourceFile: sourceFile, Kind: fragment.KindMarkup, Reason: err.Error()}
	}
	defer tree.Close()

	graph := model.NewElementGraph(sourceFile)
	data := []byte(src)
	walkDocument(graph, graph.Root, tree.RootNode(), data, sourceFile)

	if len(graph.AllElements()) == 0 && strings.TrimSpace(src) != "" {
		return nil, &fragment.FragmentError{
			SourceFile: sourceFile,
			Kind:       fragment.KindMarkup,
			Reason:     "no elements recognized",
		}
	}
	return graph, nil
}

func walkDocument(graph *model.ElementGraph, parent *model.Element, node *sitter.Node, src []byte, sourceFile string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "element", "script_element", "style_element":
			elem := elementFromNode(graph, child, src, sourceFile)
			if elem == nil {
				// Unrecognizable element shape; keep scanning inside it.
				walkDocument(graph, parent, child, src, sourceFile)
				continue
			}
			graph.Append(parent, elem)
			walkDocument(graph, elem, child, src, sourceFile)
		case "text", "raw_text":
			t := graph.NewNode(model.NodeText)
			t.Text = child.Content(src)
			t.Location = location(child, sourceFile)
			graph.Append(parent, t)
		case "comment":
			c := graph.NewNode(model.NodeComment)
			c.Text = strings.TrimSuffix(strings.TrimPrefix(child.Content(src), "<!--"), "-->")
			c.Location = location(child, sourceFile)
			graph.Append(parent, c)
		case "start_tag", "self_closing_tag", "end_tag":
			// Consumed by elementFromNode.
		default:
			walkDocument(graph, parent, child, src, sourceFile)
		}
	}
}

// elementFromNode extracts tag name and attributes from an element's
// start tag or self-closing tag.
func elementFromNode(graph *model.ElementGraph, node *sitter.Node, src []byte, sourceFile string) *model.Element {
	var tag *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if t := child.Type(); t == "start_tag" || t == "self_closing_tag" {
			tag = child
			break
		}
	}
	if tag == nil {
		return nil
	}

	elem := graph.NewNode(model.NodeElement)
	elem.Location = location(node, sourceFile)
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		child := tag.NamedChild(i)
		switch child.Type() {
		case "tag_name":
			elem.TagName = strings.ToLower(child.Content(src))
		case "attribute":
			name, value := attributeFromNode(child, src)
			if name != "" {
				elem.SetAttr(normalizeEventAttr(name), value)
			}
		}
	}
	if elem.TagName == "" {
		return nil
	}
	return elem
}

func attributeFromNode(node *sitter.Node, src []byte) (name, value string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "attribute_name":
			name = child.Content(src)
		case "quoted_attribute_value":
			value = strings.Trim(child.Content(src), `"'`)
		case "attribute_value":
			value = child.Content(src)
		case "expression":
			// Svelte attribute expression; keep the raw text.
			value = child.Content(src)
		}
	}
	return name, value
}

// normalizeEventAttr maps framework event-binding forms onto the plain
// inline-handler shape the merge lifts: Svelte's on:click and JSX's
// onClick both become onclick. Modifiers (on:click|once) are dropped.
func normalizeEventAttr(name string) string {
	if strings.HasPrefix(name, "on:") {
		event := name[len("on:"):]
		if i := strings.IndexByte(event, '|'); i >= 0 {
			event = event[:i]
		}
		return "on" + strings.ToLower(event)
	}
	return name
}

func location(node *sitter.Node, sourceFile string) model.Location {
	point := node.StartPoint()
	return model.Location{
		File:   sourceFile,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Length: int(node.EndByte() - node.StartByte()),
	}
}
