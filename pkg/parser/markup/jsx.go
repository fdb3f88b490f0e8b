package markup

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser/fragment"
)

// parseJSX extracts the JSX element trees a component file produces.
// Every JSX element found anywhere in the file (return expressions,
// variable initializers, fragment children) becomes an element node;
// nested components keep their capitalized tag name.
func parseJSX(sourceFile, src string) (*model.ElementGraph, error) {
	lang := javascript.GetLanguage()
	if strings.EqualFold(filepath.Ext(sourceFile), ".tsx") {
		lang = tsx.GetLanguage()
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, &fragment.FragmentError{SourceFile: sourceFile, Kind: fragment.KindMarkup, Reason: err.Error()}
	}
	defer tree.Close()

	graph := model.NewElementGraph(sourceFile)
	data := []byte(src)
	collectJSX(graph, graph.Root, tree.RootNode(), data, sourceFile)

	if len(graph.AllElements()) == 0 && strings.TrimSpace(src) != "" {
		return nil, &fragment.FragmentError{
			SourceFile: sourceFile,
			Kind:       fragment.KindMarkup,
			Reason:     "no JSX elements recognized",
		}
	}
	return graph, nil
}

// collectJSX scans for top-level JSX subtrees and converts each one,
// without descending into a subtree twice.
func collectJSX(graph *model.ElementGraph, parent *model.Element, node *sitter.Node, src []byte, sourceFile string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "jsx_element", "jsx_self_closing_element":
			if elem := convertJSXElement(graph, child, src, sourceFile); elem != nil {
				graph.Append(parent, elem)
			}
		default:
			collectJSX(graph, parent, child, src, sourceFile)
		}
	}
}

func convertJSXElement(graph *model.ElementGraph, node *sitter.Node, src []byte, sourceFile string) *model.Element {
	elem := graph.NewNode(model.NodeElement)
	elem.Location = location(node, sourceFile)

	var opening *sitter.Node
	if node.Type() == "jsx_self_closing_element" {
		opening = node
	} else {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child.Type() == "jsx_opening_element" {
				opening = child
				break
			}
		}
	}
	if opening == nil {
		return nil
	}

	for i := 0; i < int(opening.NamedChildCount()); i++ {
		child := opening.NamedChild(i)
		switch child.Type() {
		case "identifier", "member_expression", "nested_identifier":
			elem.TagName = strings.ToLower(child.Content(src))
		case "jsx_attribute":
			name, value := jsxAttribute(child, src)
			if name != "" {
				// SetAttr lowercases, which folds onClick to onclick for
				// the merge's inline-handler lifting.
				elem.SetAttr(name, value)
			}
		}
	}
	if elem.TagName == "" {
		return nil
	}

	if node.Type() == "jsx_element" {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "jsx_element", "jsx_self_closing_element":
				if nested := convertJSXElement(graph, child, src, sourceFile); nested != nil {
					graph.Append(elem, nested)
				}
			case "jsx_text":
				if text := strings.TrimSpace(child.Content(src)); text != "" {
					t := graph.NewNode(model.NodeText)
					t.Text = text
					t.Location = location(child, sourceFile)
					graph.Append(elem, t)
				}
			case "jsx_expression":
				// Expression children may hide more JSX (conditionals,
				// maps); convert anything found directly under elem.
				collectJSX(graph, elem, child, src, sourceFile)
			}
		}
	}
	return elem
}

// jsxDOMNames maps JSX's JavaScript-flavored attribute names back to
// the HTML attributes they render as. Without this, className would
// never surface as class and class selectors could not resolve onto
// component elements.
var jsxDOMNames = map[string]string{
	"classname": "class",
	"htmlfor":   "for",
}

func jsxAttribute(node *sitter.Node, src []byte) (name, value string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "property_identifier":
			name = child.Content(src)
		case "string":
			value = strings.Trim(child.Content(src), `"'`)
		case "jsx_expression":
			value = child.Content(src)
		}
	}
	if html, ok := jsxDOMNames[strings.ToLower(name)]; ok {
		name = html
	}
	return name, value
}
