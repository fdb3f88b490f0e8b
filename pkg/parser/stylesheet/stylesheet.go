// Package stylesheet parses CSS into style graphs using the tree-sitter
// CSS grammar. Comma selector lists become one rule per selector, all
// sharing the declaration block; specificity tuples and the three
// accessibility flags are computed at parse time.
package stylesheet

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser/fragment"
)

// Parse builds a style graph from one CSS source.
func Parse(sourceFile, src string) (*model.StyleGraph, error) {
	p := sitter.NewParser()
	p.SetLanguage(css.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, &fragment.FragmentError{SourceFile: sourceFile, Kind: fragment.KindStylesheet, Reason: err.Error()}
	}
	defer tree.Close()

	graph := model.NewStyleGraph(sourceFile)
	data := []byte(src)
	collectRules(graph, tree.RootNode(), data, sourceFile)

	if len(graph.Rules) == 0 && strings.TrimSpace(src) != "" && tree.RootNode().HasError() {
		return nil, &fragment.FragmentError{
			SourceFile: sourceFile,
			Kind:       fragment.KindStylesheet,
			Reason:     "no rules recognized",
		}
	}
	return graph, nil
}

// collectRules walks the stylesheet, descending into media/supports
// blocks so conditional rules still contribute.
func collectRules(graph *model.StyleGraph, node *sitter.Node, src []byte, sourceFile string) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "rule_set":
			ruleSet(graph, child, src, sourceFile)
		case "media_statement", "supports_statement", "block":
			collectRules(graph, child, src, sourceFile)
		}
	}
}

func ruleSet(graph *model.StyleGraph, node *sitter.Node, src []byte, sourceFile string) {
	var selectors []string
	var block *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "selectors":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				sel := strings.TrimSpace(child.NamedChild(j).Content(src))
				if sel != "" {
					selectors = append(selectors, sel)
				}
			}
		case "block":
			block = child
		}
	}
	if block == nil || len(selectors) == 0 {
		return
	}

	props := declarations(block, src)
	if len(props) == 0 {
		return
	}
	point := node.StartPoint()
	loc := model.Location{
		File:   sourceFile,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Length: int(node.EndByte() - node.StartByte()),
	}
	for _, sel := range selectors {
		graph.Add(sel, props, loc)
	}
}

func declarations(block *sitter.Node, src []byte) map[string]string {
	props := make(map[string]string)
	for i := 0; i < int(block.NamedChildCount()); i++ {
		decl := block.NamedChild(i)
		if decl.Type() != "declaration" {
			continue
		}
		var name string
		var values []string
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			part := decl.NamedChild(j)
			switch part.Type() {
			case "property_name":
				name = strings.ToLower(part.Content(src))
			case "comment":
			default:
				values = append(values, part.Content(src))
			}
		}
		if name != "" {
			props[name] = strings.Join(values, " ")
		}
	}
	return props
}
