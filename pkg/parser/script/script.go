// Package script extracts behavior graphs from JavaScript and
// TypeScript sources using tree-sitter. Selector synthesis is
// best-effort and never throws: when no reasonable selector exists for
// a behavior, the record still ships with an empty selector.
package script

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser/fragment"
)

var keyboardEvents = map[string]bool{"keydown": true, "keypress": true, "keyup": true}

// jQuery event shortcut methods: $(sel).click(fn) and friends.
var jqueryEventMethods = map[string]bool{
	"click": true, "dblclick": true, "keydown": true, "keypress": true,
	"keyup": true, "focus": true, "blur": true, "change": true,
	"submit": true, "hover": true, "mousedown": true, "mouseup": true,
}

var domMutationMethods = map[string]bool{
	"appendChild": true, "removeChild": true, "insertBefore": true,
	"replaceChild": true, "insertAdjacentHTML": true, "remove": true,
}

// Parse extracts a behavior graph from one script source. The grammar
// follows the extension: .ts uses typescript, .tsx uses tsx, everything
// else plain javascript.
func Parse(sourceFile, src string) (*model.BehaviorGraph, error) {
	var lang *sitter.Language
	switch strings.ToLower(filepath.Ext(sourceFile)) {
	case ".ts", ".mts":
		lang = typescript.GetLanguage()
	case ".tsx":
		lang = tsx.GetLanguage()
	default:
		lang = javascript.GetLanguage()
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return nil, &fragment.FragmentError{SourceFile: sourceFile, Kind: fragment.KindScript, Reason: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if strings.TrimSpace(src) != "" && unparseable(root) {
		return nil, &fragment.FragmentError{
			SourceFile: sourceFile,
			Kind:       fragment.KindScript,
			Reason:     "no statements recognized",
		}
	}

	ex := &extractor{
		graph:      model.NewBehaviorGraph(sourceFile),
		src:        []byte(src),
		sourceFile: sourceFile,
		bindings:   map[string]model.ElementRef{},
	}
	ex.trackBindings(root)
	ex.walk(root)
	return ex.graph, nil
}

// unparseable reports a tree whose top level is nothing but ERROR nodes.
func unparseable(root *sitter.Node) bool {
	if root.Type() != "program" {
		return true
	}
	if root.NamedChildCount() == 0 {
		return !root.HasError()
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if root.NamedChild(i).Type() != "ERROR" {
			return false
		}
	}
	return true
}

type extractor struct {
	graph      *model.BehaviorGraph
	src        []byte
	sourceFile string
	// bindings maps variable names to the selector their initializer
	// looked up: const btn = document.getElementById('x').
	bindings map[string]model.ElementRef
}

// trackBindings records variable declarations and assignments whose
// right side is a DOM lookup, so later member calls on the variable can
// synthesize the selector.
func (ex *extractor) trackBindings(node *sitter.Node) {
	switch node.Type() {
	case "variable_declarator":
		name := node.ChildByFieldName("name")
		value := node.ChildByFieldName("value")
		if name != nil && value != nil && name.Type() == "identifier" {
			if ref, ok := ex.lookupSelector(value); ok {
				ref.Binding = name.Content(ex.src)
				ex.bindings[ref.Binding] = ref
			}
		}
	case "assignment_expression":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		if left != nil && right != nil && left.Type() == "identifier" {
			if ref, ok := ex.lookupSelector(right); ok {
				ref.Binding = left.Content(ex.src)
				ex.bindings[ref.Binding] = ref
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		ex.trackBindings(node.NamedChild(i))
	}
}

func (ex *extractor) walk(node *sitter.Node) {
	switch node.Type() {
	case "call_expression":
		ex.callExpression(node)
	case "assignment_expression":
		ex.assignment(node)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		ex.walk(node.NamedChild(i))
	}
}

func (ex *extractor) callExpression(node *sitter.Node) {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return
	}
	object := fn.ChildByFieldName("object")
	property := fn.ChildByFieldName("property")
	if object == nil || property == nil {
		return
	}
	method := property.Content(ex.src)
	args := node.ChildByFieldName("arguments")

	switch {
	case method == "addEventListener":
		event, _ := stringArg(args, 0, ex.src)
		ref := ex.refFor(object)
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionEventHandler,
			Ref:      ref,
			Event:    strings.ToLower(event),
			Location: ex.location(node),
		})

	case method == "on" && isJQueryCall(object, ex.src):
		event, _ := stringArg(args, 0, ex.src)
		ref := ex.refFor(object)
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionEventHandler,
			Ref:      ref,
			Event:    strings.ToLower(event),
			Metadata: map[string]string{"framework": "jquery"},
			Location: ex.location(node),
		})

	case jqueryEventMethods[method] && isJQueryCall(object, ex.src):
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionEventHandler,
			Ref:      ex.refFor(object),
			Event:    method,
			Metadata: map[string]string{"framework": "jquery"},
			Location: ex.location(node),
		})

	case method == "focus" || method == "blur":
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionFocusChange,
			Ref:      ex.refFor(object),
			Metadata: map[string]string{"call": method},
			Location: ex.location(node),
		})

	case method == "setAttribute":
		attr, ok := stringArg(args, 0, ex.src)
		if ok && strings.HasPrefix(strings.ToLower(attr), "aria-") {
			ex.add(&model.BehaviorRecord{
				Action:   model.ActionAriaStateChange,
				Ref:      ex.refFor(object),
				Metadata: map[string]string{"attribute": strings.ToLower(attr)},
				Location: ex.location(node),
			})
		}

	case domMutationMethods[method]:
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionDOMManipulation,
			Ref:      ex.refFor(object),
			Metadata: map[string]string{"call": method},
			Location: ex.location(node),
		})

	case (method == "add" || method == "remove" || method == "toggle") && isClassList(object, ex.src):
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionDOMManipulation,
			Ref:      ex.refFor(classListTarget(object)),
			Metadata: map[string]string{"call": "classList." + method},
			Location: ex.location(node),
		})

	case (method == "assign" || method == "replace") && isLocation(object, ex.src):
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionNavigation,
			Ref:      model.ElementRef{},
			Metadata: map[string]string{"call": "location." + method},
			Location: ex.location(node),
		})

	case (method == "pushState" || method == "replaceState") && endsWith(object, ex.src, "history"):
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionNavigation,
			Ref:      model.ElementRef{},
			Metadata: map[string]string{"call": "history." + method},
			Location: ex.location(node),
		})
	}
}

func (ex *extractor) assignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "member_expression" {
		return
	}
	object := left.ChildByFieldName("object")
	property := left.ChildByFieldName("property")
	if object == nil || property == nil {
		return
	}
	prop := property.Content(ex.src)

	switch {
	case strings.HasPrefix(prop, "on") && len(prop) > 2:
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionEventHandler,
			Ref:      ex.refFor(object),
			Event:    strings.ToLower(prop[2:]),
			Metadata: map[string]string{"assignment": "true"},
			Location: ex.location(node),
		})

	case prop == "innerHTML" || prop == "outerHTML" || prop == "textContent":
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionDOMManipulation,
			Ref:      ex.refFor(object),
			Metadata: map[string]string{"property": prop},
			Location: ex.location(node),
		})

	case prop == "href" && isLocation(object, ex.src):
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionNavigation,
			Ref:      model.ElementRef{},
			Metadata: map[string]string{"property": "location.href"},
			Location: ex.location(node),
		})

	case strings.HasPrefix(prop, "aria") && len(prop) > 4:
		ex.add(&model.BehaviorRecord{
			Action:   model.ActionAriaStateChange,
			Ref:      ex.refFor(object),
			Metadata: map[string]string{"attribute": "aria-" + strings.ToLower(prop[4:])},
			Location: ex.location(node),
		})
	}
}

// refFor synthesizes the selector descriptor for the expression a
// behavior targets. Falls back to an empty selector with the raw
// expression text as the binding label.
func (ex *extractor) refFor(object *sitter.Node) model.ElementRef {
	if ref, ok := ex.lookupSelector(object); ok {
		return ref
	}
	if object.Type() == "identifier" {
		name := object.Content(ex.src)
		if ref, ok := ex.bindings[name]; ok {
			return ref
		}
		return model.ElementRef{Binding: name}
	}
	return model.ElementRef{Binding: object.Content(ex.src)}
}

// lookupSelector recognizes DOM lookup calls and synthesizes a selector:
// getElementById('x') -> #x, querySelector(sel) -> sel, $(sel) -> sel,
// getElementsByClassName('c') -> .c, getElementsByTagName('t') -> t.
func (ex *extractor) lookupSelector(node *sitter.Node) (model.ElementRef, bool) {
	if node.Type() != "call_expression" {
		return model.ElementRef{}, false
	}
	fn := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")
	if fn == nil {
		return model.ElementRef{}, false
	}

	if fn.Type() == "identifier" {
		name := fn.Content(ex.src)
		if name == "$" || name == "jQuery" {
			sel, _ := stringArg(args, 0, ex.src)
			return model.ElementRef{Selector: sel, Binding: name + "(...)"}, true
		}
		return model.ElementRef{}, false
	}

	if fn.Type() != "member_expression" {
		return model.ElementRef{}, false
	}
	property := fn.ChildByFieldName("property")
	if property == nil {
		return model.ElementRef{}, false
	}
	arg, _ := stringArg(args, 0, ex.src)
	switch property.Content(ex.src) {
	case "getElementById":
		return model.ElementRef{Selector: "#" + arg, Binding: arg}, true
	case "querySelector", "querySelectorAll", "closest":
		return model.ElementRef{Selector: arg, Binding: arg}, true
	case "getElementsByClassName":
		return model.ElementRef{Selector: "." + arg, Binding: arg}, true
	case "getElementsByTagName":
		return model.ElementRef{Selector: strings.ToLower(arg), Binding: arg}, true
	}
	return model.ElementRef{}, false
}

func (ex *extractor) add(r *model.BehaviorRecord) {
	ex.graph.Add(r)
}

func (ex *extractor) location(node *sitter.Node) model.Location {
	point := node.StartPoint()
	return model.Location{
		File:   ex.sourceFile,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Length: int(node.EndByte() - node.StartByte()),
	}
}

// stringArg returns the n-th argument if it is a string literal,
// unquoted.
func stringArg(args *sitter.Node, n int, src []byte) (string, bool) {
	if args == nil {
		return "", false
	}
	idx := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if idx == n {
			if child.Type() == "string" || child.Type() == "template_string" {
				return strings.Trim(child.Content(src), "\"'`"), true
			}
			return "", false
		}
		idx++
	}
	return "", false
}

func isJQueryCall(node *sitter.Node, src []byte) bool {
	if node.Type() != "call_expression" {
		return false
	}
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" {
		return false
	}
	name := fn.Content(src)
	return name == "$" || name == "jQuery"
}

func isClassList(node *sitter.Node, src []byte) bool {
	if node.Type() != "member_expression" {
		return false
	}
	property := node.ChildByFieldName("property")
	return property != nil && property.Content(src) == "classList"
}

// classListTarget unwraps el.classList to el for selector synthesis.
func classListTarget(node *sitter.Node) *sitter.Node {
	if object := node.ChildByFieldName("object"); object != nil {
		return object
	}
	return node
}

func isLocation(node *sitter.Node, src []byte) bool {
	return endsWith(node, src, "location")
}

// endsWith reports whether the expression is the bare identifier name or
// a member chain ending in it (window.location, document.location).
func endsWith(node *sitter.Node, src []byte, name string) bool {
	switch node.Type() {
	case "identifier":
		return node.Content(src) == name
	case "member_expression":
		property := node.ChildByFieldName("property")
		return property != nil && property.Content(src) == name
	}
	return false
}
