package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser"
)

// buildDoc runs the real parsers so analyzer tests see the same graphs
// production sees.
func buildDoc(t *testing.T, html string, js, css []string) *document.Graph {
	t.Helper()
	col := &model.SourceCollection{HTML: html, JavaScript: js, CSS: css}
	col.SourceFiles.HTML = "index.html"
	for range js {
		col.SourceFiles.JavaScript = append(col.SourceFiles.JavaScript, "app.js")
	}
	for range css {
		col.SourceFiles.CSS = append(col.SourceFiles.CSS, "styles.css")
	}
	b := parser.Builder{}
	doc, err := b.Build(context.Background(), col, model.ScopePage)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return doc
}

func findingsFor(findings []Finding, rule string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func TestClickWithoutKeyboard(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="fake" onclick="go()">Go</div>
  <div id="paired" onclick="go()" onkeydown="go()">Go</div>
  <button id="native" onclick="go()">Go</button>
</body></html>`, nil, nil)

	findings := clickWithoutKeyboard{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Selector != "#fake" {
		t.Errorf("Expected finding on #fake, got %q", f.Selector)
	}
	if f.Severity != SeverityError {
		t.Errorf("Expected error severity, got %s", f.Severity)
	}
	if f.Confidence == "" || f.ConfidenceReason == "" {
		t.Error("Findings must carry the graph's confidence annotation")
	}
}

func TestClickWithoutKeyboard_ScriptHandlers(t *testing.T) {
	doc := buildDoc(t, `<html><body><div id="card">Open</div></body></html>`,
		[]string{`document.getElementById('card').addEventListener('click', open);`}, nil)

	findings := clickWithoutKeyboard{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding for script-attached click, got %d", len(findings))
	}
}

func TestDeviceDependentHandler(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="drag" onmousedown="start()">Drag me</div>
  <div id="ok" onmousedown="start()" onkeydown="start()">Drag me</div>
</body></html>`, nil, nil)

	findings := deviceDependentHandler{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Selector != "#drag" {
		t.Errorf("Expected finding on #drag, got %q", findings[0].Selector)
	}
	if !strings.Contains(findings[0].Message, "mousedown") {
		t.Errorf("Message should name the event, got %q", findings[0].Message)
	}
}

func TestFocusableWithoutLabel(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <button id="bare"></button>
  <button id="texted">Save</button>
  <button id="labelled" aria-label="Close"></button>
  <div id="inert"></div>
</body></html>`, nil, nil)

	findings := focusableWithoutLabel{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Selector != "#bare" {
		t.Errorf("Expected finding on #bare, got %q", findings[0].Selector)
	}
}

func TestMissingAriaReference(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="panel" aria-labelledby="gone"></div>
  <div id="fine" aria-labelledby="title"></div>
  <h2 id="title">Here</h2>
</body></html>`, nil, nil)

	findings := missingAriaReference{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Message, `"gone"`) {
		t.Errorf("Message should name the missing id, got %q", findings[0].Message)
	}
}

func TestAriaReferenceCycle(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="a" aria-labelledby="b">x</div>
  <div id="b" aria-labelledby="a">y</div>
</body></html>`, nil, nil)

	findings := ariaReferenceCycle{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 cycle finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Message, "->") {
		t.Errorf("Message should spell out the cycle, got %q", findings[0].Message)
	}
}

func TestDuplicateID(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="x">first</div>
  <span id="x">second</span>
  <div id="y">unique</div>
</body></html>`, nil, nil)

	findings := duplicateID{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Selector != "#x" {
		t.Errorf("Expected finding on #x, got %q", findings[0].Selector)
	}
}

func TestPositiveTabindex(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <div id="jumpy" tabindex="5">a</div>
  <div id="normal" tabindex="0">b</div>
  <div id="removed" tabindex="-1">c</div>
  <div id="junk" tabindex="soon">d</div>
</body></html>`, nil, nil)

	findings := positiveTabindex{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if findings[0].Selector != "#jumpy" {
		t.Errorf("Expected finding on #jumpy, got %q", findings[0].Selector)
	}
	if findings[0].Severity != SeverityWarning {
		t.Errorf("Expected warning severity, got %s", findings[0].Severity)
	}
}

func TestMouseOnlyVisibility(t *testing.T) {
	doc := buildDoc(t, `<html><body>
  <nav class="menu">hidden until hover</nav>
  <nav class="mirrored">also hover-revealed</nav>
</body></html>`, nil, []string{`.menu:hover { display: block; }
.mirrored:hover { display: block; }
.mirrored:focus-within { display: block; }`})

	findings := mouseOnlyVisibility{}.Analyze(doc)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Message, "hover") {
		t.Errorf("Message should mention hover, got %q", findings[0].Message)
	}
}

func TestBuiltin_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Builtin() {
		if seen[a.Name()] {
			t.Errorf("Duplicate analyzer name %q", a.Name())
		}
		seen[a.Name()] = true
	}
	if len(seen) != 8 {
		t.Errorf("Expected 8 built-in analyzers, got %d", len(seen))
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	if !SeverityError.AtLeast(SeverityWarning) {
		t.Error("error should rank above warning")
	}
	if SeverityInfo.AtLeast(SeverityWarning) {
		t.Error("info should rank below warning")
	}
	if !SeverityWarning.AtLeast(SeverityWarning) {
		t.Error("AtLeast should be reflexive")
	}
}
