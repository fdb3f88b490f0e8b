package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weavelint/weavelint/pkg/cache"
	"github.com/weavelint/weavelint/pkg/model"
)

const pageHTML = `<html><body>
  <button id="save" class="btn">Save</button>
  <div id="panel" aria-labelledby="panel-title"></div>
  <h2 id="panel-title">Settings</h2>
</body></html>`

const pageJS = `document.getElementById('save').addEventListener('click', submit);`

const pageCSS = `.btn { color: white; background: blue; }
.btn:focus { outline: 2px solid orange; }`

func pageCollection() *model.SourceCollection {
	col := &model.SourceCollection{
		HTML:       pageHTML,
		JavaScript: []string{pageJS},
		CSS:        []string{pageCSS},
	}
	col.SourceFiles.HTML = "index.html"
	col.SourceFiles.JavaScript = []string{"app.js"}
	col.SourceFiles.CSS = []string{"styles.css"}
	return col
}

func TestBuild_EndToEnd(t *testing.T) {
	b := Builder{}
	doc, err := b.Build(context.Background(), pageCollection(), model.ScopePage)
	require.NoError(t, err)

	assert.Equal(t, 1, doc.FragmentCount())
	assert.Empty(t, doc.Warnings())

	// The script's selector resolved onto the markup's element
	btn := doc.ElementByID("save")
	require.NotNil(t, btn)
	require.Len(t, btn.Behaviors, 1)
	assert.Equal(t, "click", btn.Behaviors[0].Event)

	// Both .btn rules attached, focus rule flagged
	rules := doc.GetMatchingRules(btn)
	require.Len(t, rules, 2)
	hasFocusRule := false
	for _, r := range rules {
		if r.AffectsFocus {
			hasFocusRule = true
		}
	}
	assert.True(t, hasFocusRule)

	// Same-fragment aria reference resolved
	assert.Equal(t, 0, doc.UnresolvedRefs())
	assert.True(t, doc.IsFragmentComplete(0))
	assert.InDelta(t, 1.0, doc.TreeCompleteness(), 0.001)
}

func TestBuild_SiblingFailureDegrades(t *testing.T) {
	col := pageCollection()
	col.CSS = append(col.CSS, "@@@ not a stylesheet {{{")
	col.SourceFiles.CSS = append(col.SourceFiles.CSS, "broken.css")

	b := Builder{}
	doc, err := b.Build(context.Background(), col, model.ScopePage)
	require.NoError(t, err, "one bad fragment must not abort the build")

	warnings := doc.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "broken.css", warnings[0].SourceFile)

	// The rest of the page still merged normally
	btn := doc.ElementByID("save")
	require.NotNil(t, btn)
	assert.Len(t, btn.Behaviors, 1)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Builder{}
	doc, err := b.Build(ctx, pageCollection(), model.ScopePage)
	assert.Nil(t, doc, "cancelled build discards everything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_JSXContributesBothFragments(t *testing.T) {
	col := &model.SourceCollection{
		JavaScript: []string{`export const Save = () => (
  <button id="save" onClick={submit}>Save</button>
);`},
	}
	col.SourceFiles.JavaScript = []string{"Save.jsx"}

	b := Builder{}
	doc, err := b.Build(context.Background(), col, model.ScopeFile)
	require.NoError(t, err)

	// The component file yields an element graph and a behavior graph
	assert.Equal(t, 1, doc.FragmentCount())
	btn := doc.ElementByID("save")
	require.NotNil(t, btn)
	// onClick normalized to onclick and lifted as an inline handler
	require.NotEmpty(t, btn.Behaviors)
	assert.Equal(t, "click", btn.Behaviors[0].Event)
}

func TestBuild_CacheReuseIsIsolated(t *testing.T) {
	frags, err := cache.New(16)
	require.NoError(t, err)
	b := Builder{Cache: frags}

	first, err := b.Build(context.Background(), pageCollection(), model.ScopePage)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), pageCollection(), model.ScopePage)
	require.NoError(t, err)

	// Merge mutates elements; a cached fragment must come back pristine
	firstBtn := first.ElementByID("save")
	secondBtn := second.ElementByID("save")
	require.NotNil(t, secondBtn)
	assert.NotSame(t, firstBtn, secondBtn, "builds must not share element state")
	assert.Len(t, secondBtn.Behaviors, 1, "cached fragment resolved fresh, not doubled")
}
