package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HTML(t *testing.T) {
	src := `<!DOCTYPE html>
<html>
<body>
  <div id="app" class="container">
    <button id="save" class="btn primary" aria-label="Save changes">Save</button>
    <!-- trailing comment -->
  </div>
</body>
</html>`

	g, err := Parse("index.html", src)
	require.NoError(t, err)

	btn := g.GetElementByID("save")
	require.NotNil(t, btn, "expected #save in the tree")
	assert.Equal(t, "button", btn.TagName)

	label, ok := btn.Attr("aria-label")
	assert.True(t, ok)
	assert.Equal(t, "Save changes", label)
	assert.Equal(t, "Save", btn.DirectText())

	app := g.GetElementByID("app")
	require.NotNil(t, app)
	assert.Equal(t, "div", app.TagName)
	assert.Equal(t, app, btn.Parent, "button should hang under #app")

	assert.Equal(t, "index.html", btn.Location.File)
	assert.Equal(t, 5, btn.Location.Line, "locations are 1-based")
}

func TestParse_HTMLUppercaseNormalized(t *testing.T) {
	g, err := Parse("page.html", `<DIV ID="box" Class="a">x</DIV>`)
	require.NoError(t, err)

	box := g.GetElementByID("box")
	require.NotNil(t, box)
	assert.Equal(t, "div", box.TagName, "tag names are lowercased")
	cls, _ := box.Attr("class")
	assert.Equal(t, "a", cls, "attribute names are case-insensitive")
}

func TestParse_SelfClosingAndNesting(t *testing.T) {
	src := `<form>
  <input type="text" id="q" />
  <img src="logo.png" alt="Logo">
</form>`

	g, err := Parse("form.html", src)
	require.NoError(t, err)

	tags := []string{}
	for _, e := range g.AllElements() {
		tags = append(tags, e.TagName)
	}
	assert.Equal(t, []string{"form", "input", "img"}, tags)
}

func TestParse_Svelte(t *testing.T) {
	src := `<script>
  let open = false;
</script>

<button id="toggle" on:click={() => open = !open} on:keydown|once={handle}>Menu</button>
{#if open}
  <nav class="menu"><a href="/home">Home</a></nav>
{/if}`

	g, err := Parse("Menu.svelte", src)
	require.NoError(t, err)

	btn := g.GetElementByID("toggle")
	require.NotNil(t, btn)
	// Framework event bindings normalize to the inline-handler shape
	assert.True(t, btn.HasAttr("onclick"), "on:click should normalize to onclick")
	assert.True(t, btn.HasAttr("onkeydown"), "on:keydown|once should drop the modifier")

	nav := g.QuerySelector(".menu")
	require.NotNil(t, nav)
	assert.Equal(t, "nav", nav.TagName)
}

func TestParse_JSX(t *testing.T) {
	src := `export function SaveButton({ onSave }) {
  return (
    <div className="toolbar">
      <button id="save" onClick={onSave} aria-label="Save">
        Save
      </button>
    </div>
  );
}`

	g, err := Parse("SaveButton.jsx", src)
	require.NoError(t, err)

	btn := g.GetElementByID("save")
	require.NotNil(t, btn)
	assert.Equal(t, "button", btn.TagName)
	assert.True(t, btn.HasAttr("onclick"), "onClick should normalize to onclick")

	label, _ := btn.Attr("aria-label")
	assert.Equal(t, "Save", label)

	// className renders as class, so class selectors resolve onto
	// component elements
	toolbar := g.QuerySelector(".toolbar")
	require.NotNil(t, toolbar, "className should normalize to class")
	cls, _ := toolbar.Attr("class")
	assert.Equal(t, "toolbar", cls)
	assert.Contains(t, toolbar.CandidateSelectors(), ".toolbar")
}

func TestParse_JSXHTMLForNormalized(t *testing.T) {
	src := `export const Field = () => (
  <div>
    <label htmlFor="q">Search</label>
    <input id="q" />
  </div>
);`

	g, err := Parse("Field.jsx", src)
	require.NoError(t, err)

	field := g.QuerySelector("label")
	require.NotNil(t, field)
	target, ok := field.Attr("for")
	assert.True(t, ok, "htmlFor should normalize to for")
	assert.Equal(t, "q", target)
}

func TestParse_TSX(t *testing.T) {
	src := `type Props = { label: string };
export const Chip = ({ label }: Props) => (
  <span className="chip" role="status">{label}</span>
);`

	g, err := Parse("Chip.tsx", src)
	require.NoError(t, err)

	chip := g.QuerySelector(".chip")
	require.NotNil(t, chip)
	role, _ := chip.Attr("role")
	assert.Equal(t, "status", role)
}

func TestParse_NoElements(t *testing.T) {
	// Plain text yields no elements; the fragment is reported unusable
	_, err := Parse("empty.html", "just some plain text without any tags at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markup")
}

func TestParse_EmptySource(t *testing.T) {
	g, err := Parse("blank.html", "   \n  ")
	require.NoError(t, err, "whitespace-only sources are empty, not broken")
	assert.Empty(t, g.AllElements())
}
