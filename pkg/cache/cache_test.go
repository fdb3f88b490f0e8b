package cache

import (
	"testing"

	"github.com/weavelint/weavelint/pkg/model"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("markup", "<div></div>")
	b := Key("markup", "<div></div>")
	if a != b {
		t.Error("Same kind and source must hash to the same key")
	}
}

func TestKey_KindAndSourceDistinguish(t *testing.T) {
	if Key("markup", "body { }") == Key("stylesheet", "body { }") {
		t.Error("Same source under different kinds must not collide")
	}
	if Key("script", "a();") == Key("script", "b();") {
		t.Error("Different sources must not collide")
	}
	// The kind separator prevents boundary ambiguity
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Kind/source boundary must be part of the hash")
	}
}

func TestElements_ReturnsClone(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	g := model.NewElementGraph("index.html")
	btn := g.NewNode(model.NodeElement)
	btn.TagName = "button"
	btn.SetAttr("id", "save")
	g.Append(g.Root, btn)

	key := Key("markup", "<button id=save>")
	c.StoreElements(key, g)

	first, ok := c.Elements(key)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if first == g {
		t.Fatal("Cache must not hand out the stored graph itself")
	}

	// Mutations on a retrieved copy never reach later retrievals
	first.GetElementByID("save").SetAttr("class", "dirty")
	second, _ := c.Elements(key)
	if second.GetElementByID("save").HasAttr("class") {
		t.Error("Retrieved clone leaked a mutation back into the cache")
	}
}

func TestBehaviorsAndStyles_RoundTrip(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Behaviors(42); ok {
		t.Error("Expected a miss on an empty cache")
	}

	bg := model.NewBehaviorGraph("app.js")
	bg.Add(&model.BehaviorRecord{Action: model.ActionEventHandler, Event: "click"})
	c.StoreBehaviors(1, bg)
	if got, ok := c.Behaviors(1); !ok || got != bg {
		t.Error("Behavior graphs are shared, not cloned")
	}

	sg := model.NewStyleGraph("styles.css")
	c.StoreStyles(2, sg)
	if got, ok := c.Styles(2); !ok || got != sg {
		t.Error("Style graphs are shared, not cloned")
	}
}

func TestNew_EvictsOldest(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	c.StoreStyles(1, model.NewStyleGraph("a.css"))
	c.StoreStyles(2, model.NewStyleGraph("b.css"))
	c.StoreStyles(3, model.NewStyleGraph("c.css"))

	if _, ok := c.Styles(1); ok {
		t.Error("Oldest entry should have been evicted")
	}
	if _, ok := c.Styles(3); !ok {
		t.Error("Newest entry should survive")
	}
}
