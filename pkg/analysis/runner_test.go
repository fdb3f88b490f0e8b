package analysis

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/pubsub"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []string
}

func (p *recordingPublisher) Subscribe(ctx context.Context, topic string) (pubsub.Subscription, error) {
	return nil, nil
}

func (p *recordingPublisher) Publish(topic, eventType string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, eventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// mapFilter is a stand-in rule filter: disabled rules never run, dropped
// rules fail Apply.
type mapFilter struct {
	disabled map[string]bool
	dropped  map[string]bool
}

func (f mapFilter) Enabled(rule string) bool { return !f.disabled[rule] }

func (f mapFilter) Apply(finding Finding) (Finding, bool) {
	return finding, !f.dropped[finding.Rule]
}

func messyCollection() *model.SourceCollection {
	col := &model.SourceCollection{
		HTML: `<html><body>
  <div id="fake" onclick="go()">Go</div>
  <div id="jumpy" tabindex="5">skip ahead</div>
</body></html>`,
	}
	col.SourceFiles.HTML = "index.html"
	return col
}

func TestRun_SortsBySeverity(t *testing.T) {
	r := NewRunner(Builtin(), nil, nil, nil)
	result, err := r.Run(context.Background(), messyCollection(), model.ScopePage, Options{Reason: "initial analysis"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
	if len(result.Findings) < 2 {
		t.Fatalf("Expected at least 2 findings, got %d", len(result.Findings))
	}
	lastRank := 4
	for _, f := range result.Findings {
		rank := f.Severity.rank()
		if rank > lastRank {
			t.Fatalf("Findings out of severity order: %s after rank %d", f.Severity, lastRank)
		}
		lastRank = rank
	}
}

func TestRun_FilterDisablesRules(t *testing.T) {
	filter := mapFilter{disabled: map[string]bool{"positive-tabindex": true}}
	r := NewRunner(Builtin(), filter, nil, nil)
	result, err := r.Run(context.Background(), messyCollection(), model.ScopePage, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := findingsFor(result.Findings, "positive-tabindex"); len(got) != 0 {
		t.Errorf("Disabled rule still produced %d findings", len(got))
	}
	if got := findingsFor(result.Findings, "click-without-keyboard"); len(got) != 1 {
		t.Errorf("Enabled rule should still run, got %d findings", len(got))
	}
}

func TestRun_FilterDropsFindings(t *testing.T) {
	filter := mapFilter{dropped: map[string]bool{"click-without-keyboard": true}}
	r := NewRunner(Builtin(), filter, nil, nil)

	result, err := r.Run(context.Background(), messyCollection(), model.ScopePage, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := findingsFor(result.Findings, "click-without-keyboard"); len(got) != 0 {
		t.Errorf("Dropped rule still reported %d findings", len(got))
	}
	if result.Dropped != 1 {
		t.Errorf("Expected Dropped = 1, got %d", result.Dropped)
	}

	// ShowLowConfidence keeps what Apply would drop
	kept, err := r.Run(context.Background(), messyCollection(), model.ScopePage, Options{ShowLowConfidence: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := findingsFor(kept.Findings, "click-without-keyboard"); len(got) != 1 {
		t.Errorf("ShowLowConfidence should keep the finding, got %d", len(got))
	}
	if kept.Dropped != 0 {
		t.Errorf("Expected Dropped = 0 with ShowLowConfidence, got %d", kept.Dropped)
	}
}

func TestRun_AllSourcesFailedBlocks(t *testing.T) {
	col := &model.SourceCollection{CSS: []string{"@@@ {{{"}}
	col.SourceFiles.CSS = []string{"broken.css"}

	r := NewRunner(Builtin(), nil, nil, nil)
	_, err := r.Run(context.Background(), col, model.ScopePage, Options{})
	if err == nil {
		t.Fatal("Expected an error when every fragment fails to parse")
	}
	if !strings.Contains(err.Error(), "no fragment could be parsed") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRun_PartialFailureDegrades(t *testing.T) {
	col := messyCollection()
	col.CSS = []string{"@@@ {{{"}
	col.SourceFiles.CSS = []string{"broken.css"}

	r := NewRunner(Builtin(), nil, nil, nil)
	result, err := r.Run(context.Background(), col, model.ScopePage, Options{})
	if err != nil {
		t.Fatalf("One bad fragment must not block the pass: %v", err)
	}
	if len(result.Doc.Warnings()) != 1 {
		t.Errorf("Expected 1 warning on the graph, got %d", len(result.Doc.Warnings()))
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Builtin(), nil, nil, nil)
	if _, err := r.Run(ctx, messyCollection(), model.ScopePage, Options{}); err == nil {
		t.Fatal("Expected cancellation to surface as an error")
	}
}

func TestRun_PublishesProgress(t *testing.T) {
	pub := &recordingPublisher{}
	r := NewRunner(Builtin(), nil, nil, pub)
	if _, err := r.Run(context.Background(), messyCollection(), model.ScopePage, Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	var statuses []string
	sawFindings := false
	for i, topic := range pub.topics {
		switch topic {
		case "workspace_status":
			statuses = append(statuses, pub.events[i])
		case "findings":
			sawFindings = true
		}
	}
	want := []string{"parsing", "analyzing", "ready"}
	if len(statuses) != len(want) {
		t.Fatalf("Expected statuses %v, got %v", want, statuses)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("Status %d = %q, want %q", i, statuses[i], want[i])
		}
	}
	if !sawFindings {
		t.Error("Expected a findings event after the pass")
	}
}

func TestRunBackground_DeliversResult(t *testing.T) {
	r := NewRunner(Builtin(), nil, nil, nil)
	done := make(chan *Result, 1)
	r.RunBackground(context.Background(), messyCollection(), model.ScopePage, Options{Reason: "markup changed"}, func(res *Result) {
		done <- res
	})

	select {
	case res := <-done:
		if len(res.Findings) == 0 {
			t.Error("Background pass should report the same findings as a foreground pass")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Background pass never completed")
	}
}
