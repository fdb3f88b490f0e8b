package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"index.html", ChangeTypeMarkup},
		{"src/Widget.svelte", ChangeTypeMarkup},
		{"src/App.jsx", ChangeTypeMarkup},
		{"src/App.tsx", ChangeTypeMarkup},
		{"app.js", ChangeTypeScript},
		{"app.ts", ChangeTypeScript},
		{"styles.css", ChangeTypeStylesheet},
		{"README.md", ChangeType(-1)},
		{"photo.png", ChangeType(-1)},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAnalyzeChanges(t *testing.T) {
	tests := []struct {
		name        string
		changeType  ChangeType
		fullRebuild bool
	}{
		{"markup forces full rebuild", ChangeTypeMarkup, true},
		{"script only re-merges", ChangeTypeScript, false},
		{"stylesheet only re-merges", ChangeTypeStylesheet, false},
	}

	for _, tt := range tests {
		event := ChangeEvent{Type: tt.changeType, Paths: []string{"a", "b"}}
		analysis := AnalyzeChanges(event, "/workspace")

		if analysis.NeedFullRebuild != tt.fullRebuild {
			t.Errorf("%s: NeedFullRebuild = %v, want %v", tt.name, analysis.NeedFullRebuild, tt.fullRebuild)
		}
		if !analysis.NeedReMerge {
			t.Errorf("%s: every source change needs a re-merge", tt.name)
		}
		if len(analysis.ChangedFiles) != 2 {
			t.Errorf("%s: changed files not carried through", tt.name)
		}
	}
}

func TestDebouncer_BatchesAndOrders(t *testing.T) {
	input := make(chan ChangeEvent, 10)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A rapid burst in scrambled order
	input <- ChangeEvent{Type: ChangeTypeStylesheet, Paths: []string{"a.css"}}
	input <- ChangeEvent{Type: ChangeTypeMarkup, Paths: []string{"index.html"}}
	input <- ChangeEvent{Type: ChangeTypeScript, Paths: []string{"app.js"}}
	input <- ChangeEvent{Type: ChangeTypeStylesheet, Paths: []string{"b.css"}}

	var got []ChangeEvent
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case ev := <-d.Output():
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("Expected 3 flushed events, got %d", len(got))
		}
	}

	if got[0].Type != ChangeTypeMarkup || got[1].Type != ChangeTypeScript || got[2].Type != ChangeTypeStylesheet {
		t.Errorf("Flush order wrong: %v, %v, %v", got[0].Type, got[1].Type, got[2].Type)
	}
	if len(got[2].Paths) != 2 {
		t.Errorf("Stylesheet paths should accumulate, got %v", got[2].Paths)
	}
}

func TestDebouncer_MaxWaitBoundsLatency(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 100*time.Millisecond, 250*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// Keep the input noisy so the quiet period never elapses
	stop := make(chan struct{})
	go func() {
		tick := time.NewTicker(30 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				input <- ChangeEvent{Type: ChangeTypeScript, Paths: []string{"app.js"}}
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	select {
	case <-d.Output():
		// flushed despite continuous input
	case <-time.After(time.Second):
		t.Fatal("maxWait should force a flush under continuous input")
	}
}

func TestDebouncer_FlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Type: ChangeTypeMarkup, Paths: []string{"index.html"}}
	close(input)

	select {
	case ev, ok := <-d.Output():
		if !ok {
			t.Fatal("Expected the pending event before the output closes")
		}
		if ev.Type != ChangeTypeMarkup {
			t.Errorf("Expected markup event, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Closing the input should flush immediately")
	}

	if _, ok := <-d.Output(); ok {
		t.Error("Output should close after the final flush")
	}
}

func TestFileWatcher_EmitsChangeEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "styles.css")
	if err := os.WriteFile(path, []byte("body { }"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(dir)
	if err != nil {
		t.Fatalf("NewFileWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("body { margin: 0; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(3 * time.Second)
	for {
		select {
		case ev := <-fw.Events():
			if ev.Type == ChangeTypeStylesheet {
				return
			}
		case <-timeout:
			t.Fatal("No stylesheet change event observed")
		}
	}
}
