package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weavelint/weavelint/pkg/cache"
	"github.com/weavelint/weavelint/pkg/document"
	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser"
	"github.com/weavelint/weavelint/pkg/pubsub"
)

// Options configures one analysis pass.
type Options struct {
	// ShowLowConfidence keeps findings below a rule's configured
	// minimum confidence instead of filtering them.
	ShowLowConfidence bool
	// Reason describes why the pass runs, for logs ("initial analysis",
	// "markup changed").
	Reason string
}

// RuleFilter decides which analyzers run and how their findings are
// adjusted. pkg/rules implements it; the zero-configuration default is
// everything enabled.
type RuleFilter interface {
	Enabled(rule string) bool
	Apply(f Finding) (Finding, bool)
}

// Result is the outcome of one pass.
type Result struct {
	RunID    string          `json:"runId"`
	Scope    model.Scope     `json:"scope"`
	Findings []Finding       `json:"findings"`
	Doc      *document.Graph `json:"-"`
	// Dropped counts findings filtered below a rule's minimum
	// confidence (reported only with ShowLowConfidence).
	Dropped  int           `json:"dropped"`
	Duration time.Duration `json:"duration"`
}

// Runner orchestrates an analysis pass: build the document graph from a
// source collection, run the enabled analyzers, publish progress. A
// runner is safe for concurrent use; passes are serialized by a mutex
// while graph builds for different runners proceed independently.
type Runner struct {
	analyzers []Analyzer
	filter    RuleFilter
	builder   parser.Builder
	publisher pubsub.Publisher
	mu        sync.Mutex

	bgMu     sync.Mutex
	bgCancel context.CancelFunc
}

// NewRunner creates a runner over the given analyzers. filter and
// publisher may be nil; frags may be nil to disable fragment caching.
func NewRunner(analyzers []Analyzer, filter RuleFilter, frags *cache.Cache, publisher pubsub.Publisher) *Runner {
	return &Runner{
		analyzers: analyzers,
		filter:    filter,
		builder:   parser.Builder{Cache: frags},
		publisher: publisher,
	}
}

// Run executes one synchronous pass over the collection.
func (r *Runner) Run(ctx context.Context, col *model.SourceCollection, scope model.Scope, opts Options) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	start := time.Now()
	logging.Info("starting analysis", "runID", runID, "scope", string(scope), "reason", opts.Reason)

	r.publishStatus("parsing", "Parsing source fragments...", 1, 3)
	doc, err := r.builder.Build(ctx, col, scope)
	if err != nil {
		// Only cancellation reaches here; parse failures degrade into
		// warnings on the graph.
		r.publishStatus("error", fmt.Sprintf("Analysis aborted: %v", err), 1, 3)
		return nil, fmt.Errorf("building document graph: %w", err)
	}
	for _, w := range doc.Warnings() {
		logging.Warn("fragment dropped", "sourceFile", w.SourceFile, "reason", w.Message)
	}
	if !col.Empty() && len(doc.Warnings()) > 0 &&
		doc.FragmentCount() == 0 && len(doc.BehaviorGraphs()) == 0 && len(doc.StyleGraphs()) == 0 {
		// One failed fragment degrades confidence; every fragment
		// failing is the one blocking condition.
		r.publishStatus("error", "No fragment could be parsed", 1, 3)
		return nil, fmt.Errorf("no fragment could be parsed from %d source(s)", len(doc.Warnings()))
	}

	r.publishStatus("analyzing", "Running analyzers...", 2, 3)
	result := &Result{RunID: runID, Scope: scope, Doc: doc}
	for _, a := range r.analyzers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.filter != nil && !r.filter.Enabled(a.Name()) {
			continue
		}
		for _, f := range a.Analyze(doc) {
			if r.filter != nil {
				adjusted, keep := r.filter.Apply(f)
				if !keep && !opts.ShowLowConfidence {
					result.Dropped++
					continue
				}
				f = adjusted
			}
			result.Findings = append(result.Findings, f)
		}
	}
	sortFindings(result.Findings)
	result.Duration = time.Since(start)

	r.publishStatus("ready", "Analysis complete", 3, 3)
	r.publishFindings(result, true)
	logging.Info("analysis complete",
		"runID", runID,
		"findings", len(result.Findings),
		"fragments", doc.FragmentCount(),
		"completeness", doc.TreeCompleteness(),
		"durationMs", result.Duration.Milliseconds(),
	)
	return result, nil
}

// RunBackground starts a cancellable whole-collection pass in a
// goroutine, cancelling any previous background pass first. When the
// pass completes, its results supersede the fast path's results via the
// callback; a cancelled pass publishes nothing.
func (r *Runner) RunBackground(ctx context.Context, col *model.SourceCollection, scope model.Scope, opts Options, done func(*Result)) {
	r.bgMu.Lock()
	if r.bgCancel != nil {
		r.bgCancel()
	}
	bgCtx, cancel := context.WithCancel(ctx)
	r.bgCancel = cancel
	r.bgMu.Unlock()

	go func() {
		defer cancel()
		result, err := r.Run(bgCtx, col, scope, opts)
		if err != nil {
			if bgCtx.Err() == nil {
				logging.Error("background analysis failed", "error", err)
			}
			return
		}
		if done != nil {
			done(result)
		}
	}()
}

func (r *Runner) publishStatus(state, message string, step, total int) {
	if r.publisher == nil {
		return
	}
	status := pubsub.WorkspaceStatus{State: state, Message: message, Step: step, Total: total}
	if err := r.publisher.Publish("workspace_status", state, status); err != nil {
		logging.Warn("failed to publish status", "error", err)
	}
}

func (r *Runner) publishFindings(result *Result, complete bool) {
	if r.publisher == nil {
		return
	}
	data := pubsub.FindingsData{
		RunID:        result.RunID,
		Count:        len(result.Findings),
		Fragments:    result.Doc.FragmentCount(),
		Completeness: result.Doc.TreeCompleteness(),
		Complete:     complete,
	}
	if err := r.publisher.Publish("findings", "findings_ready", data); err != nil {
		logging.Warn("failed to publish findings", "error", err)
	}
}

// sortFindings orders by severity first, then by location for stable
// reports.
func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity.AtLeast(findings[j].Severity)
		}
		if findings[i].Location.File != findings[j].Location.File {
			return findings[i].Location.File < findings[j].Location.File
		}
		return findings[i].Location.Line < findings[j].Location.Line
	})
}
