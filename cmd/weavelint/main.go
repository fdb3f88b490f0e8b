package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/cache"
	"github.com/weavelint/weavelint/pkg/config"
	"github.com/weavelint/weavelint/pkg/loader"
	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/output"
	"github.com/weavelint/weavelint/pkg/pubsub"
	"github.com/weavelint/weavelint/pkg/rules"
	"github.com/weavelint/weavelint/pkg/watcher"
	"github.com/weavelint/weavelint/pkg/web"
)

const fragmentCacheSize = 256

func main() {
	// Load .env before anything reads the environment
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("weavelint", pflag.ExitOnError)
	flags.String("workspace", ".", "Path to the workspace root")
	flags.String("scope", "workspace", "Analysis scope: file, page or workspace")
	flags.String("format", "text", "Report format: text, json or html")
	flags.String("out", "", "Write the report to a file instead of stdout")
	flags.String("fail-on", "error", "Exit non-zero when findings at this severity exist (error, warning, info, never)")
	flags.Bool("watch", false, "Re-analyze on file changes")
	flags.Bool("serve", false, "Serve the live diagnostics dashboard")
	flags.Int("port", 8080, "Port for the dashboard (only used with --serve)")
	flags.Bool("open", true, "Open the browser when serving")
	flags.Bool("show-low-confidence", false, "Report findings below a rule's minimum confidence")
	flags.String("rules", "", "Path to the rules file (default: .weavelint.yaml in the workspace)")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn, error")
	flags.String("log-format", "compact", "Log format: compact or json")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Setup(cfg.Verbosity, cfg.LogFormat)

	// Positional argument names the entry file for file and page scopes
	entry := ""
	if args := flags.Args(); len(args) > 0 {
		entry = args[0]
	}
	if (cfg.Scope == "file" || cfg.Scope == "page") && entry == "" {
		fmt.Fprintf(os.Stderr, "Error: %s scope requires an entry file argument\n", cfg.Scope)
		os.Exit(2)
	}

	os.Exit(run(cfg, entry))
}

func run(cfg *config.Config, entry string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rulesPath := cfg.RulesFile
	if rulesPath == "" {
		rulesPath = filepath.Join(cfg.Workspace, rules.DefaultFile)
	}
	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	frags, err := cache.New(fragmentCacheSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	var server *web.Server
	if cfg.Serve {
		server = web.NewServer()
	}

	runner := analysis.NewRunner(analysis.Builtin(), ruleSet, frags, publisherOf(server))
	sources := loader.New()
	opts := analysis.Options{ShowLowConfidence: cfg.ShowLowConfidence, Reason: "initial analysis"}
	scope := model.Scope(cfg.Scope)

	runOnce := func(reason string) (*analysis.Result, error) {
		col, err := sources.Load(ctx, cfg.Workspace, entry, scope)
		if err != nil {
			return nil, err
		}
		o := opts
		o.Reason = reason
		result, err := runner.Run(ctx, col, scope, o)
		if err != nil {
			return nil, err
		}
		dropIgnored(result, ruleSet)
		return result, nil
	}

	result, err := runOnce("initial analysis")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if server != nil {
		server.SetResult(result)
		go func() {
			if err := server.Start(cfg.Port); err != nil {
				logging.Fatal("failed to start server", "error", err)
			}
		}()
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		fmt.Fprintf(os.Stderr, "Serving diagnostics on %s\n", url)
		if cfg.OpenBrowser {
			time.Sleep(500 * time.Millisecond)
			openBrowser(url)
		}
	}

	if !cfg.Watch && !cfg.Serve {
		if err := writeReport(cfg, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
		return exitCode(cfg.FailOn, result)
	}

	if err := writeReport(cfg, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if cfg.Watch {
		if err := watchLoop(ctx, cfg, entry, scope, runner, sources, ruleSet, server, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 2
		}
	} else {
		<-ctx.Done()
	}
	return 0
}

// watchLoop re-runs the analysis whenever debounced file changes arrive
func watchLoop(ctx context.Context, cfg *config.Config, entry string, scope model.Scope,
	runner *analysis.Runner, sources *loader.Loader, ruleSet *rules.Config,
	server *web.Server, opts analysis.Options) error {

	fw, err := watcher.NewFileWatcher(cfg.Workspace)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)
	logging.Info("watching for changes", "workspace", cfg.Workspace)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-debouncer.Output():
			if !ok {
				return nil
			}
			change := watcher.AnalyzeChanges(event, cfg.Workspace)
			reason := "script or stylesheet changed"
			if change.NeedFullRebuild {
				reason = "markup changed"
			}
			logging.Info("change detected", "reason", reason, "files", len(change.ChangedFiles))

			col, err := sources.Load(ctx, cfg.Workspace, entry, scope)
			if err != nil {
				logging.Error("failed to reload sources", "error", err)
				continue
			}
			o := opts
			o.Reason = reason
			runner.RunBackground(ctx, col, scope, o, func(result *analysis.Result) {
				dropIgnored(result, ruleSet)
				if server != nil {
					server.SetResult(result)
				} else if err := writeReport(cfg, result); err != nil {
					logging.Error("failed to write report", "error", err)
				}
			})
		}
	}
}

// dropIgnored removes findings located in files the rules config ignores
func dropIgnored(result *analysis.Result, ruleSet *rules.Config) {
	if len(result.Findings) == 0 {
		return
	}
	kept := result.Findings[:0]
	for _, f := range result.Findings {
		if ruleSet.Ignored(f.Location.File) {
			continue
		}
		kept = append(kept, f)
	}
	result.Findings = kept
}

func writeReport(cfg *config.Config, result *analysis.Result) error {
	out := os.Stdout
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	switch cfg.Format {
	case "json":
		return output.WriteJSON(out, result)
	case "html":
		return output.WriteHTML(out, result)
	default:
		output.WriteText(out, result)
		return nil
	}
}

// exitCode maps findings to the process exit code. Engine-level
// degradation (skipped fragments, low completeness) never fails the
// run; only findings at or above the threshold do.
func exitCode(failOn string, result *analysis.Result) int {
	if failOn == "never" {
		return 0
	}
	threshold := analysis.Severity(failOn)
	for _, f := range result.Findings {
		if f.Severity.AtLeast(threshold) {
			return 1
		}
	}
	return 0
}

func publisherOf(server *web.Server) pubsub.Publisher {
	if server == nil {
		return nil
	}
	return server.Publisher()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}
	if err := cmd.Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
