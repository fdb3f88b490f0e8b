// weavelint-mcp exposes the analysis engine over the Model Context
// Protocol: tools for analyzing inline sources or a workspace, and
// resources serving the latest result, all over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/cache"
	"github.com/weavelint/weavelint/pkg/loader"
	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/rules"
)

const fragmentCacheSize = 256

// AnalyzeSourceInput carries inline source fragments to analyze. The
// scope defaults to page: the fragments are assumed to belong together.
type AnalyzeSourceInput struct {
	HTML        string   `json:"html"`
	Markup      []string `json:"markup,omitempty"`
	Scripts     []string `json:"scripts,omitempty"`
	Stylesheets []string `json:"stylesheets,omitempty"`
	Scope       string   `json:"scope,omitempty"`
}

// AnalyzeWorkspaceInput names a directory to discover and analyze.
type AnalyzeWorkspaceInput struct {
	Path string `json:"path" jsonschema:"required"`
}

// engineServer wires the analysis engine to MCP handlers and remembers
// the most recent result for the resource endpoints.
type engineServer struct {
	runner  *analysis.Runner
	sources *loader.Loader

	mu     sync.RWMutex
	result *analysis.Result
}

func newEngineServer() (*engineServer, error) {
	frags, err := cache.New(fragmentCacheSize)
	if err != nil {
		return nil, err
	}
	return &engineServer{
		runner:  analysis.NewRunner(analysis.Builtin(), rules.Default(), frags, nil),
		sources: loader.New(),
	}, nil
}

func main() {
	_ = godotenv.Load()
	logging.Setup(os.Getenv("WEAVELINT_VERBOSITY"), "compact")

	es, err := newEngineServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "weavelint-mcp",
		Version: "0.1.0",
	}, &mcp.ServerOptions{})

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_source",
		Description: "Analyze inline HTML, script and stylesheet fragments for accessibility issues",
	}, es.analyzeSource)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "analyze_workspace",
		Description: "Discover and analyze the web sources of a workspace directory",
	}, es.analyzeWorkspace)

	s.AddResource(&mcp.Resource{
		Name: "status",
		URI:  "weavelint://status",
	}, es.handleStatus)

	s.AddResource(&mcp.Resource{
		Name: "findings",
		URI:  "weavelint://findings",
	}, es.handleFindings)

	if err := s.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logging.Fatal("server stopped", "error", err)
	}
}

func (es *engineServer) analyzeSource(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeSourceInput) (*mcp.CallToolResult, any, error) {
	if input.HTML == "" && len(input.Markup) == 0 && len(input.Scripts) == 0 && len(input.Stylesheets) == 0 {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: "At least one source fragment required"}}}, nil, nil
	}

	scope := model.ScopePage
	if input.Scope == string(model.ScopeFile) {
		scope = model.ScopeFile
	}
	col := &model.SourceCollection{
		HTML:       input.HTML,
		Markup:     input.Markup,
		JavaScript: input.Scripts,
		CSS:        input.Stylesheets,
	}

	result, err := es.runner.Run(ctx, col, scope, analysis.Options{Reason: "mcp analyze_source"})
	if err != nil {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}}, nil, nil
	}
	es.remember(result)
	return toolResult(result)
}

func (es *engineServer) analyzeWorkspace(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeWorkspaceInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: "Path required"}}}, nil, nil
	}

	col, err := es.sources.Load(ctx, input.Path, "", model.ScopeWorkspace)
	if err != nil {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}}, nil, nil
	}

	result, err := es.runner.Run(ctx, col, model.ScopeWorkspace, analysis.Options{Reason: "mcp analyze_workspace"})
	if err != nil {
		return &mcp.CallToolResult{IsError: true, Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}}}, nil, nil
	}
	es.remember(result)
	return toolResult(result)
}

func (es *engineServer) remember(result *analysis.Result) {
	es.mu.Lock()
	es.result = result
	es.mu.Unlock()
}

func (es *engineServer) latest() *analysis.Result {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.result
}

func toolResult(result *analysis.Result) (*mcp.CallToolResult, any, error) {
	confidence, reason := result.Doc.Confidence()
	payload := map[string]interface{}{
		"runId":            result.RunID,
		"scope":            result.Scope,
		"fragments":        result.Doc.FragmentCount(),
		"completeness":     result.Doc.TreeCompleteness(),
		"confidence":       confidence,
		"confidenceReason": reason,
		"findings":         result.Findings,
	}
	if warnings := result.Doc.Warnings(); len(warnings) > 0 {
		payload["warnings"] = warnings
	}
	jsonBytes, _ := json.MarshalIndent(payload, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil, nil
}

func (es *engineServer) handleStatus(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	status := map[string]interface{}{"state": "idle"}
	if result := es.latest(); result != nil {
		confidence, reason := result.Doc.Confidence()
		status = map[string]interface{}{
			"state":            "ready",
			"runId":            result.RunID,
			"fragments":        result.Doc.FragmentCount(),
			"completeness":     result.Doc.TreeCompleteness(),
			"confidence":       confidence,
			"confidenceReason": reason,
		}
	}
	bytes, _ := json.MarshalIndent(status, "", "  ")
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: req.Params.URI, MIMEType: "application/json", Text: string(bytes)},
		},
	}, nil
}

func (es *engineServer) handleFindings(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	findings := []analysis.Finding{}
	if result := es.latest(); result != nil && result.Findings != nil {
		findings = result.Findings
	}
	bytes, _ := json.MarshalIndent(findings, "", "  ")
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: req.Params.URI, MIMEType: "application/json", Text: string(bytes)},
		},
	}, nil
}
