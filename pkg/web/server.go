// Package web serves the live diagnostics dashboard: a JSON API over
// the latest analysis result plus SSE streams for watch-mode updates.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/weavelint/weavelint/pkg/analysis"
	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/pubsub"
)

//go:embed static/*
var staticFiles embed.FS

// fragmentInfo describes one source fragment of the merged document
type fragmentInfo struct {
	SourceFile string `json:"sourceFile"`
	Elements   int    `json:"elements"`
	Complete   bool   `json:"complete"`
}

// ariaRefInfo describes one ARIA relationship edge
type ariaRefInfo struct {
	Source   string `json:"source"`
	Attr     string `json:"attr"`
	TargetID string `json:"targetId"`
	Resolved bool   `json:"resolved"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher

	mu     sync.RWMutex
	result *analysis.Result
}

// NewServer creates a new web server
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// Configure topic buffering
	// workspace_status: buffer last 10 events, replay only last event to new subscribers
	ssePublisher.ConfigureTopic("workspace_status", pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false, // Only send current state
	})

	// findings: buffer last 5 events, replay only last event
	ssePublisher.ConfigureTopic("findings", pubsub.TopicConfig{
		BufferSize: 5,
		ReplayAll:  false, // Only send current state
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s
}

// Publisher exposes the SSE publisher so the analysis runner can push
// progress events to subscribed dashboards.
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetResult stores the latest analysis result. Watch mode calls this
// after every pass; handlers always serve the newest snapshot.
func (s *Server) SetResult(result *analysis.Result) {
	s.mu.Lock()
	s.result = result
	s.mu.Unlock()
}

func (s *Server) latest() *analysis.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/workspace_status", s.handleSubscribe("workspace_status")).Methods("GET")
	s.router.HandleFunc("/api/subscribe/findings", s.handleSubscribe("findings")).Methods("GET")

	// API routes
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/findings", s.handleFindings).Methods("GET")
	s.router.HandleFunc("/api/document", s.handleDocument).Methods("GET")
	s.router.HandleFunc("/api/fragments", s.handleFragments).Methods("GET")

	// Serve static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static files missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

// handleSubscribe streams a pubsub topic over SSE
func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Set SSE headers
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

		// Send initial comment to establish connection (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		// Create subscription
		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		// Stream events
		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "failed to write SSE event", "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := s.latest()
	if result == nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"state": "initializing"})
		return
	}

	confidence, reason := result.Doc.Confidence()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"state":            "ready",
		"runId":            result.RunID,
		"scope":            result.Scope,
		"fragments":        result.Doc.FragmentCount(),
		"completeness":     result.Doc.TreeCompleteness(),
		"confidence":       confidence,
		"confidenceReason": reason,
		"findings":         len(result.Findings),
		"warnings":         result.Doc.Warnings(),
		"durationMs":       result.Duration.Milliseconds(),
	})
}

func (s *Server) handleFindings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := s.latest()
	if result == nil {
		json.NewEncoder(w).Encode([]analysis.Finding{})
		return
	}

	findings := result.Findings
	if findings == nil {
		findings = []analysis.Finding{}
	}
	json.NewEncoder(w).Encode(findings)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := s.latest()
	if result == nil {
		http.Error(w, "Document graph not available", http.StatusServiceUnavailable)
		return
	}
	doc := result.Doc

	refs := make([]ariaRefInfo, 0)
	for _, ref := range doc.AriaRefs() {
		source := ref.Attr
		if ref.Element != nil {
			source = describeElement(ref.Element)
		}
		refs = append(refs, ariaRefInfo{
			Source:   source,
			Attr:     ref.Attr,
			TargetID: ref.TargetID,
			Resolved: ref.Resolved,
		})
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"fragments":    s.fragmentInfos(result),
		"elements":     len(doc.AllElements()),
		"interactive":  len(doc.InteractiveElements()),
		"ariaRefs":     refs,
		"resolved":     doc.ResolvedRefs(),
		"unresolved":   doc.UnresolvedRefs(),
		"completeness": doc.TreeCompleteness(),
	})
}

func (s *Server) handleFragments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	result := s.latest()
	if result == nil {
		json.NewEncoder(w).Encode([]fragmentInfo{})
		return
	}
	json.NewEncoder(w).Encode(s.fragmentInfos(result))
}

func (s *Server) fragmentInfos(result *analysis.Result) []fragmentInfo {
	infos := make([]fragmentInfo, 0)
	for i, frag := range result.Doc.Fragments() {
		infos = append(infos, fragmentInfo{
			SourceFile: frag.SourceFile,
			Elements:   len(frag.AllElements()),
			Complete:   result.Doc.IsFragmentComplete(i),
		})
	}
	return infos
}

func describeElement(e *model.Element) string {
	if id, ok := e.Attr("id"); ok {
		return "#" + id
	}
	return e.TagName
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, logging.RequestIDMiddleware(s.router))
}
