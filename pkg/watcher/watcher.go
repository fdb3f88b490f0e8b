// Package watcher watches a workspace for web source changes, batches
// and debounces them, and classifies what re-analysis each batch needs.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/parser"
)

// ChangeType represents the type of file change detected
type ChangeType int

const (
	ChangeTypeMarkup ChangeType = iota
	ChangeTypeScript
	ChangeTypeStylesheet
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Type      ChangeType
	Paths     []string
	Timestamp time.Time
}

var watchSkipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
	"vendor":       {},
	"coverage":     {},
}

// FileWatcher watches a workspace for changes to web source files
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	workspace string
	events    chan ChangeEvent
	closeOnce sync.Once
}

// NewFileWatcher creates a new file system watcher rooted at the workspace
func NewFileWatcher(workspace string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   watcher,
		workspace: workspace,
		events:    make(chan ChangeEvent, 100),
	}

	return fw, nil
}

// Start begins watching for file changes
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watchSourceDirs(); err != nil {
		logging.Warn("failed to watch source directories", "error", err)
	}

	logging.Info("started watching workspace", "path", fw.workspace)

	// Process events
	go fw.processEvents(ctx)

	return nil
}

// watchSourceDirs finds and watches every directory containing web
// source files. fsnotify watches are non-recursive, so each directory
// is added individually.
func (fw *FileWatcher) watchSourceDirs() error {
	sourceDirs := make(map[string]bool)

	err := filepath.Walk(fw.workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		if info.IsDir() {
			name := info.Name()
			if _, skip := watchSkipDirs[name]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && path != fw.workspace {
				return filepath.SkipDir
			}
			return nil
		}

		if parser.Detect(info.Name()) != nil {
			sourceDirs[filepath.Dir(path)] = true
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk workspace: %w", err)
	}

	// Add all directories to watcher
	for dir := range sourceDirs {
		if err := fw.watcher.Add(dir); err != nil {
			logging.Warn("failed to watch directory", "path", dir, "error", err)
		}
	}

	logging.Info("monitoring directories for web sources", "count", len(sourceDirs))
	return nil
}

// processEvents processes file system events and batches them by type
func (fw *FileWatcher) processEvents(ctx context.Context) {
	// Batch events to avoid sending one event per file
	var markupFiles []string
	var scriptFiles []string
	var stylesheetFiles []string

	flushTimer := time.NewTimer(100 * time.Millisecond)
	flushTimer.Stop()

	flush := func() {
		if len(markupFiles) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeMarkup,
				Paths:     markupFiles,
				Timestamp: time.Now(),
			}
			markupFiles = nil
		}
		if len(scriptFiles) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeScript,
				Paths:     scriptFiles,
				Timestamp: time.Now(),
			}
			scriptFiles = nil
		}
		if len(stylesheetFiles) > 0 {
			fw.events <- ChangeEvent{
				Type:      ChangeTypeStylesheet,
				Paths:     stylesheetFiles,
				Timestamp: time.Now(),
			}
			stylesheetFiles = nil
		}
	}

	closeEvents := func() {
		fw.closeOnce.Do(func() { close(fw.events) })
	}

	for {
		select {
		case <-ctx.Done():
			fw.watcher.Close()
			closeEvents()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				closeEvents()
				return
			}

			switch Classify(event.Name) {
			case ChangeTypeMarkup:
				markupFiles = append(markupFiles, event.Name)
			case ChangeTypeScript:
				scriptFiles = append(scriptFiles, event.Name)
			case ChangeTypeStylesheet:
				stylesheetFiles = append(stylesheetFiles, event.Name)
			default:
				continue
			}
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				closeEvents()
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Classify maps a file path to a change type, or -1 when the file is
// not a web source. Component files (.jsx, .tsx, .svelte) count as
// markup: their element trees participate in cross-file resolution.
func Classify(path string) ChangeType {
	kinds := parser.Detect(filepath.Base(path))
	if kinds == nil {
		return ChangeType(-1)
	}
	switch kinds[0] {
	case parser.KindMarkup:
		return ChangeTypeMarkup
	case parser.KindScript:
		return ChangeTypeScript
	case parser.KindStylesheet:
		return ChangeTypeStylesheet
	}
	return ChangeType(-1)
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	return fw.watcher.Close()
}
