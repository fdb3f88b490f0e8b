// Package loader discovers source files and assembles the immutable
// SourceCollection snapshot a document build consumes.
package loader

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/viant/afs"

	"github.com/weavelint/weavelint/pkg/logging"
	"github.com/weavelint/weavelint/pkg/model"
	"github.com/weavelint/weavelint/pkg/parser"
	"github.com/weavelint/weavelint/pkg/parser/markup"
)

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	"dist":         {},
	"build":        {},
	"vendor":       {},
	"coverage":     {},
	".next":        {},
	".svelte-kit":  {},
}

// Loader reads sources through afs so callers can address them by
// URL-style paths as well as plain file paths.
type Loader struct {
	fs afs.Service
}

// New creates a loader over the default afs service.
func New() *Loader {
	return &Loader{fs: afs.New()}
}

// Load assembles a collection for the scope: file loads the one named
// entry, page loads an HTML entry point plus its linked local scripts
// and stylesheets, workspace discovers everything under root honoring
// .gitignore and the usual skip directories.
func (l *Loader) Load(ctx context.Context, root, entry string, scope model.Scope) (*model.SourceCollection, error) {
	switch scope {
	case model.ScopeFile:
		return l.loadFile(ctx, entry)
	case model.ScopePage:
		return l.loadPage(ctx, entry)
	case model.ScopeWorkspace:
		return l.loadWorkspace(ctx, root)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

func (l *Loader) loadFile(ctx context.Context, path string) (*model.SourceCollection, error) {
	text, err := l.read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	col := &model.SourceCollection{}
	addSource(col, path, text)
	return col, nil
}

func (l *Loader) loadPage(ctx context.Context, entry string) (*model.SourceCollection, error) {
	text, err := l.read(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("reading page entry %s: %w", entry, err)
	}
	col := &model.SourceCollection{HTML: text}
	col.SourceFiles.HTML = entry

	// Linked resources come from the parsed entry document itself.
	frag, err := markup.Parse(entry, text)
	if err != nil {
		logging.Warn("page entry did not parse; loading it alone", "path", entry, "error", err)
		return col, nil
	}
	base := filepath.Dir(entry)
	for _, script := range frag.QuerySelectorAll("script") {
		src, ok := script.Attr("src")
		if !ok || src == "" {
			continue
		}
		l.addLinked(ctx, col, base, src)
	}
	for _, link := range frag.QuerySelectorAll("link") {
		rel, _ := link.Attr("rel")
		href, ok := link.Attr("href")
		if !ok || !strings.EqualFold(rel, "stylesheet") {
			continue
		}
		l.addLinked(ctx, col, base, href)
	}
	return col, nil
}

func (l *Loader) addLinked(ctx context.Context, col *model.SourceCollection, base, ref string) {
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") {
		logging.Debug("skipping remote resource", "ref", ref)
		return
	}
	path := filepath.Join(base, ref)
	text, err := l.read(ctx, path)
	if err != nil {
		logging.Warn("linked resource unreadable", "path", path, "error", err)
		return
	}
	addSource(col, path, text)
}

func (l *Loader) loadWorkspace(ctx context.Context, root string) (*model.SourceCollection, error) {
	gi := loadGitignore(root)
	col := &model.SourceCollection{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.Detect(name) == nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		text, readErr := l.read(ctx, path)
		if readErr != nil {
			logging.Warn("source unreadable", "path", path, "error", readErr)
			return nil
		}
		addSource(col, path, text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking workspace %s: %w", root, err)
	}
	logging.Info("workspace sources discovered",
		"markup", boolToInt(col.HTML != "")+len(col.Markup),
		"scripts", len(col.JavaScript),
		"stylesheets", len(col.CSS),
	)
	return col, nil
}

// addSource routes a source text into the collection slot its dialect
// dictates. The first HTML document becomes the primary; further markup
// documents go to the Markup expansion list.
func addSource(col *model.SourceCollection, path, text string) {
	kinds := parser.Detect(path)
	if kinds == nil {
		return
	}
	switch kinds[0] {
	case parser.KindMarkup:
		ext := strings.ToLower(filepath.Ext(path))
		if (ext == ".html" || ext == ".htm") && col.HTML == "" {
			col.HTML = text
			col.SourceFiles.HTML = path
			return
		}
		if ext == ".jsx" || ext == ".tsx" {
			// Component files ride in the JavaScript slot; the builder
			// derives both fragment kinds from the extension.
			col.JavaScript = append(col.JavaScript, text)
			col.SourceFiles.JavaScript = append(col.SourceFiles.JavaScript, path)
			return
		}
		col.Markup = append(col.Markup, text)
		col.SourceFiles.Markup = append(col.SourceFiles.Markup, path)
	case parser.KindScript:
		col.JavaScript = append(col.JavaScript, text)
		col.SourceFiles.JavaScript = append(col.SourceFiles.JavaScript, path)
	case parser.KindStylesheet:
		col.CSS = append(col.CSS, text)
		col.SourceFiles.CSS = append(col.SourceFiles.CSS, path)
	}
}

func (l *Loader) read(ctx context.Context, path string) (string, error) {
	reader, err := l.fs.OpenURL(ctx, path)
	if err != nil {
		return "", err
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		logging.Warn("unparseable .gitignore", "path", path, "error", err)
		return nil
	}
	return gi
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
