package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dmitrymomot/ultralight/pkg/cache"
	"github.com/dmitrymomot/ultralight/pkg/logger"
)

// ContentKey is the placeholder a layout uses for the page body.
const ContentKey = "content"

// LayoutKey is the front matter key that selects a page layout.
// The value "none" disables the layout.
const LayoutKey = "layout"

// Engine loads templates from a file system and caches them parsed.
type Engine struct {
	fsys    fs.FS
	cache   cache.Cache[*Template]
	filters map[string]Filter
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	layout  string
	reload  string
	owned   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLayout sets the default layout Page wraps content in.
func WithLayout(name string) Option {
	return func(e *Engine) { e.layout = name }
}

// WithCache replaces the default in-memory template cache.
func WithCache(c cache.Cache[*Template]) Option {
	return func(e *Engine) { e.cache = c }
}

// WithFilter registers a filter, replacing a built-in one of the same name.
func WithFilter(name string, f Filter) Option {
	return func(e *Engine) { e.filters[name] = f }
}

// WithLogger sets the logger used for reload events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithReload watches dir on disk and drops cached templates whenever a file
// under it changes. dir should be the directory fsys was opened from.
func WithReload(dir string) Option {
	return func(e *Engine) { e.reload = dir }
}

// New creates an engine reading templates from fsys.
func New(fsys fs.FS, opts ...Option) (*Engine, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	e := &Engine{
		fsys:    fsys,
		filters: builtinFilters(md),
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.NewMemory[*Template](cache.WithCleanupInterval(0))
		e.owned = true
	}
	if e.reload != "" {
		if err := e.watch(e.reload); err != nil {
			return nil, errors.Join(ErrWatch, err)
		}
	}
	return e, nil
}

// Template returns the parsed template stored under name.
func (e *Engine) Template(name string) (*Template, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	return cache.GetOrSet(context.Background(), e.cache, e.key(clean), func(context.Context) (*Template, time.Duration, error) {
		return e.load(clean)
	})
}

// key scopes cache entries per engine so engines may share a cache.
func (e *Engine) key(name string) string {
	return fmt.Sprintf("view:%p:%s", e, name)
}

func (e *Engine) load(name string) (*Template, time.Duration, error) {
	content, err := fs.ReadFile(e.fsys, name)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	meta, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}
	t, err := Parse(name, string(body))
	if err != nil {
		return nil, 0, err
	}
	if err := t.checkFilters(e); err != nil {
		return nil, 0, err
	}
	t.meta = meta
	return t, -1, nil
}

// Render executes the named template into w. Output is buffered so a failing
// template writes nothing.
func (e *Engine) Render(ctx context.Context, w io.Writer, name string, data Data) error {
	t, err := e.Template(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(ctx, &buf, data, e); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// RenderString is Render into a string.
func (e *Engine) RenderString(ctx context.Context, name string, data Data) (string, error) {
	var sb strings.Builder
	if err := e.Render(ctx, &sb, name, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Page returns a component rendering the named template inside its layout.
// Front matter values act as defaults for data.
func (e *Engine) Page(name string, data Data) Component {
	return &page{engine: e, name: name, data: data}
}

// Clear drops every cached template.
func (e *Engine) Clear(ctx context.Context) error {
	return e.cache.Clear(ctx)
}

// Close stops the file watcher and releases the default cache.
func (e *Engine) Close() error {
	var errs []error
	if e.watcher != nil {
		errs = append(errs, e.watcher.Close())
	}
	if e.owned {
		errs = append(errs, e.cache.Close())
	}
	return errors.Join(errs...)
}

type page struct {
	engine *Engine
	data   Data
	name   string
}

func (p *page) Render(ctx context.Context, w io.Writer) error {
	t, err := p.engine.Template(p.name)
	if err != nil {
		return err
	}

	data := make(Data, len(t.meta)+len(p.data)+1)
	maps.Copy(data, t.meta)
	maps.Copy(data, p.data)

	var body bytes.Buffer
	if err := t.Execute(ctx, &body, data, p.engine); err != nil {
		return err
	}

	layout := p.engine.layout
	if v, ok := t.meta[LayoutKey].(string); ok {
		layout = v
	}
	if layout == "" || layout == "none" {
		_, err := body.WriteTo(w)
		return err
	}

	data[ContentKey] = HTML(body.String())
	return p.engine.Render(ctx, w, layout, data)
}
