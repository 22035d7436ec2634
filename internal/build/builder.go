// Package build turns a docs directory into a static site. Pages are
// discovered and sorted, navigation is computed once, and every page is then
// built concurrently: its live blocks become custom element previews, the
// Markdown is rendered and the layout written to the output directory.
// Site-wide files (assets, search index, sitemap, robots) are written only
// when every page succeeded.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/conneroisu/livedocs/internal/adapters"
	"github.com/conneroisu/livedocs/internal/config"
	builderrors "github.com/conneroisu/livedocs/internal/errors"
	"github.com/conneroisu/livedocs/internal/logging"
	"github.com/conneroisu/livedocs/internal/mdx"
	"github.com/conneroisu/livedocs/internal/renderer"
)

var (
	// ErrPagesFailed wraps the aggregated failures of a build in which at
	// least one page could not be produced.
	ErrPagesFailed = errors.New("one or more pages failed to build")
	// ErrBuildLocked is returned when another build holds the output lock.
	ErrBuildLocked = errors.New("another build is writing to the output directory")
	// ErrInvalidSlug is returned for frontmatter slugs that would leave the
	// output directory.
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrDuplicateOutput is returned when two pages map to the same file.
	ErrDuplicateOutput = errors.New("pages share an output path")
	// ErrOutsideOutput is returned for writes that resolve outside the
	// output directory.
	ErrOutsideOutput = errors.New("path escapes the output directory")
)

// HMRScriptPath is the hot-reload client injected into pages in dev mode.
const HMRScriptPath = "/__hmr.js"

// Result summarizes a build.
type Result struct {
	Pages      int
	Components int
	Duration   time.Duration
	OutputDir  string
	// Errors holds every page failure; empty on success.
	Errors []builderrors.BuildError
}

// Reporter receives build progress.
type Reporter interface {
	Start(total int)
	PageDone(page string, err error)
	Finish()
}

type nopReporter struct{}

func (nopReporter) Start(int)              {}
func (nopReporter) PageDone(string, error) {}
func (nopReporter) Finish()                {}

// Option configures a Builder.
type Option func(*Builder)

// WithFs sets the filesystem the output is written to.
func WithFs(fsys afero.Fs) Option {
	return func(b *Builder) { b.fs = fsys }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(b *Builder) { b.reporter = r }
}

// WithAdapter sets the adapter used for blocks holding full component
// sources.
func WithAdapter(a adapters.FrameworkAdapter) Option {
	return func(b *Builder) { b.adapter = a }
}

// WithDevMode injects the hot-reload client into every page.
func WithDevMode(enabled bool) Option {
	return func(b *Builder) { b.devMode = enabled }
}

// Builder builds the site described by a configuration.
type Builder struct {
	cfg      *config.Config
	source   ComponentSource
	renderer renderer.PageRenderer
	adapter  adapters.FrameworkAdapter
	logger   logging.Logger
	reporter Reporter
	fs       afero.Fs
	out      *OutputWriter
	devMode  bool
	metrics  *BuildMetrics
}

// NewBuilder creates a builder. source is read-only for the duration of a
// build.
func NewBuilder(cfg *config.Config, source ComponentSource, r renderer.PageRenderer,
	logger logging.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	if r == nil {
		r = renderer.NewDocRenderer()
	}

	b := &Builder{
		cfg:      cfg,
		source:   source,
		renderer: r,
		adapter:  adapters.NewReactAdapter(),
		logger:   logger.WithComponent("build"),
		reporter: nopReporter{},
		fs:       afero.NewOsFs(),
		metrics:  NewBuildMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.out = NewOutputWriter(b.fs, cfg.Docs.Output)

	return b
}

// Metrics returns the page build metrics accumulated across builds.
func (b *Builder) Metrics() *BuildMetrics {
	return b.metrics
}

// Build produces the whole site.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	op := logging.StartOperation(b.logger, "build")
	start := time.Now()

	unlock, err := b.lock()
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}
	defer unlock()

	result, err := b.build(ctx)
	if result != nil {
		result.Duration = time.Since(start)
	}
	if err != nil {
		op.EndWithError(ctx, err)
		return result, err
	}

	op.End(ctx)
	return result, nil
}

func (b *Builder) build(ctx context.Context) (*Result, error) {
	outDir := b.cfg.Docs.Output
	if b.cfg.Build.Clean {
		if err := b.fs.RemoveAll(outDir); err != nil {
			return nil, fmt.Errorf("failed to clean output directory: %w", err)
		}
	}
	if err := b.fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pages, err := DiscoverPages(b.cfg.Docs.Dir, b.cfg.Docs.BaseURL)
	if err != nil {
		return nil, err
	}
	b.logger.Info(ctx, "Discovered pages", "count", len(pages), "dir", b.cfg.Docs.Dir)

	nav := BuildNavigation(pages, b.cfg.Docs.BaseURL)

	collector := builderrors.NewErrorCollector()
	var components atomic.Int64

	b.reporter.Start(len(pages))
	p := pool.New().WithMaxGoroutines(max(1, b.cfg.Build.Workers)).WithContext(ctx)
	for _, page := range pages {
		p.Go(func(ctx context.Context) error {
			pageStart := time.Now()
			count, err := b.buildPage(ctx, page, nav)
			b.metrics.RecordPage(time.Since(pageStart), err)
			b.reporter.PageDone(page.RelativePath, err)
			if err != nil {
				collector.Add(builderrors.BuildError{
					Component: "build",
					File:      page.SourcePath,
					Message:   "page build failed",
					Severity:  builderrors.ErrorSeverityError,
					Err:       err,
				})
				return err
			}
			components.Add(int64(count))
			return nil
		})
	}
	_ = p.Wait()
	b.reporter.Finish()

	result := &Result{
		Pages:      len(pages),
		Components: int(components.Load()),
		OutputDir:  outDir,
	}

	if collector.HasErrors() {
		result.Errors = collector.GetErrors()
		result.Pages -= len(result.Errors)
		return result, fmt.Errorf("%w: %w", ErrPagesFailed, collector.Err())
	}

	if err := b.writeSiteOutputs(ctx, pages); err != nil {
		return result, err
	}

	return result, nil
}

func (b *Builder) buildPage(ctx context.Context, page *PageInfo, nav []renderer.NavItem) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	logger := b.logger.With("page", page.RelativePath)
	doc := page.Document

	transform := TransformBlocks(ctx, doc, b.source, b.adapter, logger)
	body := SubstitutePreviews(doc.Body, doc.CodeBlocks, transform.Replacements)

	content, err := mdx.RenderHTML(body)
	if err != nil {
		return 0, err
	}

	title := doc.Title()
	if title == "" {
		title = "Untitled"
	}
	pc := &renderer.PageContext{
		Title:     title,
		SiteTitle: b.cfg.Docs.Title,
		Content:   content,
		Nav:       WithActive(nav, page.URL),
		Toc:       tocEntries(doc.Outline),
		BaseURL:   b.cfg.Docs.BaseURL,
	}
	if doc.Frontmatter != nil {
		pc.Description = doc.Frontmatter.Description
	}
	for _, a := range transform.Artifacts {
		pc.WebComponents = append(pc.WebComponents, a.Code)
	}
	for _, style := range b.cfg.Docs.Styles {
		pc.Styles = append(pc.Styles, StylesheetURL(b.cfg.Docs.BaseURL, style))
	}
	if b.devMode {
		pc.Scripts = append(pc.Scripts, HMRScriptPath)
	}

	var buf bytes.Buffer
	if err := b.renderer.Render(ctx, &buf, pc); err != nil {
		return 0, err
	}
	if err := b.out.WriteFile(page.OutputPath, buf.Bytes()); err != nil {
		return 0, err
	}

	logger.Debug(ctx, "Built page", "output", page.OutputPath, "components", transform.Components)
	return transform.Components, nil
}

func tocEntries(outline []mdx.HeadingEntry) []renderer.TocEntry {
	if len(outline) == 0 {
		return nil
	}
	toc := make([]renderer.TocEntry, len(outline))
	for i, h := range outline {
		toc[i] = renderer.TocEntry{Title: h.Title, ID: h.ID, Level: h.Level}
	}
	return toc
}

// lock takes an exclusive file lock next to the output directory so two
// processes never write the same site at once. Non-OS filesystems are not
// locked.
func (b *Builder) lock() (func(), error) {
	if _, ok := b.fs.(*afero.OsFs); !ok {
		return func() {}, nil
	}

	outDir := filepath.Clean(b.cfg.Docs.Output)
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", parent, err)
	}

	fl := flock.New(filepath.Join(parent, "."+filepath.Base(outDir)+".lock"))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire build lock: %w", err)
	}
	if !locked {
		return nil, ErrBuildLocked
	}

	return func() { _ = fl.Unlock() }, nil
}
