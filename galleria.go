// Package galleria builds static photo-gallery websites from a
// directory tree of dated photo folders. It scans the input tree into
// a page model, generates thumbnails through a fingerprint cache so
// unchanged images are never re-encoded, and materializes (or, in
// dry-run mode, reports) a deterministic output tree.
//
// Users provide templ components via the ViewFuncs struct, and
// galleria handles scanning, caching, thumbnailing, and output
// writing. The views subpackage supplies the standard components.
package galleria

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/a-h/templ"
)

// ViewFuncs holds the templ components the builder calls when
// rendering pages. This keeps markup ownership outside the core.
type ViewFuncs struct {
	Overview  func(p Page) templ.Component
	GroupPage func(p Page) templ.Component
}

// Builder is a single gallery build. It wires together the scanner,
// the fingerprint store and cache, the thumbnail workers, and the
// output writer.
type Builder struct {
	Config Config
	Views  ViewFuncs

	store  *Store
	cache  *FingerprintCache
	report Report

	small ThumbSize
	large ThumbSize
}

// New creates a Builder with the given configuration and views.
func New(cfg Config, views ViewFuncs, opts ...Option) *Builder {
	cfg.setDefaults()

	b := &Builder{
		Config: cfg,
		Views:  views,
		small:  SmallThumb,
		large:  LargeThumb,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the build. The returned Report is valid whenever it is
// non-nil, including builds with per-file failures; the error is
// reserved for problems that invalidate the whole build, like
// structural input errors or an unwritable output root.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if err := b.Config.validate(); err != nil {
		return nil, err
	}
	if b.Views.Overview == nil || b.Views.GroupPage == nil {
		return nil, fmt.Errorf("galleria: ViewFuncs are required")
	}

	gallery, err := b.scan()
	if err != nil {
		return nil, err
	}
	if err := b.ensureOutputRoot(); err != nil {
		return nil, err
	}
	if err := b.openStore(); err != nil {
		return nil, err
	}
	defer b.closeStore()

	// Thumbnails first: the page model needs their dimensions, and a
	// failed thumbnail drops its image from every page.
	jobs := b.thumbJobs(gallery)
	results := b.runThumbnails(ctx, jobs)
	// An interrupt aborts the build here, before any page, copy, or
	// asset write. Treating cancelled jobs as per-image failures would
	// rewrite the pages with those images missing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs := make(map[string]ThumbRecord, len(jobs))
	failed := make(map[[2]int]bool)
	for i, res := range results {
		job := jobs[i]
		if res.err != nil {
			failed[[2]int{job.group, job.image}] = true
			b.report.ImageErrors = append(b.report.ImageErrors, ImageError{Path: job.img.Path, Err: res.err})
			continue
		}
		recs[job.outRel] = res.rec
		b.report.record(FileOp{Path: job.outRel, Kind: res.kind, What: "thumbnail"})
	}

	pages, err := b.buildPages(gallery, recs, failed)
	if err != nil {
		return nil, err
	}
	for i, page := range pages {
		html, err := b.renderPage(ctx, page, i == 0)
		if err != nil {
			return nil, err
		}
		b.writeFile(page.OutputPath, html, "html")
	}

	for gi := range gallery.Groups {
		group := &gallery.Groups[gi]
		for ii := range group.Images {
			if failed[[2]int{gi, ii}] {
				continue
			}
			img := group.Images[ii]
			b.copyOriginal(img, imageRelPath(group, &img))
		}
	}

	b.writeAssets()

	if b.Config.BaseURL != "" {
		sitemap, err := renderSitemap(b.Config.BaseURL, gallery)
		if err != nil {
			return nil, fmt.Errorf("render sitemap: %w", err)
		}
		b.writeFile("sitemap.xml", sitemap, "sitemap")

		feed, err := renderFeed(b.Config.Title, b.Config.BaseURL, gallery)
		if err != nil {
			return nil, fmt.Errorf("render feed: %w", err)
		}
		b.writeFile("feed.xml", feed, "feed")
	}

	expected := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		expected[job.outRel] = true
	}
	b.prune(expected)

	return &b.report, nil
}

// renderPage runs the matching view component and returns its markup.
func (b *Builder) renderPage(ctx context.Context, page Page, overview bool) ([]byte, error) {
	cmp := b.Views.GroupPage(page)
	if overview {
		cmp = b.Views.Overview(page)
	}
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", page.OutputPath, err)
	}
	return buf.Bytes(), nil
}

// openStore opens the fingerprint database inside the output root. A
// dry run opens an existing database read-only and never creates one:
// with no database every lookup simply misses, which matches what a
// fresh write-mode build would do.
func (b *Builder) openStore() error {
	path := filepath.Join(b.Config.OutputDir, storeFileName)
	if b.Config.DryRun {
		if !fileExists(path) {
			b.cache = NewFingerprintCache(nil)
			return nil
		}
		store, err := NewReadOnlyStore(path)
		if err != nil {
			return fmt.Errorf("open fingerprint store: %w", err)
		}
		b.store = store
		b.cache = NewFingerprintCache(store)
		return nil
	}
	store, err := NewStore(path)
	if err != nil {
		return fmt.Errorf("open fingerprint store: %w", err)
	}
	b.store = store
	b.cache = NewFingerprintCache(store)
	return nil
}

func (b *Builder) closeStore() {
	if b.store != nil {
		b.store.Close()
		b.store = nil
	}
}
