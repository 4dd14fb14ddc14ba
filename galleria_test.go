package galleria

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
)

// testViews renders a minimal but content-sensitive page so rebuilds
// can be checked for byte-identical output.
func testViews() ViewFuncs {
	render := func(p Page) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			if _, err := fmt.Fprintf(w, "<title>%s</title>\n", p.Title); err != nil {
				return err
			}
			for _, g := range p.Groups {
				for _, img := range g.Images {
					if _, err := fmt.Fprintf(w, "<img src=%q width=\"%d\" height=\"%d\">\n",
						img.Thumbnail, img.Width, img.Height); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return ViewFuncs{Overview: render, GroupPage: render}
}

// buildFixture lays out a two-group source tree with real JPEGs, one
// group carrying a markdown description.
func buildFixture(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	writeJPEG(t, filepath.Join(in, "2021-03-05 Coast", "dunes.jpg"), 500, 400)
	writeJPEG(t, filepath.Join(in, "2021-03-05 Coast", "pier.jpg"), 500, 400)
	writeJPEG(t, filepath.Join(in, "2022-08-14 Alps", "summit.jpg"), 500, 400)
	if err := os.WriteFile(filepath.Join(in, "2022-08-14 Alps", "index.md"), []byte("# Alps\n\nHigh up."), 0o644); err != nil {
		t.Fatal(err)
	}
	return in
}

func runBuild(t *testing.T, cfg Config) *Report {
	t.Helper()
	report, err := New(cfg, testViews()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return report
}

func TestBuildEndToEnd(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()

	report := runBuild(t, Config{Title: "Trips", InputDir: in, OutputDir: out})

	if report.Fatal() {
		t.Fatalf("build reported failures: %v", report.WriteErrors)
	}
	if len(report.ImageErrors) != 0 {
		t.Fatalf("unexpected image errors: %v", report.ImageErrors)
	}
	for _, rel := range []string{
		"index.html",
		"2022-08-14-alps/index.html",
		"2022-08-14-alps/summit.jpg",
		"2021-03-05-coast/dunes.jpg",
		"2021-03-05-coast/pier.jpg",
		"thumbnails/small/2021-03-05-coast/dunes.jpg",
		"thumbnails/small/2021-03-05-coast/pier.jpg",
		"thumbnails/small/2022-08-14-alps/summit.jpg",
		"thumbnails/large/2022-08-14-alps/summit.jpg",
		"css/style.css",
		"js/gallery.js",
		storeFileName,
	} {
		if !fileExists(filepath.Join(out, rel)) {
			t.Errorf("missing output file %q", rel)
		}
	}
	// No page for the markdown-less group.
	if fileExists(filepath.Join(out, "2021-03-05-coast/index.html")) {
		t.Error("group without markdown got its own page")
	}
	// No large thumbnails for it either.
	if fileExists(filepath.Join(out, "thumbnails/large/2021-03-05-coast/dunes.jpg")) {
		t.Error("group without markdown got large thumbnails")
	}

	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<title>Trips</title>") {
		t.Error("overview missing the site title")
	}
	if !strings.Contains(string(html), "thumbnails/small/2022-08-14-alps/summit.jpg") {
		t.Error("overview missing a thumbnail reference")
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()
	cfg := Config{InputDir: in, OutputDir: out}

	first := runBuild(t, cfg)
	if first.Generated == 0 {
		t.Fatal("first build generated nothing")
	}

	second := runBuild(t, cfg)
	if second.Generated != 0 {
		t.Errorf("second build regenerated %d files", second.Generated)
		for _, op := range second.Ops {
			if op.Kind != OpUnchanged {
				t.Logf("  %s %s", op.Kind, op.Path)
			}
		}
	}
	if second.Skipped != first.Generated {
		t.Errorf("second build skipped %d, want %d", second.Skipped, first.Generated)
	}
}

func TestRebuildAfterSourceChange(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()
	cfg := Config{InputDir: in, OutputDir: out}

	runBuild(t, cfg)

	// Replace one source image with different dimensions.
	writeJPEG(t, filepath.Join(in, "2021-03-05 Coast", "dunes.jpg"), 800, 600)

	report := runBuild(t, cfg)
	var updated []string
	for _, op := range report.Ops {
		if op.Kind == OpUpdate {
			updated = append(updated, op.Path)
		}
	}
	if len(updated) == 0 {
		t.Fatal("changed source produced no updates")
	}
	for _, path := range updated {
		if !strings.Contains(path, "dunes") {
			t.Errorf("unrelated file updated: %q", path)
		}
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()

	report := runBuild(t, Config{InputDir: in, OutputDir: out, DryRun: true})

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run populated the output dir: %v", entries)
	}
	// The plan matches what a write-mode build would create.
	for _, op := range report.Ops {
		if op.Kind != OpCreate {
			t.Errorf("dry run against empty output planned %s for %q", op.Kind, op.Path)
		}
	}

	write := runBuild(t, Config{InputDir: in, OutputDir: out})
	if len(write.Ops) != len(report.Ops) {
		t.Errorf("dry run planned %d ops, write mode performed %d", len(report.Ops), len(write.Ops))
	}
}

func TestInterruptAbortsWithoutRewriting(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()
	runBuild(t, Config{InputDir: in, OutputDir: out})

	index := filepath.Join(out, "index.html")
	before, err := os.ReadFile(index)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Config{InputDir: in, OutputDir: out}, testViews()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run on a cancelled context = %v, want context.Canceled", err)
	}

	after, err := os.ReadFile(index)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("interrupted build rewrote index.html")
	}
}

func TestDryRunParityAfterSourceTouch(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()
	runBuild(t, Config{InputDir: in, OutputDir: out})

	// An mtime-only touch invalidates the fingerprint but changes no
	// rendered content. The dry-run plan and the write-mode outcome
	// must agree operation for operation.
	src := filepath.Join(in, "2021-03-05 Coast", "dunes.jpg")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(src, future, future); err != nil {
		t.Fatal(err)
	}

	dry := runBuild(t, Config{InputDir: in, OutputDir: out, DryRun: true})
	for _, suffix := range []string{"-wal", "-shm"} {
		if fileExists(filepath.Join(out, storeFileName+suffix)) {
			t.Errorf("dry run created %s%s in the output tree", storeFileName, suffix)
		}
	}

	write := runBuild(t, Config{InputDir: in, OutputDir: out})

	planned := make(map[string]OpKind, len(dry.Ops))
	for _, op := range dry.Ops {
		planned[op.Path] = op.Kind
	}
	for _, op := range write.Ops {
		kind, ok := planned[op.Path]
		if !ok {
			t.Errorf("write mode performed unplanned op on %q", op.Path)
			continue
		}
		if kind != op.Kind {
			t.Errorf("%q: dry run planned %s, write mode performed %s", op.Path, kind, op.Kind)
		}
	}
	if planned["index.html"] != OpUnchanged {
		t.Errorf("index.html planned as %s, want unchanged", planned["index.html"])
	}
}

func TestBrokenImageIsDroppedNotFatal(t *testing.T) {
	in := buildFixture(t)
	bad := filepath.Join(in, "2021-03-05 Coast", "corrupt.jpg")
	if err := os.WriteFile(bad, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	report := runBuild(t, Config{InputDir: in, OutputDir: out})

	if len(report.ImageErrors) != 1 {
		t.Fatalf("image errors = %v, want exactly one", report.ImageErrors)
	}
	if report.ImageErrors[0].Path != bad {
		t.Errorf("image error path = %q", report.ImageErrors[0].Path)
	}
	if report.Fatal() {
		t.Error("a dropped image must not fail the build")
	}
	// Neither the copy nor a page reference exists.
	if fileExists(filepath.Join(out, "2021-03-05-coast/corrupt.jpg")) {
		t.Error("broken image was copied")
	}
	html, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(html), "corrupt") {
		t.Error("broken image referenced on the overview page")
	}
}

func TestBuildWithBaseURL(t *testing.T) {
	in := buildFixture(t)
	out := t.TempDir()

	runBuild(t, Config{InputDir: in, OutputDir: out, BaseURL: "https://photos.example.com"})

	for _, rel := range []string{"sitemap.xml", "feed.xml"} {
		data, err := os.ReadFile(filepath.Join(out, rel))
		if err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
		if !strings.Contains(string(data), "https://photos.example.com/2022-08-14-alps/") {
			t.Errorf("%s missing the group page URL", rel)
		}
	}
}

func TestStructuralErrorAborts(t *testing.T) {
	in := t.TempDir()
	writeJPEG(t, filepath.Join(in, "no-date-here", "a.jpg"), 100, 100)
	out := t.TempDir()

	_, err := New(Config{InputDir: in, OutputDir: out}, testViews()).Run(context.Background())
	var serr *StructuralError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want a structural error", err)
	}
	if entries, _ := os.ReadDir(out); len(entries) != 0 {
		t.Error("aborted build wrote output")
	}
}
