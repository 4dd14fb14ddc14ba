package galleria

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// The source tree may contain webp images; imaging registers the
	// other raster decoders itself.
	_ "golang.org/x/image/webp"
)

// ThumbSize is a target thumbnail geometry. Sources are scaled to the
// target width and center-cropped to the target height.
type ThumbSize struct {
	Width  int
	Height int
}

// The overview page uses small thumbnails, group pages use large ones.
var (
	SmallThumb = ThumbSize{Width: 400, Height: 267}
	LargeThumb = ThumbSize{Width: 2000, Height: 1335}
)

const (
	thumbDir   = "thumbnails"
	thumbSmall = "small"
	thumbLarge = "large"
)

// thumbRelPath returns the output path of a thumbnail relative to the
// output root. Thumbnails are always encoded as JPEG, so the source
// extension is replaced.
func thumbRelPath(group *ImageGroup, img *Image, class string) string {
	name := strings.TrimSuffix(img.FileName, filepath.Ext(img.FileName))
	return joinURL(thumbDir, class, webPath(group.Dir), Slugify(name)+".jpg")
}

// imageRelPath returns the output path of the copied original relative
// to the output root.
func imageRelPath(group *ImageGroup, img *Image) string {
	return joinURL(webPath(group.Dir), webPath(img.FileName))
}

// thumbJob is one thumbnail to ensure. Jobs are independent: no two
// jobs share an output path, so workers need no cross-job locking.
type thumbJob struct {
	group  int // index into gallery.Groups
	image  int // index into group.Images
	img    Image
	size   ThumbSize
	outRel string
}

// thumbResult is the outcome of one job, reassembled in job order so
// the final report is deterministic regardless of completion order.
type thumbResult struct {
	rec  ThumbRecord
	kind OpKind
	err  error
}

// thumbJobs lists every thumbnail the gallery needs, in scanner order.
// Large thumbnails are only produced for groups with their own page.
func (b *Builder) thumbJobs(gallery *Gallery) []thumbJob {
	var jobs []thumbJob
	for gi := range gallery.Groups {
		group := &gallery.Groups[gi]
		for ii := range group.Images {
			img := group.Images[ii]
			jobs = append(jobs, thumbJob{
				group: gi, image: ii, img: img,
				size:   b.small,
				outRel: thumbRelPath(group, &img, thumbSmall),
			})
			if group.HasOwnPage() {
				jobs = append(jobs, thumbJob{
					group: gi, image: ii, img: img,
					size:   b.large,
					outRel: thumbRelPath(group, &img, thumbLarge),
				})
			}
		}
	}
	return jobs
}

// runThumbnails processes all jobs through a bounded worker pool and
// returns results indexed like the jobs slice.
func (b *Builder) runThumbnails(ctx context.Context, jobs []thumbJob) []thumbResult {
	results := make([]thumbResult, len(jobs))
	var g errgroup.Group
	g.SetLimit(b.Config.Workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			// Per-image errors land in the result slot; they never
			// cancel sibling jobs.
			if err := ctx.Err(); err != nil {
				results[i] = thumbResult{err: err}
				return nil
			}
			rec, kind, err := b.ensureThumbnail(job.img, job.size, job.outRel)
			results[i] = thumbResult{rec: rec, kind: kind, err: err}
			return nil
		})
	}
	_ = g.Wait() // workers always return nil
	return results
}

// ensureThumbnail makes sure a thumbnail for img at the given size
// exists at outRel under the output root. Generation is a pure function
// of the source bytes and target dimensions: when the stored
// fingerprint still matches and the file exists, nothing is re-encoded.
//
// In dry-run mode the decision is identical but no file is produced.
func (b *Builder) ensureThumbnail(img Image, size ThumbSize, outRel string) (ThumbRecord, OpKind, error) {
	outAbs := filepath.Join(b.Config.OutputDir, filepath.FromSlash(outRel))

	rec, ok, err := b.cache.Lookup(outRel)
	if err != nil {
		return ThumbRecord{}, OpCreate, err
	}
	exists := fileExists(outAbs)
	if ok && rec.Matches(img) && exists {
		return rec, OpUnchanged, nil
	}

	kind := OpCreate
	if exists {
		kind = OpUpdate
	}
	if b.Config.DryRun {
		// The planned pages must match what write mode would render,
		// so the target dimensions are predicted from the source
		// header without encoding anything.
		w, h, err := predictThumbnail(img.Path, size)
		if err != nil {
			return ThumbRecord{}, kind, err
		}
		return ThumbRecord{
			OutPath:    outRel,
			SourcePath: img.Path,
			Width:      w,
			Height:     h,
		}, kind, nil
	}

	w, h, err := generateThumbnail(img.Path, outAbs, size, b.Config.ThumbQuality)
	if err != nil {
		return ThumbRecord{}, kind, err
	}
	rec = ThumbRecord{
		OutPath:     outRel,
		SourcePath:  img.Path,
		SourceSize:  img.Size,
		SourceMtime: img.ModTime.UnixNano(),
		Width:       w,
		Height:      h,
		GeneratedAt: time.Now().UTC(),
	}
	if err := b.cache.Record(rec); err != nil {
		return rec, kind, err
	}
	return rec, kind, nil
}

// predictThumbnail computes the dimensions generateThumbnail would
// produce for the source, reading only the image header. It mirrors
// the scale-to-width and center-crop arithmetic, including the
// dimension swap EXIF orientation applies.
func predictThumbnail(srcPath string, size ThumbSize) (int, int, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %q: %w", srcPath, err)
	}
	srcW, srcH := cfg.Width, cfg.Height
	if orientationSwapsDims(srcPath) {
		srcW, srcH = srcH, srcW
	}
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("decode image %q: empty dimensions", srcPath)
	}
	h := int(math.Max(1, math.Floor(float64(size.Width)*float64(srcH)/float64(srcW)+0.5)))
	if h > size.Height {
		h = size.Height
	}
	return size.Width, h, nil
}

// generateThumbnail decodes the source, scales it to the target width,
// center-crops to the target height, and writes the JPEG via a
// temporary file so an interrupted build never leaves a partial
// thumbnail behind. Returns the final pixel dimensions.
func generateThumbnail(srcPath, outAbs string, size ThumbSize, quality int) (int, int, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image %q: %w", srcPath, err)
	}

	img := imaging.Resize(src, size.Width, 0, imaging.Lanczos)
	img = imaging.CropCenter(img, size.Width, size.Height)
	w, h := img.Rect.Dx(), img.Rect.Dy()

	if err := os.MkdirAll(filepath.Dir(outAbs), 0o755); err != nil {
		return 0, 0, fmt.Errorf("create thumbnail dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(outAbs), ".thumb-*")
	if err != nil {
		return 0, 0, fmt.Errorf("create temp thumbnail: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		tmp.Close()
		return 0, 0, fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, 0, err
	}
	if err := os.Rename(tmp.Name(), outAbs); err != nil {
		return 0, 0, fmt.Errorf("rename thumbnail into place: %w", err)
	}
	return w, h, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
