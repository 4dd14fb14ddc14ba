package galleria

import "fmt"

// StructuralError marks input layout problems that invalidate the whole
// build: nested directories, unparseable dates, an unwritable output
// root. It always aborts before any file is written.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s: %q", e.Reason, e.Path)
}

// ImageError records a single unreadable or undecodable source image.
// The image is dropped from its group and the build continues.
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %q: %v", e.Path, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// OpKind classifies a planned filesystem operation.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpUnchanged
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpUnchanged:
		return "unchanged"
	}
	return "unknown"
}

// FileOp is one planned (dry-run) or performed (write mode) operation
// on the output tree.
type FileOp struct {
	Path string // relative to the output root
	Kind OpKind
	What string // "html", "image", "thumbnail", "asset", "feed", "sitemap"
}

// Report summarizes a build: what was written, skipped, or failed.
type Report struct {
	Ops []FileOp

	Generated int // files created or updated
	Skipped   int // cache hits and unchanged files
	Failed    int // per-file failures in write mode

	ImageErrors []ImageError // dropped source images
	Warnings    []string     // ignored files, empty groups, and similar
	WriteErrors []error      // per-file output failures

	PruneCandidates []string // stale thumbnails, relative to output root
	Pruned          []string // actually deleted (write mode with Prune)
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) record(op FileOp) {
	r.Ops = append(r.Ops, op)
	if op.Kind == OpUnchanged {
		r.Skipped++
	} else {
		r.Generated++
	}
}

// Fatal reports whether the build failed in a way that should be
// reflected in the process exit status.
func (r *Report) Fatal() bool {
	return r.Failed > 0
}
