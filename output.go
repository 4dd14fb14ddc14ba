package galleria

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ensureOutputRoot creates the output directory in write mode. An
// unwritable output root invalidates the whole build.
func (b *Builder) ensureOutputRoot() error {
	if b.Config.DryRun {
		return nil
	}
	if err := os.MkdirAll(b.Config.OutputDir, 0o755); err != nil {
		return &StructuralError{Path: b.Config.OutputDir, Reason: "output root is not writable"}
	}
	return nil
}

// writeFile materializes content at rel under the output root, or, in
// dry-run mode, records what would happen. Content is compared against
// the existing file so unchanged files are never rewritten; rebuilds on
// unchanged input therefore touch nothing.
func (b *Builder) writeFile(rel string, content []byte, what string) {
	abs := filepath.Join(b.Config.OutputDir, filepath.FromSlash(rel))

	kind := OpCreate
	if existing, err := os.ReadFile(abs); err == nil {
		if bytes.Equal(existing, content) {
			kind = OpUnchanged
		} else {
			kind = OpUpdate
		}
	}
	if b.Config.DryRun || kind == OpUnchanged {
		b.report.record(FileOp{Path: rel, Kind: kind, What: what})
		return
	}
	if err := writeAtomic(abs, content); err != nil {
		b.fail(rel, err)
		return
	}
	b.report.record(FileOp{Path: rel, Kind: kind, What: what})
}

// copyOriginal copies a source image into the output tree. The copy is
// considered current while the destination size matches and the source
// has not been modified since the copy was made.
func (b *Builder) copyOriginal(img Image, rel string) {
	abs := filepath.Join(b.Config.OutputDir, filepath.FromSlash(rel))

	kind := OpCreate
	if info, err := os.Stat(abs); err == nil {
		if info.Size() == img.Size && !img.ModTime.After(info.ModTime()) {
			kind = OpUnchanged
		} else {
			kind = OpUpdate
		}
	}
	if b.Config.DryRun || kind == OpUnchanged {
		b.report.record(FileOp{Path: rel, Kind: kind, What: "image"})
		return
	}
	if err := copyAtomic(img.Path, abs); err != nil {
		b.fail(rel, err)
		return
	}
	b.report.record(FileOp{Path: rel, Kind: kind, What: "image"})
}

// prune reports thumbnails on disk that no current source accounts for.
// Deletion only happens in write mode with Config.Prune set; dry-run
// and default builds just list the candidates.
func (b *Builder) prune(expected map[string]bool) {
	root := filepath.Join(b.Config.OutputDir, thumbDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(b.Config.OutputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if expected[rel] {
			return nil
		}
		b.report.PruneCandidates = append(b.report.PruneCandidates, rel)
		if !b.Config.Prune || b.Config.DryRun {
			return nil
		}
		if err := os.Remove(path); err != nil {
			b.fail(rel, err)
			return nil
		}
		if err := b.cache.Forget(rel); err != nil {
			b.fail(rel, err)
			return nil
		}
		b.report.Pruned = append(b.report.Pruned, rel)
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		b.report.warnf("prune walk: %v", err)
	}
}

func (b *Builder) fail(rel string, err error) {
	b.report.Failed++
	b.report.WriteErrors = append(b.report.WriteErrors, fmt.Errorf("%s: %w", rel, err))
}

// writeAtomic writes data to a temporary file in the target directory
// and renames it into place, so an interrupted build leaves either the
// old file or the new one, never a torn write.
func writeAtomic(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".write-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), abs)
}

// copyAtomic copies src into place with the same temp-then-rename
// discipline as writeAtomic.
func copyAtomic(src, abs string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".copy-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), abs)
}
