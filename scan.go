package galleria

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// datePrefix matches directory names like "2021-01-01 Fuji, Japan":
// an ISO date, one separator character, then the title.
var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(.)(.*)$`)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// markdownName is the only file recognized as a group description.
const markdownName = "index.md"

// scan walks the input root and produces the gallery model. It is a
// read-only traversal; all side effects are warnings on the report.
//
// Structural problems (nested directories, names without a parseable
// date) abort the scan: navigation and ordering depend on them.
func (b *Builder) scan() (*Gallery, error) {
	root := b.Config.InputDir
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input directory %q: %w", root, err)
	}

	var groups []ImageGroup
	for _, e := range entries {
		if !e.IsDir() {
			if e.Name() != siteFileName {
				b.report.warnf("ignoring stray file in input root: %q", e.Name())
			}
			continue
		}
		group, err := b.scanGroup(root, e.Name())
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		li, lj := groups[i], groups[j]
		if !li.Date.Equal(lj.Date) {
			if b.Config.Order == OldestFirst {
				return li.Date.Before(lj.Date)
			}
			return li.Date.After(lj.Date)
		}
		return li.Title < lj.Title
	})

	return &Gallery{Groups: groups}, nil
}

// scanGroup reads a single dated directory into an ImageGroup.
func (b *Builder) scanGroup(root, name string) (*ImageGroup, error) {
	title, date, err := parseDirName(name)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read group directory %q: %w", dir, err)
	}

	group := &ImageGroup{Dir: name, Title: title, Date: date}
	for _, e := range entries {
		if e.IsDir() {
			return nil, &StructuralError{
				Path:   filepath.Join(name, e.Name()),
				Reason: "nested directories are not permitted",
			}
		}
		switch {
		case imageExts[strings.ToLower(filepath.Ext(e.Name()))]:
			img, err := b.scanImage(dir, e.Name())
			if err != nil {
				b.report.ImageErrors = append(b.report.ImageErrors, *err)
				continue
			}
			group.Images = append(group.Images, *img)
		case e.Name() == markdownName:
			group.MarkdownFile = filepath.Join(dir, e.Name())
		default:
			b.report.warnf("ignoring unrecognized file: %q", filepath.Join(name, e.Name()))
		}
	}

	if len(group.Images) == 0 {
		b.report.warnf("group %q contains no images", name)
	}

	b.sortImages(group.Images)
	return group, nil
}

// scanImage stats one image file and, when present, reads its EXIF
// capture time. A stat failure drops the image; missing EXIF does not.
func (b *Builder) scanImage(dir, name string) (*Image, *ImageError) {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ImageError{Path: path, Err: err}
	}
	ext := filepath.Ext(name)
	return &Image{
		Name:     strings.TrimSuffix(name, ext),
		Path:     path,
		FileName: name,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		TakenAt:  probeTakenAt(path),
	}, nil
}

// sortImages orders images within a group. Lexical file-name order is
// the stable default. ByTakenAt puts images with a capture time first,
// ordered by it; images without EXIF data follow in name order, and
// equal times tie-break by name.
func (b *Builder) sortImages(images []Image) {
	sort.SliceStable(images, func(i, j int) bool {
		if b.Config.ImageOrder == ByTakenAt {
			ti, tj := images[i].TakenAt, images[j].TakenAt
			switch {
			case ti.IsZero() != tj.IsZero():
				return tj.IsZero()
			case !ti.Equal(tj):
				return ti.Before(tj)
			}
		}
		return images[i].FileName < images[j].FileName
	})
}

// parseDirName splits "2021-01-01 Fuji, Japan" into its title and
// date. A name without a leading date is a structural error.
func parseDirName(name string) (string, time.Time, error) {
	m := datePrefix.FindStringSubmatch(name)
	if m == nil {
		return "", time.Time{}, &StructuralError{
			Path:   name,
			Reason: "directory name must start with a YYYY-MM-DD date",
		}
	}
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return "", time.Time{}, &StructuralError{
			Path:   name,
			Reason: fmt.Sprintf("invalid date %q in directory name", m[1]),
		}
	}
	return m[3], date, nil
}
