package galleria

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Order controls how image groups are sorted across the gallery.
type Order int

const (
	MostRecentFirst Order = iota
	OldestFirst
)

// ImageOrder controls how images are sorted within a group.
type ImageOrder int

const (
	// ByName sorts images by file name, the stable default.
	ByName ImageOrder = iota
	// ByTakenAt sorts by EXIF capture time, file name as tiebreaker.
	ByTakenAt
)

// Config holds all configuration for a gallery build.
type Config struct {
	Title   string // Top-level page title (default "Gallery")
	Footer  string // Optional raw HTML footer fragment
	BaseURL string // Canonical site URL; enables sitemap.xml and feed.xml

	InputDir  string // Required: source directory of dated folders
	OutputDir string // Required: target directory for the site

	DryRun bool // Report planned operations without writing
	Prune  bool // Delete stale thumbnails (never in dry-run)

	Order      Order
	ImageOrder ImageOrder

	Workers int // Thumbnail worker count (default GOMAXPROCS)

	ThumbQuality int // JPEG quality for thumbnails (default 80)
}

func (c *Config) setDefaults() {
	if c.Title == "" {
		c.Title = "Gallery"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.ThumbQuality <= 0 {
		c.ThumbQuality = 80
	}
}

func (c *Config) validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("galleria: InputDir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("galleria: OutputDir is required")
	}
	return nil
}

// SiteFile is the site configuration file, galleria.yml, read from the
// input root when present. CLI flags take precedence over its values.
type SiteFile struct {
	Title        string `yaml:"title"`
	Footer       string `yaml:"footer"`
	URL          string `yaml:"url"`
	Order        string `yaml:"order"`       // "most_recent_first" or "oldest_first"
	ImageOrder   string `yaml:"image_order"` // "name" or "taken"
	ThumbQuality int    `yaml:"thumb_quality"`
}

// siteFileName is looked up in the input root and never treated as a
// gallery directory by the scanner.
const siteFileName = "galleria.yml"

// LoadSiteFile reads galleria.yml from dir. A missing file is not an
// error; a malformed one is.
func LoadSiteFile(dir string) (SiteFile, error) {
	var sf SiteFile
	data, err := os.ReadFile(filepath.Join(dir, siteFileName))
	if os.IsNotExist(err) {
		return sf, nil
	}
	if err != nil {
		return sf, fmt.Errorf("read %s: %w", siteFileName, err)
	}
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("parse %s: %w", siteFileName, err)
	}
	return sf, nil
}

// Apply folds file values into cfg for every field the caller left at
// its zero value.
func (sf SiteFile) Apply(cfg *Config) error {
	if cfg.Title == "" {
		cfg.Title = sf.Title
	}
	if cfg.Footer == "" {
		cfg.Footer = sf.Footer
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = sf.URL
	}
	if cfg.ThumbQuality == 0 {
		cfg.ThumbQuality = sf.ThumbQuality
	}
	switch sf.Order {
	case "", "most_recent_first":
	case "oldest_first":
		cfg.Order = OldestFirst
	default:
		return fmt.Errorf("%s: unknown order %q", siteFileName, sf.Order)
	}
	switch sf.ImageOrder {
	case "", "name":
	case "taken":
		cfg.ImageOrder = ByTakenAt
	default:
		return fmt.Errorf("%s: unknown image_order %q", siteFileName, sf.ImageOrder)
	}
	return nil
}

// Option configures additional Builder behavior.
type Option func(*Builder)

// WithThumbnailSizes overrides the small and large thumbnail geometry.
func WithThumbnailSizes(small, large ThumbSize) Option {
	return func(b *Builder) {
		b.small = small
		b.large = large
	}
}
