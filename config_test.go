package galleria

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSiteFile(t *testing.T) {
	dir := t.TempDir()
	content := `title: Holiday Photos
footer: <p>all rights reserved</p>
url: https://photos.example.com
order: oldest_first
image_order: taken
thumb_quality: 90
`
	if err := os.WriteFile(filepath.Join(dir, "galleria.yml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sf, err := LoadSiteFile(dir)
	if err != nil {
		t.Fatalf("LoadSiteFile failed: %v", err)
	}

	var cfg Config
	if err := sf.Apply(&cfg); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if cfg.Title != "Holiday Photos" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Footer != "<p>all rights reserved</p>" {
		t.Errorf("Footer = %q", cfg.Footer)
	}
	if cfg.BaseURL != "https://photos.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Order != OldestFirst {
		t.Errorf("Order = %v", cfg.Order)
	}
	if cfg.ImageOrder != ByTakenAt {
		t.Errorf("ImageOrder = %v", cfg.ImageOrder)
	}
	if cfg.ThumbQuality != 90 {
		t.Errorf("ThumbQuality = %d", cfg.ThumbQuality)
	}
}

func TestLoadSiteFileMissing(t *testing.T) {
	sf, err := LoadSiteFile(t.TempDir())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if sf != (SiteFile{}) {
		t.Errorf("sf = %+v, want zero value", sf)
	}
}

func TestLoadSiteFileMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "galleria.yml"), []byte("title: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSiteFile(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSiteFileFlagsTakePrecedence(t *testing.T) {
	sf := SiteFile{Title: "From File", URL: "https://file.example.com"}
	cfg := Config{Title: "From Flag"}

	if err := sf.Apply(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "From Flag" {
		t.Errorf("Title = %q, flag value must win", cfg.Title)
	}
	if cfg.BaseURL != "https://file.example.com" {
		t.Errorf("BaseURL = %q, unset flag must fall back to file", cfg.BaseURL)
	}
}

func TestSiteFileRejectsUnknownOrder(t *testing.T) {
	var cfg Config
	if err := (SiteFile{Order: "sideways"}).Apply(&cfg); err == nil {
		t.Error("unknown order accepted")
	}
	if err := (SiteFile{ImageOrder: "shuffle"}).Apply(&cfg); err == nil {
		t.Error("unknown image_order accepted")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.setDefaults()

	if cfg.Title != "Gallery" {
		t.Errorf("default Title = %q", cfg.Title)
	}
	if cfg.Workers <= 0 {
		t.Errorf("default Workers = %d", cfg.Workers)
	}
	if cfg.ThumbQuality != 80 {
		t.Errorf("default ThumbQuality = %d", cfg.ThumbQuality)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (&Config{OutputDir: "out"}).validate(); err == nil {
		t.Error("missing InputDir accepted")
	}
	if err := (&Config{InputDir: "in"}).validate(); err == nil {
		t.Error("missing OutputDir accepted")
	}
	if err := (&Config{InputDir: "in", OutputDir: "out"}).validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
