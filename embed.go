package galleria

import "embed"

// EmbeddedAssets contains the static assets shipped with every
// generated gallery: style.css and the lightbox script gallery.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// staticAssets maps embedded files to their output-tree locations.
var staticAssets = []struct {
	embedded string
	out      string
}{
	{"embedded/style.css", "css/style.css"},
	{"embedded/gallery.js", "js/gallery.js"},
}

// writeAssets copies the embedded assets into the output tree through
// the regular write path, so dry-run reporting and change detection
// apply to them like any other file.
func (b *Builder) writeAssets() {
	for _, a := range staticAssets {
		data, err := EmbeddedAssets.ReadFile(a.embedded)
		if err != nil {
			// Embedded files are compiled in; a miss is a packaging bug.
			b.fail(a.out, err)
			continue
		}
		b.writeFile(a.out, data, "asset")
	}
}
