package galleria

import "time"

// Image is a single source image inside a dated directory.
// Immutable once scanned.
type Image struct {
	Name     string    // display name, file name without extension
	Path     string    // full path to the source file
	FileName string    // base name of the source file
	Size     int64     // source size in bytes, part of the fingerprint
	ModTime  time.Time // source mtime, part of the fingerprint
	TakenAt  time.Time // EXIF DateTimeOriginal, zero when absent
}

// ImageGroup is one dated source directory and its images.
type ImageGroup struct {
	Dir          string // directory name relative to the input root
	Title        string // directory name with the date prefix stripped
	Date         time.Time
	Images       []Image // sorted per Config.ImageOrder, lexical by default
	MarkdownFile string  // path to index.md, empty when the group has none
}

// HasOwnPage reports whether the group gets its own rendered page.
// Only groups with a markdown description do.
func (g *ImageGroup) HasOwnPage() bool {
	return g.MarkdownFile != ""
}

// Gallery is the scanned input tree, groups sorted per Config.Order.
type Gallery struct {
	Groups []ImageGroup
}

// TitleMode distinguishes a plain overview heading from one linking to
// a group's own page.
type TitleMode int

const (
	TitlePlain TitleMode = iota
	TitleLinked
)

// GroupTitle is the resolved heading of a group on the overview page.
// The markdown-vs-plain decision is made by the page model builder so
// templates never inspect the group themselves.
type GroupTitle struct {
	Mode TitleMode
	Text string
	URL  string // set only when Mode == TitleLinked
}

// PageImage is one image as it appears in rendered markup.
type PageImage struct {
	Name      string
	URL       string // web path of the copied original
	Thumbnail string // web path of the generated thumbnail
	Anchor    string // slug used as lightbox anchor and history fragment
	Width     int    // thumbnail pixel width, 0 when unknown
	Height    int    // thumbnail pixel height, 0 when unknown
	TakenAt   time.Time
}

// PageGroup is one image group as it appears on a page. Linkage to a
// group's own page lives on Title, which carries the resolved URL.
type PageGroup struct {
	Title  GroupTitle
	Date   time.Time
	Images []PageImage

	// Markdown holds the raw description for group pages; the views
	// package renders it to HTML.
	Markdown string
}

// Page is one output HTML document ready for rendering.
type Page struct {
	Title      string
	Footer     string // raw HTML fragment, may be empty
	Groups     []PageGroup
	OutputPath string // relative to the output root, e.g. "index.html"

	// AssetPrefix prepends page-relative links to css/ and js/ for
	// pages that live below the output root.
	AssetPrefix string
}
