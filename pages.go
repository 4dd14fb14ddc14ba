package galleria

import (
	"fmt"
	"os"
)

// buildPages transforms the scanned gallery plus thumbnail results into
// the overview page and one page per group with a markdown description.
// Ordering is taken from the scanner's canonical sequence, never from
// thumbnail completion order.
//
// Images whose thumbnail failed are omitted so a page never carries a
// broken link; the failures are already on the report.
func (b *Builder) buildPages(gallery *Gallery, recs map[string]ThumbRecord, failed map[[2]int]bool) ([]Page, error) {
	overview := Page{
		Title:      b.Config.Title,
		Footer:     b.Config.Footer,
		OutputPath: "index.html",
	}
	var pages []Page

	for gi := range gallery.Groups {
		group := &gallery.Groups[gi]

		pg := PageGroup{
			Title: resolveTitle(group),
			Date:  group.Date,
		}
		for ii := range group.Images {
			if failed[[2]int{gi, ii}] {
				continue
			}
			pg.Images = append(pg.Images, b.pageImage(group, &group.Images[ii], thumbSmall, "", recs))
		}
		overview.Groups = append(overview.Groups, pg)

		if !group.HasOwnPage() {
			continue
		}
		md, err := os.ReadFile(group.MarkdownFile)
		if err != nil {
			return nil, fmt.Errorf("read markdown %q: %w", group.MarkdownFile, err)
		}
		own := PageGroup{
			Title:    GroupTitle{Mode: TitlePlain, Text: group.Title},
			Date:     group.Date,
			Markdown: string(md),
		}
		for ii := range group.Images {
			if failed[[2]int{gi, ii}] {
				continue
			}
			own.Images = append(own.Images, b.pageImage(group, &group.Images[ii], thumbLarge, "../", recs))
		}
		pages = append(pages, Page{
			Title:       group.Title,
			Footer:      b.Config.Footer,
			Groups:      []PageGroup{own},
			OutputPath:  joinURL(webPath(group.Dir), "index.html"),
			AssetPrefix: "../",
		})
	}

	return append([]Page{overview}, pages...), nil
}

// pageImage resolves one image's rendering-facing URLs and dimensions.
// All URLs are relative to the page they appear on: group pages live
// one level below the output root, so theirs carry a "../" prefix.
func (b *Builder) pageImage(group *ImageGroup, img *Image, class, prefix string, recs map[string]ThumbRecord) PageImage {
	thumbRel := thumbRelPath(group, img, class)
	pi := PageImage{
		Name:      img.Name,
		URL:       prefix + imageRelPath(group, img),
		Thumbnail: prefix + thumbRel,
		Anchor:    Slugify(img.Name),
		TakenAt:   img.TakenAt,
	}
	if rec, ok := recs[thumbRel]; ok {
		pi.Width = rec.Width
		pi.Height = rec.Height
	}
	return pi
}

// resolveTitle decides how a group is titled on the overview page. A
// markdown description turns the title into a link to the group's own
// page. The title is suppressed entirely when the group holds a single
// image whose name repeats it.
func resolveTitle(group *ImageGroup) GroupTitle {
	if group.HasOwnPage() {
		return GroupTitle{Mode: TitleLinked, Text: group.Title, URL: webPath(group.Dir) + "/"}
	}
	if len(group.Images) == 1 && group.Images[0].Name == group.Title {
		return GroupTitle{Mode: TitlePlain}
	}
	return GroupTitle{Mode: TitlePlain, Text: group.Title}
}
