// Package views renders gallery pages as templ components.
//
// The components are plain templ.ComponentFunc values writing HTML, so
// the core never knows anything about markup beyond handing over a
// finished Page.
package views

import (
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/okvist/galleria"
	"github.com/okvist/galleria/markdown"
)

// Funcs returns the standard renderer set for galleria.New.
func Funcs() galleria.ViewFuncs {
	return galleria.ViewFuncs{
		Overview:  Overview,
		GroupPage: GroupPage,
	}
}

// Overview renders the top-level page listing every image group.
func Overview(p galleria.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b pageWriter
		b.head(p)
		b.raw(`<header class="site"><h1>`)
		b.text(p.Title)
		b.raw(`</h1></header><main>`)
		for _, g := range p.Groups {
			b.group(g)
		}
		b.raw(`</main>`)
		b.foot(p)
		_, err := w.Write([]byte(b.String()))
		return err
	})
}

// GroupPage renders the dedicated page of a single image group: its
// markdown description above a grid of large thumbnails.
func GroupPage(p galleria.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b pageWriter
		b.head(p)
		b.raw(`<header class="site"><h1>`)
		b.text(p.Title)
		b.raw(`</h1></header><main>`)
		for _, g := range p.Groups {
			b.raw(`<p class="date">`)
			b.text(g.Date.Format("January 2, 2006"))
			b.raw(`</p>`)
			if g.Markdown != "" {
				b.raw(`<div class="description">`)
				b.raw(markdown.Render(g.Markdown))
				b.raw(`</div>`)
			}
			b.grid(g)
		}
		b.raw(`</main>`)
		b.foot(p)
		_, err := w.Write([]byte(b.String()))
		return err
	})
}

// pageWriter accumulates escaped HTML for one page.
type pageWriter struct {
	buf []byte
}

func (b *pageWriter) raw(s string)  { b.buf = append(b.buf, s...) }
func (b *pageWriter) text(s string) { b.raw(html.EscapeString(s)) }
func (b *pageWriter) String() string {
	return string(b.buf)
}

func (b *pageWriter) head(p galleria.Page) {
	b.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"/>`)
	b.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
	b.raw(`<title>`)
	b.text(p.Title)
	b.raw(`</title><link rel="stylesheet" href="`)
	b.raw(p.AssetPrefix)
	b.raw(`css/style.css"/></head><body>`)
}

func (b *pageWriter) foot(p galleria.Page) {
	if p.Footer != "" {
		// The footer is a caller-supplied HTML fragment by contract.
		b.raw(`<footer class="site">`)
		b.raw(p.Footer)
		b.raw(`</footer>`)
	}
	b.raw(`<script src="`)
	b.raw(p.AssetPrefix)
	b.raw(`js/gallery.js"></script></body></html>`)
}

func (b *pageWriter) group(g galleria.PageGroup) {
	b.raw(`<section class="group">`)
	switch {
	case g.Title.Mode == galleria.TitleLinked:
		b.raw(`<h2><a href="`)
		b.text(g.Title.URL)
		b.raw(`">`)
		b.text(g.Title.Text)
		b.raw(`</a></h2>`)
	case g.Title.Text != "":
		b.raw(`<h2>`)
		b.text(g.Title.Text)
		b.raw(`</h2>`)
	}
	b.raw(`<p class="date">`)
	b.text(g.Date.Format("January 2, 2006"))
	b.raw(`</p>`)
	b.grid(g)
	b.raw(`</section>`)
}

func (b *pageWriter) grid(g galleria.PageGroup) {
	b.raw(`<div class="grid">`)
	for _, img := range g.Images {
		b.raw(`<a href="`)
		b.text(img.URL)
		b.raw(`" id="`)
		b.text(img.Anchor)
		b.raw(`" data-anchor="`)
		b.text(img.Anchor)
		b.raw(`" data-name="`)
		b.text(img.Name)
		b.raw(`"><img src="`)
		b.text(img.Thumbnail)
		b.raw(`" alt="`)
		b.text(img.Name)
		b.raw(`"`)
		if !img.TakenAt.IsZero() {
			b.raw(` title="`)
			b.text(img.TakenAt.Format("January 2, 2006"))
			b.raw(`"`)
		}
		b.raw(` loading="lazy" decoding="async"`)
		if img.Width > 0 && img.Height > 0 {
			b.raw(` width="` + strconv.Itoa(img.Width) + `" height="` + strconv.Itoa(img.Height) + `"`)
		}
		b.raw(`/></a>`)
	}
	b.raw(`</div>`)
}
