package galleria

import (
	"bytes"
	"encoding/xml"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap produces sitemap.xml listing the overview page and
// every group page, using the configured canonical base URL.
func renderSitemap(base string, gallery *Gallery) ([]byte, error) {
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for i := range gallery.Groups {
		g := &gallery.Groups[i]
		if !g.HasOwnPage() {
			continue
		}
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, webPath(g.Dir)),
			LastMod: g.Date.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
