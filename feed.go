package galleria

import (
	"bytes"
	"encoding/xml"
	"sort"
	"time"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
	GUID        rssGUID `xml:"guid"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// renderFeed produces an RSS 2.0 feed of the image groups, newest
// first regardless of the configured gallery order. Groups without
// their own page link to the overview.
func renderFeed(title, base string, gallery *Gallery) ([]byte, error) {
	groups := make([]*ImageGroup, 0, len(gallery.Groups))
	for i := range gallery.Groups {
		groups = append(groups, &gallery.Groups[i])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})

	items := make([]rssItem, 0, len(groups))
	for _, g := range groups {
		// A group without its own page has no URL of its own: it links
		// to the overview, and its guid is a stable identifier rather
		// than a permalink.
		link := BuildURL(base)
		guid := rssGUID{IsPermaLink: false, Value: BuildURL(base, webPath(g.Dir))}
		if g.HasOwnPage() {
			link = BuildURL(base, webPath(g.Dir))
			guid = rssGUID{IsPermaLink: true, Value: link}
		}
		items = append(items, rssItem{
			Title:   g.Title,
			Link:    link,
			PubDate: g.Date.Format(time.RFC1123Z),
			GUID:    guid,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title: title,
			Link:  base,
			Items: items,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(feed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
