package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/saurabh4269/website-content-search/internal/weburl"
)

// InternalLinks returns the absolute http(s) links in html whose host
// matches baseURL's host exactly. Fragments are dropped, so "#top" and
// "/a#section" collapse onto their page. Links are deduplicated by the
// resulting string and keep first-occurrence order.
func InternalLinks(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc := parse(html)
	if doc == nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")

		resolved, ok := weburl.Resolve(base, href)
		if !ok {
			return
		}
		if !weburl.IsFetchable(resolved) || !weburl.SameHost(base, resolved) {
			return
		}

		resolved.Fragment = ""
		resolved.RawFragment = ""

		link := resolved.String()
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})

	return links
}
