// Package extract turns raw HTML into the pieces the pipeline indexes:
// the page's canonical path, its semantic text chunks and its same-site
// links. None of the functions fail; unparsable input yields empty results.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/atom"

	"github.com/saurabh4269/website-content-search/internal/text"
	"github.com/saurabh4269/website-content-search/internal/weburl"
)

// Chunk is one semantically meaningful block of a page.
type Chunk struct {
	// Content is the normalized visible text. Unique within one extraction.
	Content string `json:"content"`
	// HTML is the serialized source element, for presentation only.
	HTML string `json:"html"`
	// Path is the canonical logical path of the page.
	Path string `json:"path"`
}

// chunkSelector lists the block elements considered for chunks.
const chunkSelector = "h1, h2, h3, h4, p, section, article, main"

// noiseTags are structural elements never turned into chunks.
var noiseTags = map[atom.Atom]bool{
	atom.Nav:    true,
	atom.Footer: true,
	atom.Script: true,
	atom.Style:  true,
}

func parse(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

// CanonicalPath derives the stable logical path of a page from, in order,
// its canonical link, its og:url meta tag, or baseURL itself.
func CanonicalPath(html, baseURL string) string {
	base, _ := url.Parse(baseURL)
	doc := parse(html)
	if doc == nil {
		return weburl.LogicalPath(base)
	}
	return canonicalPath(doc, base)
}

func canonicalPath(doc *goquery.Document, base *url.URL) string {
	if href, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok && href != "" {
		if u := resolveHint(base, href); u != nil {
			return weburl.LogicalPath(u)
		}
	}
	if content, ok := doc.Find(`meta[property="og:url"]`).First().Attr("content"); ok && content != "" {
		if u := resolveHint(base, content); u != nil {
			return weburl.LogicalPath(u)
		}
	}
	return weburl.LogicalPath(base)
}

func resolveHint(base *url.URL, ref string) *url.URL {
	if base == nil {
		u, err := url.Parse(strings.TrimSpace(ref))
		if err != nil {
			return nil
		}
		return u
	}
	u, ok := weburl.Resolve(base, ref)
	if !ok {
		return nil
	}
	return u
}

// Chunks walks headings, paragraphs, sections, articles and main content in
// document order and returns every block with at least text.MinChunkWords
// words whose text has not already been emitted.
func Chunks(html, baseURL string) []Chunk {
	doc := parse(html)
	if doc == nil {
		return nil
	}
	base, _ := url.Parse(baseURL)
	path := canonicalPath(doc, base)

	seen := make(map[string]bool)
	var chunks []Chunk

	doc.Find(chunkSelector).Each(func(_ int, sel *goquery.Selection) {
		if noiseTags[sel.Nodes[0].DataAtom] {
			return
		}

		content := text.Normalize(sel.Text())
		if !text.IsSubstantive(content) || seen[content] {
			return
		}

		markup, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}

		seen[content] = true
		chunks = append(chunks, Chunk{
			Content: content,
			HTML:    markup,
			Path:    path,
		})
	})

	return chunks
}
