// Package weburl normalizes user-supplied site references and derives the
// logical paths and same-site links the crawler works with.
package weburl

import (
	"net/url"
	"strings"
)

// Normalize prefixes raw with https:// unless it already starts with an
// http:// or https:// scheme. Host reachability is not checked.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// LogicalPath strips trailing slashes from u's path and re-appends a single
// one when something remains. The site root therefore maps to "".
func LogicalPath(u *url.URL) string {
	if u == nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// Resolve resolves href against base. The fragment is kept.
func Resolve(base *url.URL, href string) (*url.URL, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	return base.ResolveReference(ref), true
}

// IsFetchable reports whether u uses a scheme the fetcher can retrieve.
func IsFetchable(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// SameHost compares hosts exactly, port included. Subdomains differ.
func SameHost(a, b *url.URL) bool {
	return a.Host == b.Host
}
