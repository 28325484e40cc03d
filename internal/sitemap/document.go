// Package sitemap resolves a root sitemap URL into the deduplicated, sorted
// set of page URLs it references, expanding sitemap indexes recursively
// within configurable bounds.
package sitemap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Namespace is the XML namespace of the sitemaps.org 0.9 protocol.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

const (
	elemSitemapIndex = "sitemapindex"
	elemSitemap      = "sitemap"
	elemURL          = "url"
	elemLoc          = "loc"
)

// Kind tells an index document from a leaf sitemap.
type Kind string

const (
	KindUnknown Kind = ""
	KindIndex   Kind = "index"
	KindLeaf    Kind = "leaf"
)

// Document is the interpreted content of one fetched sitemap.
// Index documents populate Sitemaps, leaf documents populate Pages.
type Document struct {
	Kind     Kind
	Sitemaps []string
	Pages    []string
}

// matcher decides whether an element with the given local name belongs to
// the namespace convention it represents.
type matcher func(n *xmlquery.Node, local string) bool

// matchQualified matches elements in the sitemaps.org namespace.
func matchQualified(n *xmlquery.Node, local string) bool {
	return n.Type == xmlquery.ElementNode && n.Data == local && n.NamespaceURI == Namespace
}

// matchBare matches elements that carry no namespace at all.
func matchBare(n *xmlquery.Node, local string) bool {
	return n.Type == xmlquery.ElementNode && n.Data == local && n.NamespaceURI == ""
}

// ParseDocument parses body as XML and classifies it. A document is an index
// when its root element is sitemapindex (in any namespace) or when it
// contains a sitemap element, either qualified or bare.
//
// Surrounding whitespace is stripped from loc text as part of reading the
// element, and empty locs are dropped. The URLs themselves are returned as
// written: no case folding, escaping or other normalization, so duplicates
// are exact string matches only.
func ParseDocument(body []byte) (*Document, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap xml: %w", err)
	}

	root := rootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("parse sitemap xml: %w", errNoRootElement)
	}

	if root.Data == elemSitemapIndex || hasDescendant(root, elemSitemap, matchQualified, matchBare) {
		return &Document{
			Kind:     KindIndex,
			Sitemaps: collectLocs(root, elemSitemap, matchQualified, matchBare),
		}, nil
	}

	pages := collectLocs(root, elemURL, matchQualified)
	if len(pages) == 0 {
		pages = collectLocs(root, elemURL, matchBare)
	}

	return &Document{Kind: KindLeaf, Pages: pages}, nil
}

// rootElement returns the first element child of the document node.
func rootElement(doc *xmlquery.Node) *xmlquery.Node {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return n
		}
	}
	return nil
}

// hasDescendant reports whether any element below n matches local.
func hasDescendant(n *xmlquery.Node, local string, matchers ...matcher) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		if firstMatch(c, local, matchers) != nil || hasDescendant(c, local, matchers...) {
			return true
		}
	}
	return false
}

// collectLocs walks the tree below root in document order and returns the
// trimmed, non-empty loc text of every entry element accepted by one of the
// matchers. The loc child must follow the same convention as its entry.
func collectLocs(root *xmlquery.Node, entry string, matchers ...matcher) []string {
	var locs []string

	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			if m := firstMatch(c, entry, matchers); m != nil {
				if loc := childText(c, elemLoc, m); loc != "" {
					locs = append(locs, loc)
				}
				continue
			}
			walk(c)
		}
	}
	walk(root)

	return locs
}

func firstMatch(n *xmlquery.Node, local string, matchers []matcher) matcher {
	for _, m := range matchers {
		if m(n, local) {
			return m
		}
	}
	return nil
}

// childText returns the trimmed text of the first direct child matching
// local under m.
func childText(n *xmlquery.Node, local string, m matcher) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c, local) {
			if text := strings.TrimSpace(c.InnerText()); text != "" {
				return text
			}
		}
	}
	return ""
}
