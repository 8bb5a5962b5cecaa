package harvest

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/abhishek2004gupta/SHL-Assessment-Recommendation-System/internal/models"
)

const courseIDAttr = "data-course-id"

// ParsePage extracts catalog rows from one listing page. Only the first
// <table> is read; each <tr data-course-id> contributes its first link.
// A page without a table yields no items and no error.
func ParsePage(r io.Reader, siteURL string) ([]models.CatalogItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	table := findFirst(doc, func(n *html.Node) bool { return n.DataAtom == atom.Table })
	if table == nil {
		return nil, nil
	}

	var items []models.CatalogItem
	walk(table, func(n *html.Node) bool {
		if n.DataAtom != atom.Tr || !hasAttr(n, courseIDAttr) {
			return true
		}
		link := findFirst(n, func(c *html.Node) bool { return c.DataAtom == atom.A })
		if link == nil {
			return false
		}
		href := attr(link, "href")
		name := strings.Join(strings.Fields(textContent(link)), " ")
		if href == "" || name == "" {
			return false
		}
		items = append(items, models.CatalogItem{
			Name: name,
			URL:  absoluteURL(siteURL, href),
		})
		return false
	})
	return items, nil
}

// absoluteURL prefixes site to a site-relative href.
func absoluteURL(site, href string) string {
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return strings.TrimRight(site, "/") + "/" + strings.TrimLeft(href, "/")
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
