package situaciotest

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// Parse parses a rendered HTML document or fails the test.
func Parse(tb testing.TB, doc []byte) *html.Node {
	tb.Helper()
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		tb.Fatalf("parse html: %v", err)
	}
	return root
}

// TextByClass returns the trimmed text of every element carrying class, in document order.
func TextByClass(tb testing.TB, doc []byte, class string) []string {
	tb.Helper()
	var out []string
	Walk(Parse(tb, doc), func(n *html.Node) {
		if n.Type == html.ElementNode && HasClass(n, class) {
			out = append(out, strings.TrimSpace(Text(n)))
		}
	})
	return out
}

// CountElements counts elements with the given tag and class ("" matches any class).
func CountElements(tb testing.TB, doc []byte, tag, class string) int {
	tb.Helper()
	count := 0
	Walk(Parse(tb, doc), func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != tag {
			return
		}
		if class == "" || HasClass(n, class) {
			count++
		}
	})
	return count
}

func Walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

func HasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func Text(n *html.Node) string {
	var b strings.Builder
	Walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
