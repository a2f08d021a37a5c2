package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// hiddenSelector matches elements whose text never renders on the page
const hiddenSelector = "script, style, template, noscript"

// ExtractVisibleText parses an HTML document and returns the trimmed, non-empty
// text of every visible text node in document order. Malformed markup is parsed
// best effort; only a failing reader produces an error.
func ExtractVisibleText(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return VisibleText(doc), nil
}

// VisibleText collects visible text from an already parsed document.
// Hidden elements are removed from doc.
func VisibleText(doc *goquery.Document) []string {
	doc.Find(hiddenSelector).Remove()

	texts := make([]string, 0)
	for _, n := range doc.Nodes {
		texts = collectText(n, texts)
	}
	return texts
}

// collectText walks the node tree depth first, appending text nodes. Comments
// and doctype nodes are skipped by type.
func collectText(n *html.Node, out []string) []string {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			out = append(out, text)
		}
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = collectText(c, out)
	}
	return out
}
