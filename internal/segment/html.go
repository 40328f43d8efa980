package segment

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts visible text from an HTML transcript export,
// skipping scripts and styles. Block elements emit line breaks so
// "NAME:" speaker lines survive into segmentation.
func StripHTML(htmlContent string) string {
	// html.Parse repairs malformed markup rather than failing, and an
	// in-memory reader cannot error.
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "p", "div", "li", "tr", "br", "h1", "h2", "h3", "h4":
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "tr", "h1", "h2", "h3", "h4":
				buf.WriteString("\n")
			}
		}
	}

	walk(doc)
	return buf.String()
}
