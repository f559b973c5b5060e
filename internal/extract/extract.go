// Package extract turns raw crawled HTML into markdown. It wraps readability
// extraction and a small goquery-driven markdown walk; the whole package is a
// pure best-effort function from the sync core's point of view.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

var blankLines = regexp.MustCompile(`\n{3,}`)
var spaceRun = regexp.MustCompile(`[ \t\r\n]+`)

// Markdown converts raw HTML into a best-effort markdown rendering. It never
// fails: any parse problem yields an empty string, which callers treat as
// "no extracted content".
func Markdown(rawHTML, pageURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	var base *url.URL
	if pageURL != "" {
		base, _ = url.Parse(pageURL)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			renderChildren(&b, n)
		}
	})

	return strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
}

func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
	case html.ElementNode:
		renderElement(b, n)
	}
}

func renderElement(b *strings.Builder, n *html.Node) {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		b.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		renderChildren(b, n)
		b.WriteString("\n\n")
	case "p", "div", "section", "article", "header", "footer", "figure", "table", "tr":
		b.WriteString("\n\n")
		renderChildren(b, n)
		b.WriteString("\n\n")
	case "br":
		b.WriteString("\n")
	case "hr":
		b.WriteString("\n\n---\n\n")
	case "a":
		href := attr(n, "href")
		if href == "" {
			renderChildren(b, n)
			return
		}
		b.WriteString("[")
		renderChildren(b, n)
		b.WriteString("](" + href + ")")
	case "img":
		if src := attr(n, "src"); src != "" {
			b.WriteString("![" + attr(n, "alt") + "](" + src + ")")
		}
	case "strong", "b":
		b.WriteString("**")
		renderChildren(b, n)
		b.WriteString("**")
	case "em", "i":
		b.WriteString("*")
		renderChildren(b, n)
		b.WriteString("*")
	case "pre":
		b.WriteString("\n\n```\n" + strings.TrimRight(textContent(n), "\n") + "\n```\n\n")
	case "code":
		// Inline only; fenced blocks are handled by the pre case.
		b.WriteString("`" + textContent(n) + "`")
	case "ul":
		b.WriteString("\n\n")
		renderListItems(b, n, "")
		b.WriteString("\n")
	case "ol":
		b.WriteString("\n\n")
		renderListItems(b, n, "1")
		b.WriteString("\n")
	case "blockquote":
		var inner strings.Builder
		renderChildren(&inner, n)
		b.WriteString("\n\n")
		for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
			b.WriteString("> " + strings.TrimSpace(line) + "\n")
		}
		b.WriteString("\n")
	case "script", "style", "noscript", "iframe", "svg":
		// dropped
	default:
		renderChildren(b, n)
	}
}

func renderListItems(b *strings.Builder, list *html.Node, ordered string) {
	index := 1
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var item strings.Builder
		renderChildren(&item, c)
		text := strings.TrimSpace(spaceRun.ReplaceAllString(item.String(), " "))
		if text == "" {
			continue
		}
		if ordered != "" {
			b.WriteString(strconv.Itoa(index) + ". " + text + "\n")
			index++
		} else {
			b.WriteString("- " + text + "\n")
		}
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
