package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// render runs the markdown walk over an HTML fragment, bypassing the
// readability stage so the cases stay deterministic.
func render(t *testing.T, fragment string) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			renderChildren(&b, n)
		}
	})
	return strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
}

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		expected string
	}{
		{
			name:     "headings",
			fragment: "<h1>Top</h1><h2>Second</h2>",
			expected: "# Top\n\n## Second",
		},
		{
			name:     "paragraphs",
			fragment: "<p>first</p><p>second</p>",
			expected: "first\n\nsecond",
		},
		{
			name:     "link",
			fragment: `<p>see <a href="https://example.com">the docs</a></p>`,
			expected: "see [the docs](https://example.com)",
		},
		{
			name:     "link without href renders as text",
			fragment: `<p><a>plain anchor</a></p>`,
			expected: "plain anchor",
		},
		{
			name:     "emphasis",
			fragment: "<p><strong>bold</strong> and <em>italic</em></p>",
			expected: "**bold** and *italic*",
		},
		{
			name:     "image",
			fragment: `<p><img src="https://example.com/pic.png" alt="a pic"></p>`,
			expected: "![a pic](https://example.com/pic.png)",
		},
		{
			name:     "image without src dropped",
			fragment: `<p>before<img alt="x">after</p>`,
			expected: "beforeafter",
		},
		{
			name:     "unordered list",
			fragment: "<ul><li>one</li><li>two</li></ul>",
			expected: "- one\n- two",
		},
		{
			name:     "ordered list",
			fragment: "<ol><li>first</li><li>second</li></ol>",
			expected: "1. first\n2. second",
		},
		{
			name:     "inline code",
			fragment: "<p>run <code>go doc</code> now</p>",
			expected: "run `go doc` now",
		},
		{
			name:     "fenced code block",
			fragment: "<pre>func main() {\n\tprintln(1)\n}\n</pre>",
			expected: "```\nfunc main() {\n\tprintln(1)\n}\n```",
		},
		{
			name:     "blockquote",
			fragment: "<blockquote><p>quoted line</p></blockquote>",
			expected: "> quoted line",
		},
		{
			name:     "horizontal rule",
			fragment: "<p>a</p><hr><p>b</p>",
			expected: "a\n\n---\n\nb",
		},
		{
			name:     "script and style dropped",
			fragment: "<p>keep</p><script>alert(1)</script><style>p{}</style>",
			expected: "keep",
		},
		{
			name:     "whitespace collapsed",
			fragment: "<p>spread\n  across\n  lines</p>",
			expected: "spread across lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, tt.fragment); got != tt.expected {
				t.Errorf("render(%q) =\n%q\nwant\n%q", tt.fragment, got, tt.expected)
			}
		})
	}
}

func TestMarkdownEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		if got := Markdown(input, "https://example.com"); got != "" {
			t.Errorf("Markdown(%q) = %q, want empty", input, got)
		}
	}
}
