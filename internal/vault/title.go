package vault

import (
	"net/url"
	"path"
	"strings"

	"github.com/keepsync/keepsync/internal/karakeep"
)

const maxTextTitleLen = 100

// ResolveTitle derives a human-readable title for a bookmark. It never fails
// and never returns an empty string: the cascade bottoms out on a synthetic
// Bookmark-{id}-{date} name.
func ResolveTitle(b *karakeep.Bookmark) string {
	if title := b.TitleText(); title != "" {
		return title
	}

	var title string
	switch b.Content.Kind {
	case karakeep.ContentLink:
		title = b.Content.Title
		if title == "" {
			title = titleFromURL(b.Content.URL)
		}
	case karakeep.ContentText:
		title = firstLine(b.Content.Text)
	case karakeep.ContentAsset:
		if b.Content.FileName != "" {
			title = strings.TrimSuffix(b.Content.FileName, path.Ext(b.Content.FileName))
		}
		if title == "" {
			title = titleFromURL(b.Content.SourceURL)
		}
	}
	if title != "" {
		return title
	}

	date, _, _ := strings.Cut(b.CreatedAt, "T")
	return "Bookmark-" + b.ID + "-" + date
}

// titleFromURL derives a title from the url's last path segment, falling back
// to the hostname and finally the raw string for unparseable urls.
func titleFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	segment := path.Base(strings.Trim(u.Path, "/"))
	if segment != "" && segment != "." && segment != "/" {
		segment = strings.TrimSuffix(segment, path.Ext(segment))
		segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
		if segment = strings.TrimSpace(segment); segment != "" {
			return segment
		}
	}

	if host := strings.TrimPrefix(u.Hostname(), "www."); host != "" {
		return host
	}
	return rawURL
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	runes := []rune(line)
	if len(runes) > maxTextTitleLen {
		return string(runes[:maxTextTitleLen-3]) + "..."
	}
	return line
}
