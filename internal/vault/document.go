package vault

import (
	"context"
	"strings"

	"github.com/keepsync/keepsync/internal/karakeep"
)

// AssetFetcher ensures a local cached copy of a remote asset exists. A false
// result means "no path produced"; the renderer proceeds without the image.
type AssetFetcher interface {
	Ensure(ctx context.Context, rawURL, assetID, title string) (string, bool)
}

// Extractor converts raw crawled HTML into a best-effort markdown rendering.
// Implementations are pure; an empty result means extraction produced nothing.
type Extractor func(rawHTML, pageURL string) string

// RenderOptions control the optional document sections.
type RenderOptions struct {
	ExtractContent bool
}

// Renderer serializes a bookmark into a complete vault document. Rendering is
// idempotent given unchanged inputs and a warm asset cache.
type Renderer struct {
	assets   AssetFetcher
	assetURL func(assetID string) string
	extract  Extractor
	opts     RenderOptions
}

func NewRenderer(assets AssetFetcher, assetURL func(string) string, extract Extractor, opts RenderOptions) *Renderer {
	return &Renderer{
		assets:   assets,
		assetURL: assetURL,
		extract:  extract,
		opts:     opts,
	}
}

// Render produces the full document text: frontmatter followed by the body
// sections. It may download assets as a side effect.
func (r *Renderer) Render(ctx context.Context, b *karakeep.Bookmark, title string) string {
	note := b.NoteText()

	tags := make([]string, 0, len(b.Tags))
	for _, tag := range b.Tags {
		tags = append(tags, tag.Name)
	}

	var fullPageArchive string
	if b.Content.Kind == karakeep.ContentLink && b.Content.FullPageArchiveAssetID != "" {
		fullPageArchive = r.assetURL(b.Content.FullPageArchiveAssetID)
	}

	fm := Frontmatter{
		BookmarkID:      b.ID,
		URL:             b.EffectiveURL(),
		Title:           title,
		Date:            b.CreatedAt,
		FullPageArchive: fullPageArchive,
		Tags:            tags,
		Note:            note,
		// First render establishes the reconciliation baseline.
		OriginalNote: note,
		Summary:      b.SummaryText(),
	}

	var body strings.Builder
	body.WriteString("\n# " + title + "\n")

	if image := r.resolveImage(ctx, b, title); image != "" {
		body.WriteString("\n![" + title + "](" + image + ")\n")
	}

	if summary := b.SummaryText(); summary != "" {
		body.WriteString("\n## Summary\n\n" + summary + "\n")
	}

	if desc := b.EffectiveDescription(); desc != "" {
		body.WriteString("\n## Description\n\n" + desc + "\n")
	}

	if r.opts.ExtractContent && b.Content.Kind == karakeep.ContentLink && b.Content.HTMLContent != "" {
		if extracted := r.extract(b.Content.HTMLContent, b.Content.URL); extracted != "" {
			body.WriteString("\n## Content\n\n" + extracted + "\n")
		}
	}

	body.WriteString("\n## Notes\n\n" + note + "\n")

	if url := b.EffectiveURL(); url != "" && b.Content.Kind != karakeep.ContentAsset {
		body.WriteString("\n[Visit Link](" + url + ")\n")
	}

	return fm.Encode() + body.String()
}

// resolveImage decides what image to embed, if any. Remote-hosted asset ids
// go through the asset fetcher; external image urls embed directly without a
// download.
func (r *Renderer) resolveImage(ctx context.Context, b *karakeep.Bookmark, title string) string {
	switch b.Content.Kind {
	case karakeep.ContentAsset:
		if b.Content.AssetType != karakeep.AssetImage {
			return ""
		}
		if b.Content.AssetID != "" {
			if local, ok := r.assets.Ensure(ctx, r.assetURL(b.Content.AssetID), b.Content.AssetID, title); ok {
				return local
			}
			return ""
		}
		return b.Content.SourceURL
	case karakeep.ContentLink:
		if b.Content.ImageAssetID != "" {
			if local, ok := r.assets.Ensure(ctx, r.assetURL(b.Content.ImageAssetID), b.Content.ImageAssetID, title); ok {
				return local
			}
			return ""
		}
		if b.Content.ImageURL != "" {
			return b.Content.ImageURL
		}
		if b.Content.ScreenshotAssetID != "" {
			if local, ok := r.assets.Ensure(ctx, r.assetURL(b.Content.ScreenshotAssetID), b.Content.ScreenshotAssetID, title); ok {
				return local
			}
		}
		return ""
	default:
		return ""
	}
}
