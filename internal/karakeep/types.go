package karakeep

// TaggingStatus reports the remote tagging pipeline state for a bookmark.
type TaggingStatus string

const (
	TaggingSuccess TaggingStatus = "success"
	TaggingFailure TaggingStatus = "failure"
	TaggingPending TaggingStatus = "pending"
	TaggingNone    TaggingStatus = "none"
)

// Tag is attached either by the tagging pipeline ("ai") or by a user ("human").
type Tag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AttachedBy string `json:"attachedBy"`
}

// ContentKind discriminates the Content variant. Callers must switch on it
// before touching variant-specific fields.
type ContentKind string

const (
	ContentLink    ContentKind = "link"
	ContentText    ContentKind = "text"
	ContentAsset   ContentKind = "asset"
	ContentUnknown ContentKind = "unknown"
)

// AssetKind is the media type of an asset-kind content payload.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetPDF   AssetKind = "pdf"
)

// Content is the polymorphic bookmark payload. Exactly one variant's fields
// are meaningful per record, selected by Kind.
type Content struct {
	Kind ContentKind `json:"type"`

	// link
	URL                    string `json:"url,omitempty"`
	Title                  string `json:"title,omitempty"`
	Description            string `json:"description,omitempty"`
	HTMLContent            string `json:"htmlContent,omitempty"`
	ImageURL               string `json:"imageUrl,omitempty"`
	ImageAssetID           string `json:"imageAssetId,omitempty"`
	ScreenshotAssetID      string `json:"screenshotAssetId,omitempty"`
	FullPageArchiveAssetID string `json:"fullPageArchiveAssetId,omitempty"`
	VideoAssetID           string `json:"videoAssetId,omitempty"`
	CrawledAt              string `json:"crawledAt,omitempty"`

	// text
	Text      string `json:"text,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`

	// asset
	AssetType AssetKind `json:"assetType,omitempty"`
	AssetID   string    `json:"assetId,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
}

// Bookmark is a remote record. It is created and mutated by the Karakeep
// service; this client only reads it, except for Note which may be pushed
// back via Client.UpdateNote.
type Bookmark struct {
	ID            string        `json:"id"`
	CreatedAt     string        `json:"createdAt"`
	Title         *string       `json:"title"`
	Archived      bool          `json:"archived"`
	Favourited    bool          `json:"favourited"`
	TaggingStatus TaggingStatus `json:"taggingStatus"`
	Note          *string       `json:"note"`
	Summary       *string       `json:"summary"`
	Tags          []Tag         `json:"tags"`
	Content       Content       `json:"content"`
}

// TitleText returns the record-level title, or "" when unset.
func (b *Bookmark) TitleText() string {
	if b.Title == nil {
		return ""
	}
	return *b.Title
}

// NoteText returns the note, or "" when unset.
func (b *Bookmark) NoteText() string {
	if b.Note == nil {
		return ""
	}
	return *b.Note
}

// SetNote adopts a note value in memory, used after a successful push so a
// re-render within the same pass reflects the local edit.
func (b *Bookmark) SetNote(note string) {
	b.Note = &note
}

// SummaryText returns the remote-computed summary, or "" when unset.
func (b *Bookmark) SummaryText() string {
	if b.Summary == nil {
		return ""
	}
	return *b.Summary
}

// EffectiveURL is the content url for link bookmarks and the source url for
// asset bookmarks; other kinds carry no canonical url.
func (b *Bookmark) EffectiveURL() string {
	switch b.Content.Kind {
	case ContentLink:
		return b.Content.URL
	case ContentAsset:
		return b.Content.SourceURL
	default:
		return ""
	}
}

// EffectiveDescription is the link description, or the literal text body for
// text and asset bookmarks.
func (b *Bookmark) EffectiveDescription() string {
	switch b.Content.Kind {
	case ContentLink:
		return b.Content.Description
	case ContentText, ContentAsset:
		return b.Content.Text
	default:
		return ""
	}
}

// ListPage is one page of the paginated bookmark listing.
type ListPage struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Total     int        `json:"total"`
	HasMore   bool       `json:"hasMore"`
}
