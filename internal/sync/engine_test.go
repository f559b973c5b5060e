package sync

import (
	"context"
	"errors"
	"fmt"
	"path"
	"testing"
	"time"

	"github.com/keepsync/keepsync/internal/karakeep"
	"github.com/keepsync/keepsync/internal/logger"
	"github.com/keepsync/keepsync/internal/vault"
)

// memStore is an in-memory vault.FileStore.
type memStore struct {
	files map[string]string
	dirs  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{files: map[string]string{}, dirs: map[string]bool{}}
}

func (s *memStore) Exists(p string) bool {
	_, ok := s.files[p]
	return ok || s.dirs[p]
}

func (s *memStore) MkdirAll(p string) error {
	s.dirs[p] = true
	return nil
}

func (s *memStore) ReadFile(p string) (string, error) {
	content, ok := s.files[p]
	if !ok {
		return "", fmt.Errorf("no such file: %s", p)
	}
	return content, nil
}

func (s *memStore) WriteFile(p, content string) error {
	s.files[p] = content
	return nil
}

func (s *memStore) WriteBinary(p string, data []byte) error {
	s.files[p] = string(data)
	return nil
}

// fakeClient serves canned pages and records note pushes.
type fakeClient struct {
	pages       [][]karakeep.Bookmark
	listErrPage int // 1-based page that fails; 0 means never
	pushes      map[string]string
	pushFails   bool
	listStarted chan struct{}
	listRelease chan struct{}
}

func (c *fakeClient) ListBookmarks(ctx context.Context, page, limit int, filters karakeep.ListFilters) (*karakeep.ListPage, error) {
	if c.listStarted != nil {
		c.listStarted <- struct{}{}
		<-c.listRelease
	}
	if c.listErrPage != 0 && page == c.listErrPage {
		return nil, errors.New("unexpected status 502")
	}
	if page > len(c.pages) {
		return &karakeep.ListPage{}, nil
	}
	return &karakeep.ListPage{
		Bookmarks: c.pages[page-1],
		Total:     len(c.pages) * limit,
		HasMore:   page < len(c.pages),
	}, nil
}

func (c *fakeClient) UpdateNote(ctx context.Context, bookmarkID, note string) bool {
	if c.pushFails {
		return false
	}
	if c.pushes == nil {
		c.pushes = map[string]string{}
	}
	c.pushes[bookmarkID] = note
	return true
}

// fakeConfig implements config.ConfigProvider for tests.
type fakeConfig struct {
	apiKey       string
	excludedTags []string
	updateFiles  bool
	biNotes      bool
	lastSync     time.Time
}

func (c *fakeConfig) GetAPIKey() string            { return c.apiKey }
func (c *fakeConfig) GetBaseURL() string           { return "https://keep.example.com/api/v1" }
func (c *fakeConfig) GetSyncFolder() string        { return "Karakeep" }
func (c *fakeConfig) GetAttachmentsFolder() string { return "Karakeep/attachments" }
func (c *fakeConfig) GetSyncInterval() int         { return 60 }
func (c *fakeConfig) IsExcludeArchived() bool      { return true }
func (c *fakeConfig) IsOnlyFavorites() bool        { return false }
func (c *fakeConfig) GetExcludedTags() []string    { return c.excludedTags }
func (c *fakeConfig) IsUpdateExisting() bool       { return c.updateFiles }
func (c *fakeConfig) IsBidirectionalNotes() bool   { return c.biNotes }
func (c *fakeConfig) IsExtractContent() bool       { return false }
func (c *fakeConfig) GetLogPath() string           { return "" }
func (c *fakeConfig) GetPidFile() string           { return "" }
func (c *fakeConfig) GetLastSync() string          { return c.lastSync.Format(time.RFC3339) }
func (c *fakeConfig) SetLastSync(t time.Time) error {
	c.lastSync = t
	return nil
}

type nopFetcher struct{}

func (nopFetcher) Ensure(ctx context.Context, rawURL, assetID, title string) (string, bool) {
	return "", false
}

func newTestEngine(cfg *fakeConfig, client *fakeClient, store *memStore) *Engine {
	renderer := vault.NewRenderer(
		nopFetcher{},
		func(id string) string { return "https://keep.example.com/api/v1/assets/" + id },
		func(rawHTML, pageURL string) string { return "" },
		vault.RenderOptions{},
	)
	return NewEngine(cfg, client, store, renderer, logger.NewNop())
}

func note(s string) *string { return &s }

func linkBookmark(id, title, url string) karakeep.Bookmark {
	return karakeep.Bookmark{
		ID:        id,
		CreatedAt: "2024-01-05T10:00:00Z",
		Title:     &title,
		Content:   karakeep.Content{Kind: karakeep.ContentLink, URL: url},
	}
}

func docPath(title string) string {
	return path.Join("Karakeep", vault.FileStem(title, "2024-01-05T10:00:00Z")+".md")
}

func TestRunPassCreatesDocuments(t *testing.T) {
	client := &fakeClient{pages: [][]karakeep.Bookmark{{
		linkBookmark("b1", "First Post", "https://example.com/first"),
		linkBookmark("b2", "Second Post", "https://example.com/second"),
	}}}
	cfg := &fakeConfig{apiKey: "key"}
	store := newMemStore()

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Synced != 2 {
		t.Errorf("Synced = %d, want 2", result.Synced)
	}
	if !store.Exists(docPath("First Post")) || !store.Exists(docPath("Second Post")) {
		t.Errorf("expected documents missing, files: %v", store.files)
	}
	if cfg.lastSync.IsZero() {
		t.Error("last sync timestamp was not recorded")
	}
}

func TestRunPassMissingAPIKey(t *testing.T) {
	engine := newTestEngine(&fakeConfig{}, &fakeClient{}, newMemStore())
	if _, err := engine.RunPass(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestRunPassTagExclusion(t *testing.T) {
	draft := linkBookmark("b1", "Draft Post", "https://example.com/draft")
	draft.Tags = []karakeep.Tag{{ID: "t1", Name: "Draft", AttachedBy: "human"}}

	favDraft := linkBookmark("b2", "Loved Draft", "https://example.com/loved")
	favDraft.Tags = []karakeep.Tag{{ID: "t1", Name: "Draft", AttachedBy: "human"}}
	favDraft.Favourited = true

	client := &fakeClient{pages: [][]karakeep.Bookmark{{draft, favDraft}}}
	cfg := &fakeConfig{apiKey: "key", excludedTags: []string{"draft"}}
	store := newMemStore()

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Excluded != 1 {
		t.Errorf("Excluded = %d, want 1 (case-insensitive tag match)", result.Excluded)
	}
	if result.Synced != 1 {
		t.Errorf("Synced = %d, want 1 (favorited bookmarks are never tag-excluded)", result.Synced)
	}
	if store.Exists(docPath("Draft Post")) {
		t.Error("excluded bookmark must not produce a document")
	}
}

func TestRunPassSkipsExistingWithoutUpdateFlag(t *testing.T) {
	b := linkBookmark("b1", "First Post", "https://example.com/first")
	client := &fakeClient{pages: [][]karakeep.Bookmark{{b}}}
	cfg := &fakeConfig{apiKey: "key"}
	store := newMemStore()
	store.files[docPath("First Post")] = "original content"

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if store.files[docPath("First Post")] != "original content" {
		t.Error("existing file was rewritten despite update-existing being off")
	}
}

// seedDocument writes a rendered document with a chosen notes value and
// original_note marker, simulating a prior sync plus an optional local edit.
func seedDocument(t *testing.T, store *memStore, b karakeep.Bookmark, title, currentNote, originalNote string) {
	t.Helper()
	fm := vault.Frontmatter{
		BookmarkID:   b.ID,
		URL:          b.EffectiveURL(),
		Title:        title,
		Date:         b.CreatedAt,
		Note:         originalNote,
		OriginalNote: originalNote,
	}
	body := "\n# " + title + "\n\n## Notes\n\n" + currentNote + "\n\n[Visit Link](" + b.EffectiveURL() + ")\n"
	store.files[docPath(title)] = fm.Encode() + body
}

func TestReconciliationConvergence(t *testing.T) {
	b := linkBookmark("b1", "First Post", "https://example.com/first")
	b.Note = note("A")

	client := &fakeClient{pages: [][]karakeep.Bookmark{{b}}}
	cfg := &fakeConfig{apiKey: "key", biNotes: true, updateFiles: true}
	store := newMemStore()
	seedDocument(t, store, b, "First Post", "B", "A")

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Updated != 1 {
		t.Errorf("Updated = %d, want 1", result.Updated)
	}
	if client.pushes["b1"] != "B" {
		t.Errorf("pushed note = %q, want B", client.pushes["b1"])
	}

	// The rewritten file adopts the edit as the new baseline.
	fm, ok := vault.ParseFrontmatter(store.files[docPath("First Post")])
	if !ok {
		t.Fatal("rewritten document has no frontmatter")
	}
	if fm.Note != "B" || fm.OriginalNote != "B" {
		t.Errorf("note/original_note = %q/%q, want B/B", fm.Note, fm.OriginalNote)
	}

	// A second pass with local and remote both at B pushes nothing.
	b2 := b
	b2.Note = note("B")
	client2 := &fakeClient{pages: [][]karakeep.Bookmark{{b2}}}
	if _, err := newTestEngine(cfg, client2, store).RunPass(context.Background()); err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if len(client2.pushes) != 0 {
		t.Errorf("second pass pushed %v, want none", client2.pushes)
	}
}

func TestReconciliationNoOpWhenCurrentMatchesRemote(t *testing.T) {
	b := linkBookmark("b1", "First Post", "https://example.com/first")
	b.Note = note("B")

	client := &fakeClient{pages: [][]karakeep.Bookmark{{b}}}
	cfg := &fakeConfig{apiKey: "key", biNotes: true}
	store := newMemStore()
	// Stale marker: original still A, but the remote already carries B.
	seedDocument(t, store, b, "First Post", "B", "A")

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Updated != 0 || len(client.pushes) != 0 {
		t.Errorf("already-synced value was re-pushed: updated=%d pushes=%v", result.Updated, client.pushes)
	}
}

func TestReconciliationFailedPushKeepsRemoteNote(t *testing.T) {
	b := linkBookmark("b1", "First Post", "https://example.com/first")
	b.Note = note("A")

	client := &fakeClient{pages: [][]karakeep.Bookmark{{b}}, pushFails: true}
	cfg := &fakeConfig{apiKey: "key", biNotes: true, updateFiles: true}
	store := newMemStore()
	seedDocument(t, store, b, "First Post", "B", "A")

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0 after failed push", result.Updated)
	}
	// The re-render falls back to the remote's note since the push failed.
	fm, _ := vault.ParseFrontmatter(store.files[docPath("First Post")])
	if fm.Note != "A" {
		t.Errorf("note = %q, want remote value A", fm.Note)
	}
}

func TestRunPassReentrancy(t *testing.T) {
	client := &fakeClient{
		pages:       [][]karakeep.Bookmark{{linkBookmark("b1", "First Post", "https://example.com/first")}},
		listStarted: make(chan struct{}),
		listRelease: make(chan struct{}),
	}
	cfg := &fakeConfig{apiKey: "key"}
	store := newMemStore()
	engine := newTestEngine(cfg, client, store)

	done := make(chan error, 1)
	go func() {
		_, err := engine.RunPass(context.Background())
		done <- err
	}()

	<-client.listStarted // first pass is inside the list call

	if _, err := engine.RunPass(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("concurrent pass err = %v, want ErrSyncInProgress", err)
	}
	if len(store.files) != 0 {
		t.Errorf("rejected pass altered files: %v", store.files)
	}

	close(client.listRelease)
	if err := <-done; err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
}

func TestRunPassTransportErrorKeepsPartialProgress(t *testing.T) {
	client := &fakeClient{
		pages: [][]karakeep.Bookmark{
			{linkBookmark("b1", "First Post", "https://example.com/first")},
			{linkBookmark("b2", "Second Post", "https://example.com/second")},
		},
		listErrPage: 2,
	}
	cfg := &fakeConfig{apiKey: "key"}
	store := newMemStore()

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err == nil {
		t.Fatal("expected transport error to surface")
	}
	if result.Synced != 1 {
		t.Errorf("Synced = %d, want 1 (partial progress kept)", result.Synced)
	}
	if !store.Exists(docPath("First Post")) {
		t.Error("partial progress was rolled back")
	}
}

func TestRunPassPaginates(t *testing.T) {
	client := &fakeClient{pages: [][]karakeep.Bookmark{
		{linkBookmark("b1", "First Post", "https://example.com/first")},
		{linkBookmark("b2", "Second Post", "https://example.com/second")},
	}}
	cfg := &fakeConfig{apiKey: "key"}
	store := newMemStore()

	result, err := newTestEngine(cfg, client, store).RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if result.Synced != 2 {
		t.Errorf("Synced = %d, want 2 across pages", result.Synced)
	}
}
