// Package sync implements the bookmark synchronization pass: paginate the
// remote collection, decide create/update/skip per record, and reconcile
// local note edits back to the remote service.
package sync

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/keepsync/keepsync/internal/config"
	"github.com/keepsync/keepsync/internal/karakeep"
	"github.com/keepsync/keepsync/internal/logger"
	"github.com/keepsync/keepsync/internal/vault"
)

const pageSize = 100

var (
	// ErrSyncInProgress rejects a pass requested while one is running.
	// Non-fatal; the caller may retry after the current pass finishes.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrMissingAPIKey aborts a pass before any work happens.
	ErrMissingAPIKey = errors.New("karakeep API key is not configured")
)

// RemoteClient is the slice of the Karakeep API the engine needs.
type RemoteClient interface {
	ListBookmarks(ctx context.Context, page, limit int, filters karakeep.ListFilters) (*karakeep.ListPage, error)
	UpdateNote(ctx context.Context, bookmarkID, note string) bool
}

// Engine drives a full synchronization pass. A single Idle/Running flag
// serializes passes; records within a pass are processed strictly
// sequentially.
type Engine struct {
	cfg      config.ConfigProvider
	client   RemoteClient
	store    vault.FileStore
	renderer *vault.Renderer
	log      logger.Logger
	running  atomic.Bool
}

func NewEngine(cfg config.ConfigProvider, client RemoteClient, store vault.FileStore, renderer *vault.Renderer, log logger.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		client:   client,
		store:    store,
		renderer: renderer,
		log:      log,
	}
}

// RunPass executes one synchronization pass. Partial progress is kept on
// failure; the running flag is always released.
func (e *Engine) RunPass(ctx context.Context) (Result, error) {
	if e.cfg.GetAPIKey() == "" {
		return Result{}, ErrMissingAPIKey
	}
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	result, err := e.pass(ctx)
	if err != nil {
		e.log.Errorf("sync pass failed: %v", err)
		return result, err
	}

	if err := e.cfg.SetLastSync(time.Now()); err != nil {
		e.log.Warnf("recording last sync time: %v", err)
	}
	e.log.Infof("sync pass complete: %s", result.Summary())
	return result, nil
}

func (e *Engine) pass(ctx context.Context) (Result, error) {
	var result Result

	if err := e.store.MkdirAll(e.cfg.GetSyncFolder()); err != nil {
		return result, fmt.Errorf("creating sync folder: %w", err)
	}

	excluded := make(map[string]bool, len(e.cfg.GetExcludedTags()))
	for _, tag := range e.cfg.GetExcludedTags() {
		excluded[strings.ToLower(tag)] = true
	}

	filters := karakeep.ListFilters{
		ExcludeArchived: e.cfg.IsExcludeArchived(),
		OnlyFavorites:   e.cfg.IsOnlyFavorites(),
	}

	for page := 1; ; page++ {
		listing, err := e.client.ListBookmarks(ctx, page, pageSize, filters)
		if err != nil {
			return result, err
		}
		e.log.Debugf("page %d: %d bookmarks (total %d)", page, len(listing.Bookmarks), listing.Total)

		for i := range listing.Bookmarks {
			e.processBookmark(ctx, &listing.Bookmarks[i], excluded, &result)
		}

		if !listing.HasMore {
			break
		}
	}

	return result, nil
}

func (e *Engine) processBookmark(ctx context.Context, b *karakeep.Bookmark, excluded map[string]bool, result *Result) {
	// Favorited bookmarks are never excluded by tag.
	if !b.Favourited && hasExcludedTag(b, excluded) {
		result.Excluded++
		return
	}

	title := vault.ResolveTitle(b)
	target := path.Join(e.cfg.GetSyncFolder(), vault.FileStem(title, b.CreatedAt)+".md")

	if !e.store.Exists(target) {
		content := e.renderer.Render(ctx, b, title)
		if err := e.store.WriteFile(target, content); err != nil {
			e.log.Warnf("bookmark %s: writing %s: %v", b.ID, target, err)
			return
		}
		result.Synced++
		return
	}

	if e.cfg.IsBidirectionalNotes() {
		e.reconcileNote(ctx, b, target, result)
	}

	if e.cfg.IsUpdateExisting() {
		content := e.renderer.Render(ctx, b, title)
		if err := e.store.WriteFile(target, content); err != nil {
			e.log.Warnf("bookmark %s: rewriting %s: %v", b.ID, target, err)
			return
		}
		result.Synced++
	} else {
		result.Skipped++
	}
}

// reconcileNote pushes a genuine local note edit back to the remote. A local
// edit is genuine only when the current notes differ from the remembered
// original AND from the live remote value; matching the remote means the
// value is already synced and must not be re-pushed.
func (e *Engine) reconcileNote(ctx context.Context, b *karakeep.Bookmark, target string, result *Result) {
	content, err := e.store.ReadFile(target)
	if err != nil {
		e.log.Warnf("bookmark %s: reading %s: %v", b.ID, target, err)
		return
	}

	fm, haveMeta := vault.ParseFrontmatter(content)
	current, haveNotes := vault.ExtractNotes(content)
	if !haveMeta || !haveNotes {
		return
	}

	if current == fm.OriginalNote || current == b.NoteText() {
		return
	}

	if e.client.UpdateNote(ctx, b.ID, current) {
		// Adopt the edit so a re-render within this pass reflects it and
		// re-establishes the baseline marker.
		b.SetNote(current)
		result.Updated++
		e.log.Infof("bookmark %s: pushed local note edit to remote", b.ID)
	}
}

func hasExcludedTag(b *karakeep.Bookmark, excluded map[string]bool) bool {
	for _, tag := range b.Tags {
		if excluded[strings.ToLower(tag.Name)] {
			return true
		}
	}
	return false
}
