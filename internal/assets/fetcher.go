package assets

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/keepsync/keepsync/internal/logger"
	"github.com/keepsync/keepsync/internal/vault"
)

// Downloader fetches raw bytes from a url. Satisfied by karakeep.Client,
// which attaches the credential only for same-origin requests.
type Downloader interface {
	FetchResource(ctx context.Context, rawURL string) ([]byte, error)
}

// Extensions safe to write into the attachments folder. Anything else falls
// back to jpg.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Fetcher keeps a content-addressed cache of downloaded assets under the
// attachments folder, keyed by assetId + sanitized title.
type Fetcher struct {
	downloader Downloader
	store      vault.FileStore
	dir        string
	log        logger.Logger
}

func NewFetcher(downloader Downloader, store vault.FileStore, dir string, log logger.Logger) *Fetcher {
	return &Fetcher{
		downloader: downloader,
		store:      store,
		dir:        dir,
		log:        log,
	}
}

// Ensure returns the local storage path for the asset, downloading it on
// first use. It never propagates failures: any transport or storage error is
// logged and reported as "no path produced" so the caller can proceed
// without the image.
func (f *Fetcher) Ensure(ctx context.Context, rawURL, assetID, title string) (string, bool) {
	name := assetID + "-" + vault.SanitizeTitle(title) + "." + extensionFor(rawURL)
	target := path.Join(f.dir, name)

	if f.store.Exists(target) {
		return target, true
	}

	data, err := f.downloader.FetchResource(ctx, rawURL)
	if err != nil {
		f.log.Warnf("asset %s: download failed: %v", assetID, err)
		return "", false
	}
	if err := f.store.WriteBinary(target, data); err != nil {
		f.log.Warnf("asset %s: writing %s failed: %v", assetID, target, err)
		return "", false
	}

	f.log.Debugf("asset %s cached at %s (%d bytes)", assetID, target, len(data))
	return target, true
}

// extensionFor derives a file extension from the url's trailing segment,
// constrained to the allowlist.
func extensionFor(rawURL string) string {
	trailing := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		trailing = u.Path
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(trailing), "."))
	if allowedExtensions[ext] {
		return ext
	}
	return "jpg"
}
