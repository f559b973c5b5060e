package daemon

import (
	"github.com/keepsync/keepsync/internal/assets"
	"github.com/keepsync/keepsync/internal/config"
	"github.com/keepsync/keepsync/internal/extract"
	"github.com/keepsync/keepsync/internal/karakeep"
	"github.com/keepsync/keepsync/internal/logger"
	ksync "github.com/keepsync/keepsync/internal/sync"
	"github.com/keepsync/keepsync/internal/vault"
)

// BuildEngine wires the remote client, filesystem store, asset fetcher and
// renderer into a sync engine. Shared by the daemon and the one-shot sync
// command.
func BuildEngine(cfg config.ConfigProvider, log logger.Logger) (*ksync.Engine, *karakeep.Client) {
	client := karakeep.NewClient(cfg.GetBaseURL(), cfg.GetAPIKey(), log)
	store := vault.NewOSStore()
	fetcher := assets.NewFetcher(client, store, cfg.GetAttachmentsFolder(), log)
	renderer := vault.NewRenderer(fetcher, client.AssetURL, extract.Markdown, vault.RenderOptions{
		ExtractContent: cfg.IsExtractContent(),
	})
	return ksync.NewEngine(cfg, client, store, renderer, log), client
}
