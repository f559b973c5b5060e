package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/keepsync/keepsync/internal/config"
	"github.com/keepsync/keepsync/internal/logger"
	ksync "github.com/keepsync/keepsync/internal/sync"
	"github.com/keepsync/keepsync/internal/vault"
	"github.com/keepsync/keepsync/internal/watcher"
	"github.com/keepsync/keepsync/util"
)

type Daemon struct {
	ctx     context.Context
	cancel  context.CancelFunc
	ticker  *time.Ticker
	engine  *ksync.Engine
	watcher *watcher.Watcher
	cfg     config.ConfigProvider
	logger  logger.Logger
}

func NewDaemon(cfg config.ConfigProvider) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	log := logger.New(cfg.GetLogPath(), false)

	engine, client := BuildEngine(cfg, log)

	notify := func(msg string) {
		util.Green.Println(msg)
	}
	w, err := watcher.New(cfg.GetSyncFolder(), vault.NewOSStore(), client, log, notify)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create edit watcher: %w", err)
	}

	return &Daemon{
		ctx:     ctx,
		cancel:  cancel,
		engine:  engine,
		watcher: w,
		cfg:     cfg,
		logger:  log,
	}, nil
}

func (d *Daemon) Start() error {
	if err := d.validateConfiguration(); err != nil {
		return err
	}

	if err := d.writePidFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %v", err)
	}
	defer d.logger.Close()

	sigChan := d.setupSignalHandling()
	d.setupTicker()
	d.logStartupInfo()

	// The sync folder must exist before the watcher can subscribe to it.
	d.runPass()

	if err := d.watcher.Start(); err != nil {
		d.logger.Warnf("edit watcher disabled: %v", err)
		util.Red.Printf("Edit watcher disabled: %v\n", err)
	}

	return d.runEventLoop(sigChan)
}

func (d *Daemon) validateConfiguration() error {
	if d.cfg == nil {
		return fmt.Errorf("configuration not provided")
	}

	if d.cfg.GetAPIKey() == "" {
		return fmt.Errorf("karakeep API key is not configured")
	}

	if d.cfg.GetSyncFolder() == "" {
		return fmt.Errorf("sync folder is not configured")
	}

	if d.cfg.GetSyncInterval() <= 0 {
		return fmt.Errorf("sync interval must be a positive number of minutes, got %d", d.cfg.GetSyncInterval())
	}

	if d.isRunning() {
		return fmt.Errorf("daemon is already running")
	}

	return nil
}

func (d *Daemon) setupSignalHandling() chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

func (d *Daemon) setupTicker() {
	interval := time.Duration(d.cfg.GetSyncInterval()) * time.Minute
	d.ticker = time.NewTicker(interval)
}

func (d *Daemon) logStartupInfo() {
	util.GreenBold.Printf("Keepsync daemon started, syncing bookmarks every %d minutes\n", d.cfg.GetSyncInterval())
	util.Cyan.Printf("Karakeep server: %s\n", d.cfg.GetBaseURL())
	util.Cyan.Printf("Sync folder: %s\n", d.cfg.GetSyncFolder())
	util.Cyan.Printf("PID file: %s\n", d.cfg.GetPidFile())
	util.Cyan.Printf("Log file: %s\n", d.cfg.GetLogPath())

	d.logger.Infof("Daemon started with PID %d", os.Getpid())
	d.logger.Infof("Sync folder: %s", d.cfg.GetSyncFolder())
	d.logger.Infof("Sync interval: %d minutes", d.cfg.GetSyncInterval())
}

func (d *Daemon) runEventLoop(sigChan chan os.Signal) error {
	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon context cancelled")
			util.Cyan.Println("Daemon context cancelled")
			d.cleanup()
			return nil
		case sig := <-sigChan:
			d.logger.Infof("Received signal: %v", sig)
			util.Cyan.Printf("Received signal: %v\n", sig)
			d.Stop()
			return nil
		case <-d.ticker.C:
			d.logger.Info("Starting sync cycle")
			util.Cyan.Printf("Syncing bookmarks at %s\n", time.Now().Format("2006-01-02 15:04:05"))
			d.runPass()
		}
	}
}

func (d *Daemon) Stop() {
	d.logger.Info("Stopping daemon...")
	util.Cyan.Println("Stopping daemon...")

	if d.ticker != nil {
		d.ticker.Stop()
	}
	d.watcher.Stop()

	d.cancel()
	d.cleanup()

	d.logger.Info("Daemon stopped successfully")
	util.Green.Println("Daemon stopped successfully")
}

func (d *Daemon) runPass() {
	result, err := d.engine.RunPass(d.ctx)
	if err != nil {
		if errors.Is(err, ksync.ErrSyncInProgress) {
			util.Cyan.Println("Sync already in progress, skipping this cycle")
			return
		}
		d.logger.Errorf("Sync failed: %v", err)
		util.Red.Printf("Sync failed: %v\n", err)
		return
	}

	util.GreenBold.Printf("Karakeep sync complete: %s\n", result.Summary())
}

func (d *Daemon) isRunning() bool {
	if d.cfg.GetPidFile() == "" {
		return false
	}

	pidData, err := os.ReadFile(d.cfg.GetPidFile())
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(string(pidData))
	if err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Send signal 0 to check if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

func (d *Daemon) writePidFile() error {
	pid := os.Getpid()
	return os.WriteFile(d.cfg.GetPidFile(), []byte(strconv.Itoa(pid)), 0644)
}

func (d *Daemon) cleanup() {
	if d.cfg.GetPidFile() != "" {
		os.Remove(d.cfg.GetPidFile())
	}
}

func (d *Daemon) Status() error {
	if d.isRunning() {
		pidData, _ := os.ReadFile(d.cfg.GetPidFile())
		util.Green.Printf("Daemon is running (PID: %s)\n", string(pidData))
		util.Cyan.Printf("Sync folder: %s\n", d.cfg.GetSyncFolder())
		util.Cyan.Printf("Sync interval: %d minutes\n", d.cfg.GetSyncInterval())
		if last := d.cfg.GetLastSync(); last != "" {
			util.Cyan.Printf("Last sync: %s\n", last)
		}
		return nil
	}
	util.Red.Println("Daemon is not running")
	return fmt.Errorf("daemon is not running")
}
