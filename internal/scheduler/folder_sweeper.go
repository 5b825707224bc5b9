package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

const (
	// DefaultSweepInterval is used when no interval is configured
	DefaultSweepInterval = 24 * time.Hour
)

// FolderSweeper periodically clears card folder references that point to
// folders which no longer exist.
type FolderSweeper struct {
	collection store.Collection
	logger     logger.Logger
	interval   time.Duration
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewFolderSweeper creates a new folder sweeper
func NewFolderSweeper(
	collection store.Collection,
	log logger.Logger,
	interval time.Duration,
) *FolderSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &FolderSweeper{
		collection: collection,
		logger:     log,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (fs *FolderSweeper) Start(ctx context.Context) error {
	// Run immediately on start
	if _, err := fs.Sweep(ctx); err != nil {
		fs.logger.Warn("initial folder sweep failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(fs.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := fs.Sweep(ctx); err != nil {
					fs.logger.Error("folder sweep failed",
						logger.Error(err))
				}
			case <-fs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper. Safe to call more than once.
func (fs *FolderSweeper) Stop() {
	fs.stopOnce.Do(func() { close(fs.stopCh) })
}

// Sweep repairs dangling folder references and returns how many cards changed.
func (fs *FolderSweeper) Sweep(ctx context.Context) (int, error) {
	fs.logger.Debug("sweeping dangling folder references")

	repaired, err := store.SweepDanglingFolders(ctx, fs.collection)
	if repaired > 0 {
		fs.logger.Info("folder sweep completed",
			logger.Int("cards_repaired", repaired))
	} else if err == nil {
		fs.logger.Debug("no dangling folder references")
	}
	return repaired, err
}
