package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
	"github.com/MrSnakeDoc/scanvault/internal/sources/tuning"
)

// TuningTarget receives freshly loaded tuning.
type TuningTarget interface {
	SetTuning(resolver.Tuning)
}

// TuningReloader handles periodic reloading of the tuning file
type TuningReloader struct {
	loader        *tuning.Loader
	target        TuningTarget
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewTuningReloader creates a new tuning reloader
func NewTuningReloader(
	tuningFile string,
	target TuningTarget,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *TuningReloader {
	return &TuningReloader{
		loader:        tuning.NewLoader(tuningFile),
		target:        target,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once, then keeps reloading it in the background.
func (tr *TuningReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := tr.Reload(ctx); err != nil {
		return fmt.Errorf("initial tuning reload failed: %w", err)
	}

	ticker := time.NewTicker(tr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tr.reloadIfChanged(ctx); err != nil {
					tr.logger.Error("failed to reload tuning",
						logger.Error(err))
				}
			case <-tr.manualTrigger:
				tr.logger.Info("manual tuning reload triggered")
				if err := tr.Reload(ctx); err != nil {
					tr.logger.Error("failed to reload tuning",
						logger.Error(err))
				}
			case <-tr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader. Safe to call more than once.
func (tr *TuningReloader) Stop() {
	tr.stopOnce.Do(func() { close(tr.stopCh) })
}

// Reload reads the tuning file and swaps it into the target. A file that
// fails to load or validate leaves the active tuning untouched.
func (tr *TuningReloader) Reload(_ context.Context) error {
	tr.logger.Info("reloading tuning", logger.String("file", tr.loader.Path()))

	stat, err := os.Stat(tr.loader.Path())
	if err != nil {
		return fmt.Errorf("failed to stat tuning file: %w", err)
	}

	t, err := tuning.LoadTuning(tr.loader.Path())
	if err != nil {
		return err
	}

	tr.target.SetTuning(t)

	tr.mu.Lock()
	tr.modTime, tr.size = stat.ModTime(), stat.Size()
	tr.mu.Unlock()

	tr.logger.Info("tuning applied",
		logger.Float64("weight_ocr_keyword", t.Weights.OCRKeyword),
		logger.Float64("weight_subcategory", t.Weights.Subcategory),
		logger.Int("tcg_keywords", len(t.TCGKeywords)),
		logger.Strings("category_labels", t.CategoryLabels))
	return nil
}

// reloadIfChanged skips the reload when the file looks untouched since the
// last successful load.
func (tr *TuningReloader) reloadIfChanged(ctx context.Context) error {
	stat, err := os.Stat(tr.loader.Path())
	if err != nil {
		return fmt.Errorf("failed to stat tuning file: %w", err)
	}

	tr.mu.Lock()
	unchanged := stat.ModTime().Equal(tr.modTime) && stat.Size() == tr.size
	tr.mu.Unlock()
	if unchanged {
		tr.logger.Debug("tuning file unchanged, skipping reload")
		return nil
	}
	return tr.Reload(ctx)
}
