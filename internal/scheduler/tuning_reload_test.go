package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/logger"
	"github.com/MrSnakeDoc/scanvault/internal/resolver"
)

type recordingTarget struct {
	mu      sync.Mutex
	applied []resolver.Tuning
}

func (r *recordingTarget) SetTuning(t resolver.Tuning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, t)
}

func (r *recordingTarget) snapshot() []resolver.Tuning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]resolver.Tuning(nil), r.applied...)
}

func writeTuning(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write tuning file: %v", err)
	}
}

func TestTuningReloader_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	writeTuning(t, path, "weights:\n  ocr_keyword: 9\n")

	target := &recordingTarget{}
	tr := NewTuningReloader(path, target, logger.Nop(), time.Hour, nil)

	if err := tr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	applied := target.snapshot()
	if len(applied) != 1 {
		t.Fatalf("Expected 1 applied tuning, got %d", len(applied))
	}
	if applied[0].Weights.OCRKeyword != 9 {
		t.Errorf("OCRKeyword = %v, want 9", applied[0].Weights.OCRKeyword)
	}

	// An invalid file is rejected and nothing is applied
	writeTuning(t, path, "weights:\n  ocr_keyword: -1\n")
	if err := tr.Reload(context.Background()); err == nil {
		t.Error("Reload with a negative weight should fail")
	}
	if n := len(target.snapshot()); n != 1 {
		t.Errorf("Invalid tuning was applied, got %d applications", n)
	}
}

func TestTuningReloader_ReloadIfChangedSkipsUntouchedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	writeTuning(t, path, "tcg_keywords: [pokemon]\n")

	target := &recordingTarget{}
	tr := NewTuningReloader(path, target, logger.Nop(), time.Hour, nil)
	if err := tr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if err := tr.reloadIfChanged(context.Background()); err != nil {
		t.Fatalf("reloadIfChanged failed: %v", err)
	}
	if n := len(target.snapshot()); n != 1 {
		t.Errorf("Untouched file was reloaded, got %d applications", n)
	}

	writeTuning(t, path, "tcg_keywords: [pokemon, lorcana]\n")
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if err := tr.reloadIfChanged(context.Background()); err != nil {
		t.Fatalf("reloadIfChanged failed: %v", err)
	}
	applied := target.snapshot()
	if len(applied) != 2 || len(applied[1].TCGKeywords) != 2 {
		t.Errorf("Changed file was not reloaded: %+v", applied)
	}
}

func TestTuningReloader_StartFailsOnMissingFile(t *testing.T) {
	tr := NewTuningReloader("/nonexistent/tuning.yaml", &recordingTarget{}, logger.Nop(), time.Hour, nil)
	if err := tr.Start(context.Background()); err == nil {
		t.Error("Start with a missing file should fail")
	}
}

func TestTuningReloader_ManualTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	writeTuning(t, path, "weights:\n  links: 0\n")

	target := &recordingTarget{}
	trigger := make(chan struct{}, 1)
	tr := NewTuningReloader(path, target, logger.Nop(), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := tr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tr.Stop()

	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for len(target.snapshot()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("manual trigger did not reload, got %d applications", len(target.snapshot()))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
