package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/index"
	"github.com/MrSnakeDoc/scanvault/internal/logger"
)

// hiddenFolders makes some folders invisible to ListFolders, the way a
// client that wrote a card before deleting the folder elsewhere would leave
// the store.
type hiddenFolders struct {
	*index.MemoryIndex
	hidden map[string]bool
}

func (h *hiddenFolders) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	all, err := h.MemoryIndex.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, f := range all {
		if !h.hidden[f.ID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func TestFolderSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	memIndex := index.NewMemoryIndex()

	kept, err := memIndex.CreateFolder(ctx, "Binder")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	gone, err := memIndex.CreateFolder(ctx, "Old box")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}

	cards := []*domain.Card{
		{Name: "In binder", FolderID: &kept.ID},
		{Name: "In old box", FolderID: &gone.ID},
		{Name: "Loose"},
	}
	for _, c := range cards {
		if err := memIndex.AddCard(ctx, c); err != nil {
			t.Fatalf("AddCard failed: %v", err)
		}
	}

	collection := &hiddenFolders{MemoryIndex: memIndex, hidden: map[string]bool{gone.ID: true}}
	sweeper := NewFolderSweeper(collection, logger.Nop(), time.Hour)

	repaired, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if repaired != 1 {
		t.Errorf("Expected 1 repaired card, got %d", repaired)
	}

	got, _ := memIndex.GetCard(ctx, cards[1].ID)
	if got.FolderID != nil {
		t.Errorf("Dangling folder reference was not cleared: %v", *got.FolderID)
	}
	got, _ = memIndex.GetCard(ctx, cards[0].ID)
	if !got.InFolder(kept.ID) {
		t.Error("Valid folder reference was incorrectly cleared")
	}

	// Second sweep has nothing left to do
	repaired, err = sweeper.Sweep(ctx)
	if err != nil || repaired != 0 {
		t.Errorf("Second sweep = (%d, %v), want (0, nil)", repaired, err)
	}
}

func TestFolderSweeper_StartStop(t *testing.T) {
	sweeper := NewFolderSweeper(index.NewMemoryIndex(), logger.Nop(), 0)
	if sweeper.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", sweeper.interval, DefaultSweepInterval)
	}

	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sweeper.Stop()
	sweeper.Stop()
}
