// Package storetest holds the behaviour every store.Backend must satisfy.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/store"
)

// Factory returns an empty backend for one subtest.
type Factory func(t *testing.T) store.Backend

// Run executes the shared suite against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b store.Backend)
	}{
		{"AddAssignsIdentity", testAddAssignsIdentity},
		{"AddKeepsCallerIdentity", testAddKeepsCallerIdentity},
		{"AddUnknownFolder", testAddUnknownFolder},
		{"GetUnknown", testGetUnknown},
		{"UpdateCard", testUpdateCard},
		{"UpdateRejectsEmptyName", testUpdateRejectsEmptyName},
		{"DeleteCard", testDeleteCard},
		{"ListOrder", testListOrder},
		{"ClearCards", testClearCards},
		{"Folders", testFolders},
		{"DeleteFolderKeepsCards", testDeleteFolderKeepsCards},
		{"MoveCardToFolder", testMoveCardToFolder},
		{"SweepDanglingFolders", testSweepNothingToRepair},
		{"RecognitionToken", testRecognitionToken},
		{"Stats", testStats},
		{"ConcurrentAdds", testConcurrentAdds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newBackend(t))
		})
	}
}

func addCard(t *testing.T, b store.Backend, card *domain.Card) *domain.Card {
	t.Helper()
	if err := b.AddCard(context.Background(), card); err != nil {
		t.Fatalf("AddCard(%q) error = %v", card.Name, err)
	}
	return card
}

func testAddAssignsIdentity(t *testing.T, b store.Backend) {
	ctx := context.Background()
	card := addCard(t, b, &domain.Card{Name: "Mike Trout"})

	if card.ID == "" {
		t.Fatal("AddCard() did not assign an id")
	}
	if card.DateAdded.IsZero() {
		t.Error("AddCard() did not assign DateAdded")
	}

	got, err := b.GetCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if got.Name != "Mike Trout" || got.FolderID != nil {
		t.Errorf("GetCard() = %+v", got)
	}
}

func testAddKeepsCallerIdentity(t *testing.T, b store.Backend) {
	added := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	card := addCard(t, b, &domain.Card{ID: "fixed", Name: "  ", DateAdded: added})

	got, err := b.GetCard(context.Background(), "fixed")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if !got.DateAdded.Equal(added) {
		t.Errorf("DateAdded = %v, want %v", got.DateAdded, added)
	}
	if card.Name != domain.UnknownCardName || got.Name != domain.UnknownCardName {
		t.Errorf("blank name should become %q, got %q", domain.UnknownCardName, got.Name)
	}
}

func testAddUnknownFolder(t *testing.T, b store.Backend) {
	missing := "missing"
	err := b.AddCard(context.Background(), &domain.Card{Name: "x", FolderID: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AddCard() with unknown folder error = %v, want ErrNotFound", err)
	}
}

func testGetUnknown(t *testing.T, b store.Backend) {
	ctx := context.Background()
	if _, err := b.GetCard(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetCard() error = %v, want ErrNotFound", err)
	}
	if err := b.DeleteCard(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteCard() error = %v, want ErrNotFound", err)
	}
	if err := b.MoveCardToFolder(ctx, "nope", nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("MoveCardToFolder() error = %v, want ErrNotFound", err)
	}
	if err := b.DeleteFolder(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteFolder() error = %v, want ErrNotFound", err)
	}
}

func testUpdateCard(t *testing.T, b store.Backend) {
	ctx := context.Background()
	card := addCard(t, b, &domain.Card{Name: "Charizard", ImageURI: "file://front.jpg"})

	back := "file://back.jpg"
	price := 420.5
	got, err := b.UpdateCard(ctx, card.ID, domain.CardPatch{BackImageURI: &back, Price: &price})
	if err != nil {
		t.Fatalf("UpdateCard() error = %v", err)
	}
	if got.BackImageURI != back || got.Price == nil || *got.Price != price {
		t.Errorf("UpdateCard() = %+v", got)
	}
	if got.ImageURI != "file://front.jpg" {
		t.Errorf("UpdateCard() touched ImageURI: %q", got.ImageURI)
	}

	stored, _ := b.GetCard(ctx, card.ID)
	if stored.BackImageURI != back {
		t.Errorf("update not persisted: %+v", stored)
	}

	if _, err := b.UpdateCard(ctx, "nope", domain.CardPatch{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateCard(unknown) error = %v, want ErrNotFound", err)
	}
}

func testUpdateRejectsEmptyName(t *testing.T, b store.Backend) {
	card := addCard(t, b, &domain.Card{Name: "Pikachu"})
	empty := " "
	_, err := b.UpdateCard(context.Background(), card.ID, domain.CardPatch{Name: &empty})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("UpdateCard() error = %v, want ErrInvalidInput", err)
	}
}

func testDeleteCard(t *testing.T, b store.Backend) {
	ctx := context.Background()
	card := addCard(t, b, &domain.Card{Name: "Gone"})
	if err := b.DeleteCard(ctx, card.ID); err != nil {
		t.Fatalf("DeleteCard() error = %v", err)
	}
	cards, _ := b.ListCards(ctx)
	if len(cards) != 0 {
		t.Errorf("ListCards() after delete = %d cards, want 0", len(cards))
	}
}

func testListOrder(t *testing.T, b store.Backend) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	addCard(t, b, &domain.Card{ID: "c", Name: "third", DateAdded: base.Add(time.Hour)})
	addCard(t, b, &domain.Card{ID: "b", Name: "second", DateAdded: base})
	addCard(t, b, &domain.Card{ID: "a", Name: "first", DateAdded: base})

	cards, err := b.ListCards(context.Background())
	if err != nil {
		t.Fatalf("ListCards() error = %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(cards) != len(want) {
		t.Fatalf("ListCards() = %d cards, want %d", len(cards), len(want))
	}
	for i, id := range want {
		if cards[i].ID != id {
			t.Errorf("ListCards()[%d] = %s, want %s", i, cards[i].ID, id)
		}
	}
}

func testClearCards(t *testing.T, b store.Backend) {
	ctx := context.Background()
	folder, _ := b.CreateFolder(ctx, "Binder")
	addCard(t, b, &domain.Card{Name: "one", FolderID: &folder.ID})
	addCard(t, b, &domain.Card{Name: "two"})

	if err := b.ClearCards(ctx); err != nil {
		t.Fatalf("ClearCards() error = %v", err)
	}
	cards, _ := b.ListCards(ctx)
	if len(cards) != 0 {
		t.Errorf("ListCards() after clear = %d, want 0", len(cards))
	}
	folders, _ := b.ListFolders(ctx)
	if len(folders) != 1 {
		t.Errorf("ClearCards() should keep folders, got %d", len(folders))
	}
}

func testFolders(t *testing.T, b store.Backend) {
	ctx := context.Background()
	if _, err := b.CreateFolder(ctx, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("CreateFolder(blank) error = %v, want ErrInvalidInput", err)
	}

	first, err := b.CreateFolder(ctx, " Vintage ")
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if first.ID == "" || first.Name != "Vintage" || first.CreatedAt.IsZero() {
		t.Errorf("CreateFolder() = %+v", first)
	}
	if _, err := b.CreateFolder(ctx, "Modern"); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	folders, err := b.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 2 {
		t.Errorf("ListFolders() = %d folders, want 2", len(folders))
	}
}

func testDeleteFolderKeepsCards(t *testing.T, b store.Backend) {
	ctx := context.Background()
	folder, err := b.CreateFolder(ctx, "Pokemon")
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	other, _ := b.CreateFolder(ctx, "Sports")

	one := addCard(t, b, &domain.Card{Name: "Pikachu", FolderID: &folder.ID})
	two := addCard(t, b, &domain.Card{Name: "Bulbasaur"})
	if err := b.MoveCardToFolder(ctx, two.ID, &folder.ID); err != nil {
		t.Fatalf("MoveCardToFolder() error = %v", err)
	}
	bystander := addCard(t, b, &domain.Card{Name: "Trout", FolderID: &other.ID})

	if err := b.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}

	cards, _ := b.ListCards(ctx)
	if len(cards) != 3 {
		t.Fatalf("DeleteFolder() must not delete cards, have %d", len(cards))
	}
	for _, id := range []string{one.ID, two.ID} {
		card, err := b.GetCard(ctx, id)
		if err != nil {
			t.Fatalf("GetCard(%s) error = %v", id, err)
		}
		if card.FolderID != nil {
			t.Errorf("card %s still references folder %s", id, *card.FolderID)
		}
	}
	kept, _ := b.GetCard(ctx, bystander.ID)
	if !kept.InFolder(other.ID) {
		t.Errorf("card in another folder was detached")
	}

	folders, _ := b.ListFolders(ctx)
	for _, f := range folders {
		if f.ID == folder.ID {
			t.Errorf("deleted folder still listed")
		}
	}
}

func testMoveCardToFolder(t *testing.T, b store.Backend) {
	ctx := context.Background()
	folder, _ := b.CreateFolder(ctx, "Graded")
	card := addCard(t, b, &domain.Card{Name: "Jordan"})

	if err := b.MoveCardToFolder(ctx, card.ID, &folder.ID); err != nil {
		t.Fatalf("MoveCardToFolder() error = %v", err)
	}
	got, _ := b.GetCard(ctx, card.ID)
	if !got.InFolder(folder.ID) {
		t.Errorf("card not moved into folder")
	}

	missing := "missing"
	if err := b.MoveCardToFolder(ctx, card.ID, &missing); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("MoveCardToFolder(unknown folder) error = %v, want ErrNotFound", err)
	}

	if err := b.MoveCardToFolder(ctx, card.ID, nil); err != nil {
		t.Fatalf("MoveCardToFolder(nil) error = %v", err)
	}
	got, _ = b.GetCard(ctx, card.ID)
	if got.FolderID != nil {
		t.Errorf("card still in folder after detaching")
	}

	// Deleting the folder afterwards must not resurrect the old assignment.
	if err := b.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
}

func testSweepNothingToRepair(t *testing.T, b store.Backend) {
	ctx := context.Background()
	folder, _ := b.CreateFolder(ctx, "Keep")
	addCard(t, b, &domain.Card{Name: "in folder", FolderID: &folder.ID})
	addCard(t, b, &domain.Card{Name: "loose"})

	repaired, err := store.SweepDanglingFolders(ctx, b)
	if err != nil {
		t.Fatalf("SweepDanglingFolders() error = %v", err)
	}
	if repaired != 0 {
		t.Errorf("SweepDanglingFolders() = %d, want 0", repaired)
	}
}

func testRecognitionToken(t *testing.T, b store.Backend) {
	ctx := context.Background()
	if tok, err := b.GetRecognitionToken(ctx); err != nil || tok != "" {
		t.Fatalf("GetRecognitionToken() = %q, %v; want empty", tok, err)
	}
	if err := b.SetRecognitionToken(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetRecognitionToken(\"\") error = %v, want ErrInvalidInput", err)
	}
	if err := b.SetRecognitionToken(ctx, " abc123 "); err != nil {
		t.Fatalf("SetRecognitionToken() error = %v", err)
	}
	if tok, _ := b.GetRecognitionToken(ctx); tok != "abc123" {
		t.Errorf("GetRecognitionToken() = %q, want abc123", tok)
	}
	if err := b.ClearRecognitionToken(ctx); err != nil {
		t.Fatalf("ClearRecognitionToken() error = %v", err)
	}
	if tok, _ := b.GetRecognitionToken(ctx); tok != "" {
		t.Errorf("GetRecognitionToken() after clear = %q", tok)
	}
}

func testConcurrentAdds(t *testing.T, b store.Backend) {
	ctx := context.Background()
	folder, _ := b.CreateFolder(ctx, "Bulk")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			card := &domain.Card{Name: "bulk"}
			if err := b.AddCard(ctx, card); err != nil {
				t.Errorf("AddCard() error = %v", err)
				return
			}
			if err := b.MoveCardToFolder(ctx, card.ID, &folder.ID); err != nil {
				t.Errorf("MoveCardToFolder() error = %v", err)
			}
		}()
	}
	wg.Wait()

	cards, _ := b.ListCards(ctx)
	if len(cards) != 20 {
		t.Errorf("ListCards() = %d, want 20", len(cards))
	}
	if err := b.DeleteFolder(ctx, folder.ID); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	cards, _ = b.ListCards(ctx)
	for _, c := range cards {
		if c.FolderID != nil {
			t.Errorf("card %s kept folder after DeleteFolder", c.ID)
		}
	}
}

func testStats(t *testing.T, b store.Backend) {
	ctx := context.Background()
	addCard(t, b, &domain.Card{Name: "One"})
	addCard(t, b, &domain.Card{Name: "Two"})
	if _, err := b.CreateFolder(ctx, "Binder"); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	cards, folders, err := b.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if cards != 2 || folders != 1 {
		t.Errorf("Stats() = %d cards, %d folders; want 2, 1", cards, folders)
	}
}
