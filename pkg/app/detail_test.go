package app

import (
	"context"
	"errors"
	"testing"

	"tableflip.dev/readlog/pkg/book"
	"tableflip.dev/readlog/pkg/store"
)

func TestOpenDetailMissingBook(t *testing.T) {
	svc := &Service{Persistence: newMemoryPersistence()}
	_, err := svc.OpenDetail(context.Background(), 7, nil)
	if !errors.Is(err, ErrNotInStore) {
		t.Fatalf("expected ErrNotInStore, got %v", err)
	}
}

func TestOpenDetailLoadsMetadata(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "Война и мир", Rating: 9})
	fc := newFakeCatalog()
	fc.results["intitle:Война и мир"] = []book.Candidate{warAndPeace()}
	svc := &Service{Persistence: mp, Catalog: fc}

	dv, err := svc.OpenDetail(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("open detail: %v", err)
	}
	if dv.State() != DetailLoaded {
		t.Fatalf("expected loaded, got %s", dv.State())
	}
	meta, ok := dv.Metadata()
	if !ok || meta.AuthorLine() != "Лев Толстой" {
		t.Fatalf("unexpected metadata %+v, %v", meta, ok)
	}
	if len(fc.titles) != 1 || fc.titles[0] != "Война и мир" {
		t.Fatalf("expected title lookup, got %v", fc.titles)
	}
	if b := dv.Book(); b.Rating != 9 {
		t.Fatalf("metadata changed the record: %+v", b)
	}
}

func TestOpenDetailWithoutCatalogMatch(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "Самиздат", Rating: 4})
	svc := &Service{Persistence: mp, Catalog: newFakeCatalog()}

	dv, err := svc.OpenDetail(context.Background(), 1, nil)
	if err != nil {
		t.Fatalf("open detail: %v", err)
	}
	if _, ok := dv.Metadata(); ok {
		t.Fatal("expected no metadata")
	}
	if dv.Book().Title != "Самиздат" {
		t.Fatalf("unexpected book %+v", dv.Book())
	}
}

func TestDetailSaveRating(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "Война и мир", Rating: 9})
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, err := svc.OpenDetail(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open detail: %v", err)
	}
	if err := dv.SetPendingRating(3); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state before edit, got %v", err)
	}
	if err := dv.BeginEdit(); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if got := dv.PendingRating(); got != 9 {
		t.Fatalf("expected pending to start at current rating, got %d", got)
	}
	if err := dv.SetPendingRating(12); err != nil {
		t.Fatalf("set pending: %v", err)
	}
	if err := dv.SaveRating(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := book.Book{ID: 1, Title: "Война и мир", Rating: 10}
	if got, _ := mp.Get(ctx, 1); got == nil || *got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if dv.State() != DetailLoaded || dv.Book().Rating != 10 {
		t.Fatalf("view not updated: %s %+v", dv.State(), dv.Book())
	}
}

func TestDetailEditSelection(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "Бесы", Rating: 4})
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, err := svc.OpenDetail(ctx, 1, nil)
	if err != nil {
		t.Fatalf("open detail: %v", err)
	}
	if sel := dv.Selection(); sel != nil {
		t.Fatalf("expected no selection before edit, got %+v", sel)
	}
	_ = dv.BeginEdit()
	_ = dv.SetPendingRating(7)

	sel := dv.Selection()
	if sel == nil || sel.Title() != "Бесы" || sel.Rating != 7 || sel.Book.ID != 1 {
		t.Fatalf("unexpected selection %+v", sel)
	}
	// The copy does not reach back into the view.
	sel.Rating = 1
	if got := dv.PendingRating(); got != 7 {
		t.Fatalf("pending changed through copy: %d", got)
	}

	if err := dv.SaveRating(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if sel := dv.Selection(); sel != nil {
		t.Fatalf("expected selection cleared after save, got %+v", sel)
	}
	if got := dv.PendingRating(); got != 7 {
		t.Fatalf("pending after save = %d, want saved rating 7", got)
	}
}

func TestDetailSaveFailureKeepsEditing(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "a", Rating: 2})
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, _ := svc.OpenDetail(ctx, 1, nil)
	_ = dv.BeginEdit()
	_ = dv.SetPendingRating(8)
	mp.setWriteErr(storeErr("update"))

	if err := dv.SaveRating(ctx); !errors.Is(err, store.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if dv.State() != DetailEditingRating || dv.PendingRating() != 8 || dv.Book().Rating != 2 {
		t.Fatalf("unexpected view after failure: %s pending=%d %+v", dv.State(), dv.PendingRating(), dv.Book())
	}
}

func TestDetailCancelEdit(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "a", Rating: 2})
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, _ := svc.OpenDetail(ctx, 1, nil)
	_ = dv.BeginEdit()
	_ = dv.SetPendingRating(8)
	if err := dv.CancelEdit(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if dv.State() != DetailLoaded || dv.PendingRating() != 2 {
		t.Fatalf("unexpected view after cancel: %s pending=%d", dv.State(), dv.PendingRating())
	}
	if got, _ := mp.Get(ctx, 1); got.Rating != 2 {
		t.Fatalf("cancel wrote to store: %+v", got)
	}
	if err := dv.CancelEdit(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestDetailDelete(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "Война и мир", Rating: 10})
	nav := &recordingNavigator{}
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, _ := svc.OpenDetail(ctx, 1, nav)
	if err := dv.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := mp.Get(ctx, 1); got != nil {
		t.Fatalf("expected book gone, got %+v", got)
	}
	if all, _ := mp.ListAll(ctx); len(all) != 0 {
		t.Fatalf("expected empty list, got %+v", all)
	}
	if dv.State() != DetailDeleted || dv.Book() != nil {
		t.Fatalf("unexpected view after delete: %s %+v", dv.State(), dv.Book())
	}
	if nav.libraryCount() != 1 {
		t.Fatal("expected navigation to library")
	}
	if err := dv.BeginEdit(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state after delete, got %v", err)
	}
	if err := dv.Load(ctx, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected reload to be refused after delete, got %v", err)
	}
}

func TestDetailDeleteFailure(t *testing.T) {
	mp := newMemoryPersistence(&book.Book{Title: "a", Rating: 1})
	nav := &recordingNavigator{}
	svc := &Service{Persistence: mp}
	ctx := context.Background()

	dv, _ := svc.OpenDetail(ctx, 1, nav)
	mp.setWriteErr(storeErr("delete"))
	if err := dv.Delete(ctx); !errors.Is(err, store.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if dv.State() != DetailLoaded || dv.Book() == nil {
		t.Fatalf("failed delete changed the view: %s", dv.State())
	}
	if nav.libraryCount() != 0 {
		t.Fatal("failed delete navigated")
	}
}
