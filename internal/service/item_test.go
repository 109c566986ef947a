package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/memstore"
)

func TestItemService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	recorder := metrics.NewInMemory()
	svc := NewItemService(memstore.New(), recorder)

	desc := "fresh"
	created, err := svc.CreateItem(ctx, CreateItemInput{Name: "  Apples ", Description: &desc})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if created.ID == "" || created.Name != "Apples" {
		t.Fatalf("unexpected item: %+v", created)
	}

	got, err := svc.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Apples" || got.Description == nil || *got.Description != "fresh" {
		t.Errorf("unexpected item: %+v", got)
	}

	items, err := svc.ListItems(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListItems = %v, %v", items, err)
	}

	if recorder.Snapshot().ItemsCreated != 1 {
		t.Errorf("ItemsCreated = %d, want 1", recorder.Snapshot().ItemsCreated)
	}
}

func TestItemService_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewItemService(memstore.New(), nil)

	if _, err := svc.CreateItem(ctx, CreateItemInput{Name: "   "}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("blank name: got %v, want ErrNameRequired", err)
	}
	for _, id := range []string{"", "missing", "not-an-id!"} {
		if _, err := svc.GetItem(ctx, id); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("GetItem(%q) = %v, want ErrItemNotFound", id, err)
		}
	}
}
