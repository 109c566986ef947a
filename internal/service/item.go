package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
)

// ItemService handles the generic item collection.
type ItemService struct {
	store   repository.Store
	metrics metrics.Recorder
}

// NewItemService creates a new ItemService.
func NewItemService(store repository.Store, recorder metrics.Recorder) *ItemService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ItemService{store: store, metrics: recorder}
}

// CreateItemInput defines input for creating an item.
type CreateItemInput struct {
	Name        string
	Description *string
}

// CreateItem stores a new item and returns it.
func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*model.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	item := &model.Item{
		Name:        name,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.metrics.IncItemCreated()
	return item, nil
}

// ListItems returns all items, oldest first.
func (s *ItemService) ListItems(ctx context.Context) ([]*model.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetItem returns one item.
func (s *ItemService) GetItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}
