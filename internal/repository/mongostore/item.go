package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description *string            `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *itemDoc) toModel() *model.Item {
	return &model.Item{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	doc := itemDoc{
		ID:          primitive.NewObjectID(),
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
	}
	if _, err := s.db.Collection(itemsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	item.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.db.Collection(itemsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	items := make([]*model.Item, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toModel())
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrItemNotFound
	}

	var doc itemDoc
	err := s.db.Collection(itemsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return doc.toModel(), nil
}
