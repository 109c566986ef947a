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

type pickupLocationDoc struct {
	Latitude  *float64 `bson:"latitude"`
	Longitude *float64 `bson:"longitude"`
	Address   *string  `bson:"address"`
}

type donationDoc struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	Description         *string            `bson:"description"`
	FoodPreparationTime *string            `bson:"food_preparation_time"`
	ExpireTime          *string            `bson:"expire_time"`
	Image               *string            `bson:"image"`
	PickupLocation      pickupLocationDoc  `bson:"pickup_location"`
	PickTime            *string            `bson:"pick_time"`
	DonorID             primitive.ObjectID `bson:"donor_id"`
	CreatedAt           time.Time          `bson:"created_at"`
}

func (d *donationDoc) toModel() *model.Donation {
	return &model.Donation{
		ID:                  d.ID.Hex(),
		Title:               d.Title,
		Description:         d.Description,
		FoodPreparationTime: d.FoodPreparationTime,
		ExpireTime:          d.ExpireTime,
		Image:               d.Image,
		PickupLocation: model.PickupLocation{
			Latitude:  d.PickupLocation.Latitude,
			Longitude: d.PickupLocation.Longitude,
			Address:   d.PickupLocation.Address,
		},
		PickTime:  d.PickTime,
		DonorID:   d.DonorID.Hex(),
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) CreateDonation(ctx context.Context, d *model.Donation) error {
	donor, ok := objectID(d.DonorID)
	if !ok {
		return fmt.Errorf("failed to create donation: invalid donor id %q", d.DonorID)
	}

	doc := donationDoc{
		ID:                  primitive.NewObjectID(),
		Title:               d.Title,
		Description:         d.Description,
		FoodPreparationTime: d.FoodPreparationTime,
		ExpireTime:          d.ExpireTime,
		Image:               d.Image,
		PickupLocation: pickupLocationDoc{
			Latitude:  d.PickupLocation.Latitude,
			Longitude: d.PickupLocation.Longitude,
			Address:   d.PickupLocation.Address,
		},
		PickTime:  d.PickTime,
		DonorID:   donor,
		CreatedAt: d.CreatedAt,
	}
	if _, err := s.db.Collection(donationsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}

	d.ID = doc.ID.Hex()
	return nil
}

func (s *Store) ListDonations(ctx context.Context, filter model.DonationFilter) ([]*model.Donation, error) {
	query := bson.D{}
	if filter.DonorID != "" {
		donor, ok := objectID(filter.DonorID)
		if !ok {
			return []*model.Donation{}, nil
		}
		query = bson.D{{Key: "donor_id", Value: donor}}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(filter.EffectiveLimit()))

	cur, err := s.db.Collection(donationsCollection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	var docs []donationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode donations: %w", err)
	}

	donations := make([]*model.Donation, 0, len(docs))
	for i := range docs {
		donations = append(donations, docs[i].toModel())
	}
	return donations, nil
}

func (s *Store) GetDonation(ctx context.Context, id string) (*model.Donation, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrDonationNotFound
	}

	var doc donationDoc
	err := s.db.Collection(donationsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return doc.toModel(), nil
}
