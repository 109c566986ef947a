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

type userDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	Name          *string            `bson:"name"`
	GoogleID      *string            `bson:"google_id,omitempty"`
	PasswordHash  string             `bson:"password_hash,omitempty"`
	IsDoner       bool               `bson:"isDoner"`
	AuthProviders []string           `bson:"auth_providers"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	Extra         bson.M             `bson:",inline"`
}

func newUserDoc(u *model.User) userDoc {
	providers := u.AuthProviders
	if providers == nil {
		providers = []string{}
	}
	doc := userDoc{
		ID:            primitive.NewObjectID(),
		Email:         u.Email,
		Name:          u.Name,
		GoogleID:      u.GoogleID,
		PasswordHash:  u.PasswordHash,
		IsDoner:       u.IsDoner,
		AuthProviders: providers,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	for k, v := range u.Attributes {
		if model.IsUserFieldKey(k) {
			continue
		}
		if doc.Extra == nil {
			doc.Extra = bson.M{}
		}
		doc.Extra[k] = v
	}
	return doc
}

func (d *userDoc) toModel() *model.User {
	u := &model.User{
		ID:            d.ID.Hex(),
		Email:         d.Email,
		Name:          d.Name,
		GoogleID:      d.GoogleID,
		PasswordHash:  d.PasswordHash,
		IsDoner:       d.IsDoner,
		AuthProviders: d.AuthProviders,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if len(d.Extra) > 0 {
		u.Attributes = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			u.Attributes[k] = normalize(v)
		}
	}
	return u
}

// normalize converts driver container types into plain maps and slices
// so attributes encode to JSON the same way regardless of backend.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = normalize(e)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = normalize(e)
		}
		return s
	case primitive.DateTime:
		return t.Time().UTC()
	default:
		return v
	}
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	doc := newUserDoc(user)
	if _, err := s.db.Collection(usersCollection).InsertOne(ctx, doc); err != nil {
		if derr := duplicateKeyError(err); derr != nil {
			return derr
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}}, nil)
}

// GetUserByEmail uses the case-insensitive collation of the email index,
// so the lookup is an exact match and never a pattern.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	opts := options.FindOne().SetCollation(emailCollation)
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}}, opts)
}

func (s *Store) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return s.findUser(ctx, bson.D{{Key: "google_id", Value: googleID}}, nil)
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch *model.UserPatch) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	set := bson.D{{Key: "updated_at", Value: time.Now().UTC()}}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.ClearName {
		set = append(set, bson.E{Key: "name", Value: nil})
	} else if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.GoogleID != nil {
		set = append(set, bson.E{Key: "google_id", Value: *patch.GoogleID})
	}
	if patch.PasswordHash != nil {
		set = append(set, bson.E{Key: "password_hash", Value: *patch.PasswordHash})
	}
	if patch.IsDoner != nil {
		set = append(set, bson.E{Key: "isDoner", Value: *patch.IsDoner})
	}
	for k, v := range patch.SetAttributes {
		if model.IsUserFieldKey(k) {
			continue
		}
		set = append(set, bson.E{Key: k, Value: v})
	}

	update := bson.D{{Key: "$set", Value: set}}

	if len(patch.UnsetAttributes) > 0 {
		unset := bson.D{}
		for _, k := range patch.UnsetAttributes {
			if model.IsUserFieldKey(k) {
				continue
			}
			unset = append(unset, bson.E{Key: k, Value: ""})
		}
		if len(unset) > 0 {
			update = append(update, bson.E{Key: "$unset", Value: unset})
		}
	}
	if len(patch.AddProviders) > 0 {
		update = append(update, bson.E{Key: "$addToSet", Value: bson.D{
			{Key: "auth_providers", Value: bson.D{{Key: "$each", Value: patch.AddProviders}}},
		}})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrUserNotFound
		}
		if derr := duplicateKeyError(err); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return doc.toModel(), nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*model.User, error) {
	var findOpts []*options.FindOneOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}

	var doc userDoc
	err := s.db.Collection(usersCollection).FindOne(ctx, filter, findOpts...).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toModel(), nil
}
