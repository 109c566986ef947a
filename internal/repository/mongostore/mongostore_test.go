package mongostore

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	in := primitive.D{
		{Key: "tags", Value: primitive.A{"a", primitive.D{{Key: "x", Value: int32(1)}}}},
		{Key: "seen", Value: primitive.NewDateTimeFromTime(when)},
		{Key: "meta", Value: primitive.M{"k": "v"}},
	}

	got, ok := normalize(in).(map[string]any)
	if !ok {
		t.Fatalf("normalize() returned %T, want map", normalize(in))
	}

	seen, ok := got["seen"].(time.Time)
	if !ok || !seen.Equal(when) {
		t.Errorf("seen = %v, want %v", got["seen"], when)
	}
	delete(got, "seen")

	want := map[string]any{
		"tags": []any{"a", map[string]any{"x": int32(1)}},
		"meta": map[string]any{"k": "v"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalize() = %#v, want %#v", got, want)
	}
}

func TestUserDoc_RoundTrip(t *testing.T) {
	t.Parallel()

	gid := "g-1"
	u := &model.User{
		Email:         "doc@example.com",
		GoogleID:      &gid,
		AuthProviders: []string{model.ProviderGoogle},
		Attributes:    map[string]any{"city": "Pune", "email": "ignored"},
	}

	raw, err := bson.Marshal(newUserDoc(u))
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}

	var doc userDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}

	got := doc.toModel()
	if got.Email != "doc@example.com" || got.GoogleID == nil || *got.GoogleID != "g-1" {
		t.Errorf("fixed fields lost: %+v", got)
	}
	if got.Attributes["city"] != "Pune" {
		t.Errorf("Attributes = %v, want city inline", got.Attributes)
	}
	if _, ok := got.Attributes["email"]; ok {
		t.Error("reserved keys must not be stored as attributes")
	}
}

func TestUserDoc_OmitsMissingGoogleID(t *testing.T) {
	t.Parallel()

	raw, err := bson.Marshal(newUserDoc(&model.User{Email: "a@b.c"}))
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	if _, err := bson.Raw(raw).LookupErr("google_id"); err == nil {
		t.Error("google_id must be absent so the sparse unique index ignores the document")
	}
	providers, err := bson.Raw(raw).LookupErr("auth_providers")
	if err != nil || providers.Type != bson.TypeArray {
		t.Errorf("auth_providers should be an empty array, got %v (%v)", providers, err)
	}
}

func TestDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := func(index string) error {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{
			Code:    11000,
			Message: fmt.Sprintf("E11000 duplicate key error collection: db.users index: %s dup key", index),
		}}}
	}

	if got := duplicateKeyError(dup(googleIDIndex)); !errors.Is(got, repository.ErrGoogleIDExists) {
		t.Errorf("google id index: got %v", got)
	}
	if got := duplicateKeyError(dup(emailIndex)); !errors.Is(got, repository.ErrEmailExists) {
		t.Errorf("email index: got %v", got)
	}
	if got := duplicateKeyError(errors.New("boom")); got != nil {
		t.Errorf("plain error: got %v, want nil", got)
	}
}

func TestObjectID(t *testing.T) {
	t.Parallel()

	if _, ok := objectID("507f1f77bcf86cd799439011"); !ok {
		t.Error("valid hex rejected")
	}
	for _, bad := range []string{"", "not-an-id", "01J00000000000000000000000"} {
		if _, ok := objectID(bad); ok {
			t.Errorf("objectID(%q) accepted", bad)
		}
	}
}
