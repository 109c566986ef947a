package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/config"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository/memstore"
)

func TestOpenStore_Memory(t *testing.T) {
	t.Parallel()

	store, err := OpenStore(context.Background(), &config.Config{StoreDriver: config.DriverMemory})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if _, ok := store.(*memstore.Store); !ok {
		t.Errorf("expected *memstore.Store, got %T", store)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := OpenStore(context.Background(), &config.Config{StoreDriver: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"with password", "postgres://app:s3cret@db:5432/food", "postgres://app:xxxxx@db:5432/food"},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"user only", "mongodb://app@mongo:27017", "mongodb://app@mongo:27017"},
		{"unparseable", "postgres://app:s3cret@db:port/food", "[redacted]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RedactURL(tt.in); got != tt.want {
				t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	dsn := "postgres://app:s3cret@db:5432/food"
	err := errors.New("connect " + dsn + " failed: password=hunter2 rejected")

	got := SanitizeError(err, dsn, "")
	if strings.Contains(got, "s3cret") || strings.Contains(got, "hunter2") {
		t.Errorf("secret leaked: %q", got)
	}
	if !strings.Contains(got, "postgres://app:xxxxx@db:5432/food") {
		t.Errorf("expected redacted url in %q", got)
	}
	if SanitizeError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}
