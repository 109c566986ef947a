package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/repository"
)

// DonationService handles donation listings.
type DonationService struct {
	store   repository.Store
	images  ImageStore
	cache   DonationCache
	metrics metrics.Recorder
	policy  *bluemonday.Policy
}

// NewDonationService creates a new DonationService. donationCache may be nil.
func NewDonationService(store repository.Store, images ImageStore, donationCache DonationCache, recorder metrics.Recorder) *DonationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DonationService{
		store:   store,
		images:  images,
		cache:   donationCache,
		metrics: recorder,
		policy:  bluemonday.StrictPolicy(),
	}
}

// CreateDonationInput defines input for creating a donation.
// Latitude and Longitude accept a string, a number or nil.
type CreateDonationInput struct {
	Title               string
	Description         *string
	FoodPreparationTime *string
	ExpireTime          *string
	PickTime            *string
	Address             *string
	Latitude            any
	Longitude           any
}

// ImageUpload is an uploaded image file.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CreateDonation stores a donation offered by donor.
func (s *DonationService) CreateDonation(ctx context.Context, donor *model.User, input CreateDonationInput, image *ImageUpload) (*model.Donation, error) {
	if donor == nil || !donor.IsDoner {
		return nil, ErrNotDonor
	}

	title := s.sanitize(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	lat, err := parseCoordinate(input.Latitude, 90)
	if err != nil {
		return nil, err
	}
	lng, err := parseCoordinate(input.Longitude, 180)
	if err != nil {
		return nil, err
	}

	d := &model.Donation{
		Title:               title,
		Description:         s.sanitizePtr(input.Description),
		FoodPreparationTime: s.sanitizePtr(input.FoodPreparationTime),
		ExpireTime:          s.sanitizePtr(input.ExpireTime),
		PickTime:            s.sanitizePtr(input.PickTime),
		PickupLocation: model.PickupLocation{
			Latitude:  lat,
			Longitude: lng,
			Address:   s.sanitizePtr(input.Address),
		},
		DonorID:   donor.ID,
		CreatedAt: time.Now().UTC(),
	}

	if image != nil {
		path, err := s.images.SaveDonationImage(image.Filename, image.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		d.Image = &path
	}

	if err := s.store.CreateDonation(ctx, d); err != nil {
		if d.Image != nil {
			_ = s.images.Remove(*d.Image)
		}
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	s.metrics.IncDonationCreated(d.Image != nil)
	return d, nil
}

// ListDonations returns donations oldest first.
func (s *DonationService) ListDonations(ctx context.Context, filter model.DonationFilter) ([]*model.Donation, error) {
	filter.Limit = filter.EffectiveLimit()
	donations, err := s.store.ListDonations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// GetDonation returns one donation. Donations never change, so cached
// copies are served as-is.
func (s *DonationService) GetDonation(ctx context.Context, id string) (*model.Donation, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDonation(ctx, id)
		if err == nil && cached != nil {
			s.metrics.IncCacheHit(metrics.CacheDonation)
			return cached, nil
		}
		s.metrics.IncCacheMiss(metrics.CacheDonation)
	}

	d, err := s.store.GetDonation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDonationNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetDonation(ctx, d)
	}
	return d, nil
}

// sanitize strips all markup. The policy escapes what it keeps, so the
// result is unescaped again to store plain text.
func (s *DonationService) sanitize(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func (s *DonationService) sanitizePtr(v *string) *string {
	if v == nil {
		return nil
	}
	clean := s.sanitize(*v)
	return &clean
}

// parseCoordinate accepts a number or numeric string within [-limit, limit].
// Nil and blank strings mean "not given".
func parseCoordinate(v any, limit float64) (*float64, error) {
	var f float64
	switch val := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return nil, ErrInvalidCoordinates
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ErrInvalidCoordinates
		}
		f = parsed
	default:
		return nil, ErrInvalidCoordinates
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < -limit || f > limit {
		return nil, ErrInvalidCoordinates
	}
	return &f, nil
}
