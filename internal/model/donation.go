package model

import "time"

// MaxDonationListLimit caps how many donations a single list call returns.
const MaxDonationListLimit = 200

// PickupLocation describes where donated food can be collected.
type PickupLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   *string  `json:"address"`
}

// Donation is a food donation offered by a donor user.
type Donation struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         *string        `json:"description"`
	FoodPreparationTime *string        `json:"food_preparation_time"`
	ExpireTime          *string        `json:"expire_time"`
	Image               *string        `json:"image"`
	PickupLocation      PickupLocation `json:"pickup_location"`
	PickTime            *string        `json:"pick_time"`
	DonorID             string         `json:"donor_id"`
	CreatedAt           time.Time      `json:"created_at"`
}

// DonationFilter narrows a donation listing.
type DonationFilter struct {
	DonorID string
	Limit   int
}

// EffectiveLimit clamps Limit into [1, MaxDonationListLimit].
// Zero or negative values mean "as many as allowed".
func (f DonationFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxDonationListLimit {
		return MaxDonationListLimit
	}
	return f.Limit
}
