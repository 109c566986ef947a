package dto

import "github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"

// CreateDonationRequest is the body of POST /api/donations, decoded from
// JSON or built from form fields. Coordinates may be strings or numbers.
type CreateDonationRequest struct {
	Title               string  `json:"title"`
	Description         *string `json:"description"`
	FoodPreparationTime *string `json:"food_preparation_time"`
	ExpireTime          *string `json:"expire_time"`
	PickTime            *string `json:"pick_time"`
	Address             *string `json:"address"`
	Latitude            any     `json:"latitude"`
	Longitude           any     `json:"longitude"`
}

// ToInput converts the request to service input.
func (r CreateDonationRequest) ToInput() service.CreateDonationInput {
	return service.CreateDonationInput{
		Title:               r.Title,
		Description:         r.Description,
		FoodPreparationTime: r.FoodPreparationTime,
		ExpireTime:          r.ExpireTime,
		PickTime:            r.PickTime,
		Address:             r.Address,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
	}
}
