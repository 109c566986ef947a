package dto

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
