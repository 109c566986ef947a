// Package model defines domain entities for the application.
package model

import "time"

// Item is a named record in the generic item collection.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
