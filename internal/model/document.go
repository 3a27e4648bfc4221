package model

import "time"

// Document is a stored JSON document of a collection.
type Document struct {
	ID         int64          `json:"id"`
	Collection string         `json:"collection"`
	Data       map[string]any `json:"data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
