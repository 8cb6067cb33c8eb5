package models

import "time"

// Product is a recycled-goods catalog entry.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageURL,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
