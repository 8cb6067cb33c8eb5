package models

import "time"

// Order is a bio-waste pickup / delivery request. Coordinates are optional:
// the client may submit an order without having fetched a device location.
type Order struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Mobile          string    `json:"mobile"`
	Address         string    `json:"address"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	LocationAddress string    `json:"locationAddress,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
