package dto

type PlaceOrderRequest struct {
	Name            string   `json:"name"`
	Mobile          string   `json:"mobile"`
	Address         string   `json:"address"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LocationAddress string   `json:"locationAddress,omitempty"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageURL,omitempty"`
}
