package httpx

import "encoding/json"

type ProductResponse struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	Price       *json.Number `json:"price"`
	Description string       `json:"description"`
}

type CatalogResponse struct {
	Total int               `json:"total"`
	Items []ProductResponse `json:"items"`
}

type PlaceOrderRequest struct {
	Payment string      `json:"payment"`
	Address string      `json:"address"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Total   json.Number `json:"total"`
	Items   []string    `json:"items"`
}

type OrderResponse struct {
	ID    string      `json:"id"`
	Total json.Number `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
