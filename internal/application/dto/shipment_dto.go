package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentEventResponse una entrada del historial del envío.
type ShipmentEventResponse struct {
	State     string    `json:"state"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// ShipmentResponse salida de un envío con su historial completo.
type ShipmentResponse struct {
	ID           string                  `json:"id"`
	OrderID      string                  `json:"order_id"`
	State        string                  `json:"state"`
	Address      string                  `json:"address"`
	Carrier      string                  `json:"carrier"`
	Cost         decimal.Decimal         `json:"cost"`
	DeliveryDate *time.Time              `json:"delivery_date,omitempty"`
	TimeRange    string                  `json:"time_range"`
	Priority     string                  `json:"priority"`
	History      []ShipmentEventResponse `json:"history"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}
