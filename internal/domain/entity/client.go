package entity

import "time"

// Client representa un cliente del corralón. Las órdenes guardan un snapshot
// denormalizado (nombre, teléfono, dirección) al momento de la venta.
type Client struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
