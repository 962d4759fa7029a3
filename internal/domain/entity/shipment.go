package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del envío. Un envío cancelado se retiene (no se borra): la orden
// tuvo entrega a domicilio en algún momento y el registro documenta eso.
const (
	ShipmentPending   = "pending"
	ShipmentUpdated   = "updated"
	ShipmentCancelled = "cancelled"
)

// Shipment es el registro de envío 1:1 con una venta a domicilio.
// Su ciclo de vida sigue al método de entrega de la orden.
type Shipment struct {
	ID           string
	OrderID      string
	State        string
	Address      string // copiada del cliente o el override explícito de la orden
	Carrier      string
	Cost         decimal.Decimal
	DeliveryDate *time.Time
	TimeRange    string // rango horario
	Priority     string
	History      []ShipmentEvent
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShipmentEvent es una entrada del historial de transiciones del envío.
// El historial es append-only: las entradas anteriores no se reescriben.
type ShipmentEvent struct {
	ID         string
	ShipmentID string
	State      string
	Comment    string
	CreatedAt  time.Time
}
