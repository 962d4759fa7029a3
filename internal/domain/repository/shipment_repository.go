package repository

import "github.com/maderasur/corralon-api/internal/domain/entity"

// ShipmentRepository define el puerto de persistencia para envíos.
// GetByOrderID devuelve nil sin error si la orden nunca tuvo envío.
// AppendEvent agrega al historial (append-only: nunca se reescribe una
// entrada anterior).
type ShipmentRepository interface {
	Create(shipment *entity.Shipment) error
	GetByOrderID(orderID string) (*entity.Shipment, error)
	Update(shipment *entity.Shipment) error
	AppendEvent(event *entity.ShipmentEvent) error
	ListEvents(shipmentID string) ([]entity.ShipmentEvent, error)
}
