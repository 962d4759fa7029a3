package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
	"github.com/maderasur/corralon-api/pkg/logger"
)

// Acción tomada por la sincronización del envío.
const (
	ShipmentActionNone      = "none"
	ShipmentActionCreated   = "created"
	ShipmentActionUpdated   = "updated"
	ShipmentActionCancelled = "cancelled"
)

// ShipmentResult informa qué hizo la sincronización con el envío de la orden.
type ShipmentResult struct {
	Action   string
	Shipment *entity.Shipment
}

// ShipmentSynchronizer mantiene el registro de envío 1:1 de una venta en
// sincronía con su método de entrega. Máquina de estados por (método de
// entrega, existencia de envío):
//
//	sin envío  + a domicilio  -> crear en pending  (historial "created")
//	con envío  + a domicilio  -> patch completo    (historial "updated")
//	con envío  + retiro local -> cancelar y limpiar campos de envío de la orden
//	sin envío  + retiro local -> no-op
//
// El envío cancelado se retiene: documenta que la orden tuvo entrega a
// domicilio en algún momento.
type ShipmentSynchronizer struct {
	log *logger.Logger
}

// NewShipmentSynchronizer construye el sincronizador.
func NewShipmentSynchronizer(log *logger.Logger) *ShipmentSynchronizer {
	return &ShipmentSynchronizer{log: log}
}

// Sync reconcilia el envío contra el estado actual de la orden. Puede mutar
// la orden: al cancelar se limpian sus campos específicos de envío.
func (s *ShipmentSynchronizer) Sync(
	order *entity.Order,
	shipmentRepo repository.ShipmentRepository,
	now time.Time,
) (*ShipmentResult, error) {
	shipment, err := shipmentRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("buscar envío de la orden %s: %w", order.ID, err)
	}

	switch {
	case order.HomeDelivery() && shipment == nil:
		return s.create(order, shipmentRepo, now)

	case order.HomeDelivery() && shipment != nil:
		return s.update(order, shipment, shipmentRepo, now)

	case !order.HomeDelivery() && shipment != nil && shipment.State != entity.ShipmentCancelled:
		return s.cancel(order, shipment, shipmentRepo, now)

	default:
		// Retiro en local sin envío (o ya cancelado): nada que sincronizar.
		return &ShipmentResult{Action: ShipmentActionNone, Shipment: shipment}, nil
	}
}

func (s *ShipmentSynchronizer) create(
	order *entity.Order,
	shipmentRepo repository.ShipmentRepository,
	now time.Time,
) (*ShipmentResult, error) {
	shipment := &entity.Shipment{
		ID:           uuid.New().String(),
		OrderID:      order.ID,
		State:        entity.ShipmentPending,
		Address:      shippingAddress(order),
		Carrier:      order.Carrier,
		Cost:         order.ShippingCost,
		DeliveryDate: order.DeliveryDate,
		TimeRange:    order.TimeRange,
		Priority:     order.Priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := shipmentRepo.Create(shipment); err != nil {
		return nil, fmt.Errorf("crear envío de la orden %s: %w", order.ID, err)
	}
	if err := s.appendEvent(shipment, entity.ShipmentPending, "created", shipmentRepo, now); err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", order.ID).Str("shipment_id", shipment.ID).Msg("envío creado")
	return &ShipmentResult{Action: ShipmentActionCreated, Shipment: shipment}, nil
}

func (s *ShipmentSynchronizer) update(
	order *entity.Order,
	shipment *entity.Shipment,
	shipmentRepo repository.ShipmentRepository,
	now time.Time,
) (*ShipmentResult, error) {
	// Patch completo desde el estado actual de la orden. Un envío cancelado
	// que vuelve a domicilio se reactiva por este mismo camino.
	shipment.State = entity.ShipmentUpdated
	shipment.Address = shippingAddress(order)
	shipment.Carrier = order.Carrier
	shipment.Cost = order.ShippingCost
	shipment.DeliveryDate = order.DeliveryDate
	shipment.TimeRange = order.TimeRange
	shipment.Priority = order.Priority
	shipment.UpdatedAt = now

	if err := shipmentRepo.Update(shipment); err != nil {
		return nil, fmt.Errorf("actualizar envío %s (orden %s): %w", shipment.ID, order.ID, err)
	}
	if err := s.appendEvent(shipment, entity.ShipmentUpdated, "updated", shipmentRepo, now); err != nil {
		return nil, err
	}
	return &ShipmentResult{Action: ShipmentActionUpdated, Shipment: shipment}, nil
}

func (s *ShipmentSynchronizer) cancel(
	order *entity.Order,
	shipment *entity.Shipment,
	shipmentRepo repository.ShipmentRepository,
	now time.Time,
) (*ShipmentResult, error) {
	shipment.State = entity.ShipmentCancelled
	shipment.UpdatedAt = now
	if err := shipmentRepo.Update(shipment); err != nil {
		return nil, fmt.Errorf("cancelar envío %s (orden %s): %w", shipment.ID, order.ID, err)
	}
	if err := s.appendEvent(shipment, entity.ShipmentCancelled, "cancelled - switched to pickup", shipmentRepo, now); err != nil {
		return nil, err
	}

	// La orden pasó a retiro en local: sus campos de envío se limpian.
	order.ShippingCost = decimal.Zero
	order.DeliveryAddress = ""
	order.Carrier = ""
	order.DeliveryDate = nil
	order.TimeRange = ""
	order.Priority = ""

	s.log.Info().Str("order_id", order.ID).Str("shipment_id", shipment.ID).Msg("envío cancelado: la orden pasó a retiro en local")
	return &ShipmentResult{Action: ShipmentActionCancelled, Shipment: shipment}, nil
}

func (s *ShipmentSynchronizer) appendEvent(
	shipment *entity.Shipment,
	state, comment string,
	shipmentRepo repository.ShipmentRepository,
	now time.Time,
) error {
	ev := entity.ShipmentEvent{
		ID:         uuid.New().String(),
		ShipmentID: shipment.ID,
		State:      state,
		Comment:    comment,
		CreatedAt:  now,
	}
	if err := shipmentRepo.AppendEvent(&ev); err != nil {
		return fmt.Errorf("historial del envío %s: %w", shipment.ID, err)
	}
	shipment.History = append(shipment.History, ev)
	return nil
}

// shippingAddress resuelve la dirección de entrega: el override explícito de
// la orden o, si no hay, la dirección del snapshot del cliente.
func shippingAddress(order *entity.Order) string {
	if order.DeliveryAddress != "" {
		return order.DeliveryAddress
	}
	return order.ClientAddress
}
