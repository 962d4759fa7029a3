package usecase

import (
	"github.com/maderasur/corralon-api/internal/application/dto"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	domorders "github.com/maderasur/corralon-api/internal/domain/orders"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

// OrderQueryUseCase consultas de solo lectura sobre órdenes, envíos y
// movimientos de stock (la mutación pasa por SaveOrder/AddPayment).
type OrderQueryUseCase struct {
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	movementRepo repository.StockMovementRepository
}

// NewOrderQueryUseCase construye el caso de uso.
func NewOrderQueryUseCase(
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	movementRepo repository.StockMovementRepository,
) *OrderQueryUseCase {
	return &OrderQueryUseCase{
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		movementRepo: movementRepo,
	}
}

// GetByID devuelve la orden con estado de pago derivado al vuelo (cubre
// órdenes históricas con el escalar legado sin migrar).
func (uc *OrderQueryUseCase) GetByID(id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	domorders.NormalizePayments(order)
	order.PaymentStatus = domorders.DeriveStatus(order)
	out := ToOrderResponse(order)
	return &out, nil
}

// List devuelve una página de ventas o presupuestos (kind vacío = todas).
func (uc *OrderQueryUseCase) List(kind string, page dto.PageRequest) ([]dto.OrderResponse, error) {
	page.DefaultPage()
	orders, err := uc.orderRepo.List(kind, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		domorders.NormalizePayments(o)
		o.PaymentStatus = domorders.DeriveStatus(o)
		out = append(out, ToOrderResponse(o))
	}
	return out, nil
}

// ShipmentByOrder devuelve el envío de una orden con su historial, o nil.
func (uc *OrderQueryUseCase) ShipmentByOrder(orderID string) (*dto.ShipmentResponse, error) {
	shipment, err := uc.shipmentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, nil
	}
	events, err := uc.shipmentRepo.ListEvents(shipment.ID)
	if err != nil {
		return nil, err
	}
	shipment.History = events
	out := toShipmentResponse(shipment)
	return &out, nil
}

// MovementsByProduct lista los movimientos de auditoría de un producto.
func (uc *OrderQueryUseCase) MovementsByProduct(productID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.DefaultPage()
	movements, err := uc.movementRepo.ListByProduct(productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// ToOrderResponse mapea la entidad a su representación de salida.
func ToOrderResponse(o *entity.Order) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:             o.ID,
		Kind:           o.Kind,
		ClientID:       o.ClientID,
		ClientName:     o.ClientName,
		DeliveryMethod: o.DeliveryMethod,
		ShippingCost:   o.ShippingCost,
		CashPayment:    o.CashPayment,
		Subtotal:       o.Subtotal,
		DiscountTotal:  o.DiscountTotal,
		CashDiscount:   o.CashDiscount,
		Total:          o.Total,
		PaymentStatus:  o.PaymentStatus,
		Date:           o.Date,
		Version:        o.Version,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for i := range o.Items {
		it := &o.Items[i]
		out.Items = append(out.Items, dto.OrderItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Name:         it.Name,
			Category:     it.Category,
			SaleUnit:     it.SaleUnit,
			Height:       it.Height,
			Width:        it.Width,
			Length:       it.Length,
			Quantity:     it.Quantity,
			DiscountPct:  it.DiscountPct,
			UnitPrice:    it.UnitPrice,
			Cepillado:    it.Cepillado,
			PricePerUnit: it.PricePerUnit,
		})
	}
	for i := range o.Payments {
		p := &o.Payments[i]
		out.Payments = append(out.Payments, dto.PaymentResponse{
			ID:         p.ID,
			Date:       p.Date,
			Amount:     p.Amount,
			Method:     p.Method,
			RecordedBy: p.RecordedBy,
		})
	}
	return out
}

func toShipmentResponse(s *entity.Shipment) dto.ShipmentResponse {
	out := dto.ShipmentResponse{
		ID:           s.ID,
		OrderID:      s.OrderID,
		State:        s.State,
		Address:      s.Address,
		Carrier:      s.Carrier,
		Cost:         s.Cost,
		DeliveryDate: s.DeliveryDate,
		TimeRange:    s.TimeRange,
		Priority:     s.Priority,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	for _, ev := range s.History {
		out.History = append(out.History, dto.ShipmentEventResponse{
			State:     ev.State,
			Comment:   ev.Comment,
			CreatedAt: ev.CreatedAt,
		})
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		ReferenceKind: m.ReferenceKind,
		OrderID:       m.OrderID,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}
