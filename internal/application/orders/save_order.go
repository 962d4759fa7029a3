package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/application/dto"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	domorders "github.com/maderasur/corralon-api/internal/domain/orders"
	"github.com/maderasur/corralon-api/internal/domain/pricing"
	"github.com/maderasur/corralon-api/internal/domain/repository"
	"github.com/maderasur/corralon-api/pkg/logger"
)

// Modo de guardado.
const (
	SaveModeCreate = "create"
	SaveModeEdit   = "edit"
)

// OrderSaveResult es el resultado del borde saveOrder: la orden persistida,
// su estado de pago y los resultados de reconciliación y envío. Los fallos
// parciales de stock no bloquean el guardado: viajan acá para seguimiento.
type OrderSaveResult struct {
	Order          *entity.Order
	PaymentStatus  string
	StockResult    *ReconcileResult
	ShipmentResult *ShipmentResult
}

// SaveOrderUseCase orquesta el guardado de una venta o presupuesto:
// validar → cotizar líneas → agregar totales → derivar estado de pago →
// (edición) reconciliar stock → sincronizar envío → persistir con chequeo
// de versión. Toda la mutación corre dentro del TxRunner.
type SaveOrderUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	reconciler  *StockReconciler
	shipments   *ShipmentSynchronizer
	log         *logger.Logger
}

// NewSaveOrderUseCase construye el caso de uso.
func NewSaveOrderUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	reconciler *StockReconciler,
	shipments *ShipmentSynchronizer,
	log *logger.Logger,
) *SaveOrderUseCase {
	return &SaveOrderUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		reconciler:  reconciler,
		shipments:   shipments,
		log:         log,
	}
}

// Save valida y persiste la orden. Los errores de validación bloquean antes
// de cualquier mutación; una versión base obsoleta devuelve ErrConflict.
func (uc *SaveOrderUseCase) Save(ctx context.Context, in dto.SaveOrderRequest, mode string) (*OrderSaveResult, error) {
	if err := validatePayload(in, mode); err != nil {
		return nil, err
	}

	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("cargar cliente %s: %w", in.ClientID, err)
	}
	if client == nil {
		return nil, domain.Validation("client_id", "cliente inexistente")
	}

	var original *entity.Order
	if mode == SaveModeEdit {
		original, err = uc.orderRepo.GetByID(in.ID)
		if err != nil {
			return nil, fmt.Errorf("cargar orden %s: %w", in.ID, err)
		}
		if original == nil {
			return nil, domain.ErrNotFound
		}
		// Chequeo temprano de versión: si el cliente editó sobre una copia
		// vieja, rechazar antes de cotizar nada.
		if in.BaseVersion != 0 && in.BaseVersion != original.Version {
			return nil, domain.ErrConflict
		}
	}

	order, err := uc.buildOrder(in, mode, client, original)
	if err != nil {
		return nil, err
	}

	totals := domorders.Aggregate(order.Items, order.CashPayment, order.DeliveryMethod, in.ShippingCost)
	order.Subtotal = totals.Subtotal
	order.DiscountTotal = totals.DiscountTotal
	order.CashDiscount = totals.CashDiscount
	order.ShippingCost = totals.ShippingCost
	order.Total = totals.Total

	domorders.NormalizePayments(order)
	if order.IsSale() {
		for i := range order.Payments {
			if order.Payments[i].Amount.LessThanOrEqual(decimal.Zero) {
				return nil, domain.Validation("payments", "monto de pago no positivo")
			}
		}
	}
	order.PaymentStatus = domorders.DeriveStatus(order)

	result := &OrderSaveResult{Order: order, PaymentStatus: order.PaymentStatus}
	now := time.Now()

	err = uc.txRunner.Run(ctx, func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		shipmentRepo repository.ShipmentRepository,
		step StepFunc,
	) error {
		// El diff de inventario corre solo al editar una venta: el alta no
		// descuenta stock (comportamiento histórico del negocio).
		if mode == SaveModeEdit && order.IsSale() {
			result.StockResult = uc.reconciler.Reconcile(original.Items, order.Items, order.ID, productRepo, movementRepo, step)
		}

		if order.IsSale() {
			shipResult, err := uc.shipments.Sync(order, shipmentRepo, now)
			if err != nil {
				return err
			}
			result.ShipmentResult = shipResult
		}

		if mode == SaveModeCreate {
			return orderRepo.Create(order)
		}
		return orderRepo.UpdateVersioned(order, original.Version)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("kind", order.Kind).
		Str("mode", mode).
		Str("payment_status", order.PaymentStatus).
		Msg("orden guardada")
	return result, nil
}

// buildOrder arma la entidad con snapshot de cliente y líneas cotizadas.
func (uc *SaveOrderUseCase) buildOrder(
	in dto.SaveOrderRequest,
	mode string,
	client *entity.Client,
	original *entity.Order,
) (*entity.Order, error) {
	now := time.Now()

	order := &entity.Order{
		Kind:            in.Kind,
		ClientID:        client.ID,
		ClientName:      client.Name,
		ClientPhone:     client.Phone,
		ClientAddress:   client.Address,
		DeliveryMethod:  in.DeliveryMethod,
		DeliveryAddress: in.DeliveryAddr,
		Carrier:         in.Carrier,
		DeliveryDate:    in.DeliveryDate,
		TimeRange:       in.TimeRange,
		Priority:        in.Priority,
		CashPayment:     in.CashPayment,
		PaymentMethod:   in.PaymentMethod,
		Date:            now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.DeliveryMethod == "" {
		order.DeliveryMethod = entity.DeliveryPickup
	}
	if in.Date != nil {
		order.Date = *in.Date
	}

	if mode == SaveModeCreate {
		order.ID = uuid.New().String()
		order.Version = 1
		// Pagos iniciales (seña) solo en el alta; después la lista crece
		// únicamente por AddPayment.
		for _, p := range in.Payments {
			payment := entity.Payment{
				ID:         uuid.New().String(),
				Date:       order.Date,
				Amount:     p.Amount,
				Method:     p.Method,
				RecordedBy: p.RecordedBy,
			}
			if p.Date != nil {
				payment.Date = *p.Date
			}
			order.Payments = append(order.Payments, payment)
		}
	} else {
		order.ID = original.ID
		order.Version = original.Version
		order.Date = original.Date
		order.CreatedAt = original.CreatedAt
		order.Payments = original.Payments
		order.LegacyAmountPaid = original.LegacyAmountPaid
	}

	for i, line := range in.Items {
		item, err := uc.buildItem(line)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		order.Items = append(order.Items, *item)
	}
	return order, nil
}

// buildItem toma el snapshot del producto, aplica el corte a medida si vino
// y resuelve el precio unitario. Cualquier entrada inválida corta el guardado.
func (uc *SaveOrderUseCase) buildItem(line dto.SaveOrderItemRequest) (*entity.OrderItem, error) {
	product, err := uc.productRepo.GetByID(line.ProductID)
	if err != nil {
		return nil, fmt.Errorf("cargar producto %s: %w", line.ProductID, err)
	}
	if product == nil {
		return nil, domain.Validation("product_id", "producto inexistente: "+line.ProductID)
	}

	item := &entity.OrderItem{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		Name:         product.Name,
		Category:     product.Category,
		SaleUnit:     product.SaleUnit,
		Height:       product.Height,
		Width:        product.Width,
		Length:       product.Length,
		PricePerUnit: product.PricePerUnit,
		Quantity:     line.Quantity,
		DiscountPct:  line.DiscountPct,
		Cepillado:    line.Cepillado && product.Cepillado,
	}
	if product.Category != entity.CategoryWood {
		item.PricePerUnit = product.RetailPrice
	}
	if line.Height != nil {
		item.Height = *line.Height
	}
	if line.Width != nil {
		item.Width = *line.Width
	}
	if line.Length != nil {
		item.Length = *line.Length
	}

	price, err := pricing.UnitPrice(pricing.FromItem(item))
	if err != nil {
		return nil, err
	}
	item.UnitPrice = price
	return item, nil
}

// validatePayload aplica las reglas que bloquean el guardado completo antes
// de cualquier mutación.
func validatePayload(in dto.SaveOrderRequest, mode string) error {
	if mode != SaveModeCreate && mode != SaveModeEdit {
		return domain.Validation("mode", "modo de guardado desconocido: "+mode)
	}
	if mode == SaveModeEdit && in.ID == "" {
		return domain.Validation("id", "la edición requiere el id de la orden")
	}
	if in.ClientID == "" {
		return domain.Validation("client_id", "la orden requiere un cliente")
	}
	if in.Kind != entity.OrderKindSale && in.Kind != entity.OrderKindQuote {
		return domain.Validation("kind", "tipo de orden desconocido: "+in.Kind)
	}
	if len(in.Items) == 0 {
		return domain.Validation("items", "la orden requiere al menos una línea")
	}
	for i, line := range in.Items {
		if line.Quantity < 1 {
			return domain.Validation("items", fmt.Sprintf("línea %d: la cantidad debe ser al menos 1", i+1))
		}
		if line.DiscountPct.LessThan(decimal.Zero) || line.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			return domain.Validation("items", fmt.Sprintf("línea %d: el descuento debe estar entre 0 y 100", i+1))
		}
	}
	return nil
}
