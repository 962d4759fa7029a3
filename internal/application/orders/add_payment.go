package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/maderasur/corralon-api/internal/application/dto"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	domorders "github.com/maderasur/corralon-api/internal/domain/orders"
	"github.com/maderasur/corralon-api/internal/domain/repository"
	"github.com/maderasur/corralon-api/pkg/logger"
)

// AddPaymentUseCase registra un pago parcial o final sobre una venta y
// re-deriva su estado de pago. La lista de pagos es append-only.
type AddPaymentUseCase struct {
	orderRepo repository.OrderRepository
	log       *logger.Logger
}

// NewAddPaymentUseCase construye el caso de uso.
func NewAddPaymentUseCase(orderRepo repository.OrderRepository, log *logger.Logger) *AddPaymentUseCase {
	return &AddPaymentUseCase{orderRepo: orderRepo, log: log}
}

// Add valida el monto contra el saldo pendiente, agrega el pago y persiste
// con chequeo de versión. Un presupuesto no admite pagos.
func (uc *AddPaymentUseCase) Add(ctx context.Context, orderID string, in dto.AddPaymentRequest) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("cargar orden %s: %w", orderID, err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !order.IsSale() {
		return nil, domain.Validation("order", "un presupuesto no registra pagos")
	}

	domorders.NormalizePayments(order)
	if err := domorders.ValidateNewPayment(order, in.Amount); err != nil {
		return nil, err
	}

	payment := entity.Payment{
		ID:         uuid.New().String(),
		Date:       time.Now(),
		Amount:     in.Amount,
		Method:     in.Method,
		RecordedBy: in.RecordedBy,
	}
	if in.Date != nil {
		payment.Date = *in.Date
	}
	order.Payments = append(order.Payments, payment)
	order.PaymentStatus = domorders.DeriveStatus(order)
	order.UpdatedAt = time.Now()

	if err := uc.orderRepo.UpdateVersioned(order, order.Version); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("payment_id", payment.ID).
		Str("status", order.PaymentStatus).
		Msg("pago registrado")
	return order, nil
}
