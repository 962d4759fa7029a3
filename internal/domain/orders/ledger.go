package orders

import (
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
)

// NormalizePayments migra el escalar legado "monto abonado" a la lista de
// pagos: si la orden no tiene pagos y el escalar es > 0, se sintetiza un
// Payment con la fecha de la orden, el método de pago de la orden y usuario
// "-". El escalar se descarta y no vuelve a persistirse.
func NormalizePayments(o *entity.Order) {
	if len(o.Payments) == 0 && o.LegacyAmountPaid != nil && o.LegacyAmountPaid.GreaterThan(decimal.Zero) {
		o.Payments = []entity.Payment{{
			Date:       o.Date,
			Amount:     *o.LegacyAmountPaid,
			Method:     o.PaymentMethod,
			RecordedBy: "-",
		}}
	}
	o.LegacyAmountPaid = nil
}

// TotalPaid suma los montos de todos los pagos registrados.
func TotalPaid(o *entity.Order) decimal.Decimal {
	total := decimal.Zero
	for i := range o.Payments {
		total = total.Add(o.Payments[i].Amount)
	}
	return total
}

// DeriveStatus deriva el estado de pago de una venta desde sus pagos:
// paid si Σpagos ≥ total, partial si 0 < Σpagos < total, pending si no hay
// nada pagado. Los presupuestos no tienen estado de pago (devuelve vacío).
func DeriveStatus(o *entity.Order) string {
	if !o.IsSale() {
		return ""
	}
	paid := TotalPaid(o)
	switch {
	case paid.GreaterThanOrEqual(o.Total):
		return entity.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return entity.PaymentStatusPartial
	default:
		return entity.PaymentStatusPending
	}
}

// Remaining devuelve el saldo pendiente de la venta (puede ser negativo si
// el total bajó por una edición posterior a los pagos).
func Remaining(o *entity.Order) decimal.Decimal {
	return o.Total.Sub(TotalPaid(o))
}

// ValidateNewPayment verifica que un pago nuevo sea admisible: la venta debe
// tener saldo y el monto debe caer en (0, restante]. Fuera de rango es un
// error de validación, nunca un clamp silencioso.
func ValidateNewPayment(o *entity.Order, amount decimal.Decimal) error {
	remaining := Remaining(o)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return domain.Validation("payment", "la venta no tiene saldo pendiente")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Validation("amount", "el monto debe ser mayor a cero")
	}
	if amount.GreaterThan(remaining) {
		return domain.Validation("amount", "el monto supera el saldo pendiente ("+remaining.String()+")")
	}
	return nil
}
