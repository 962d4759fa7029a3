package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
	PaymentMethodCheck    = "check"
)

// Payment es un pago parcial o total registrado sobre una venta.
// La lista de pagos es append-only: nunca se edita ni se borra un pago.
type Payment struct {
	ID         string
	Date       time.Time
	Amount     decimal.Decimal // > 0
	Method     string
	RecordedBy string // identidad de quien lo registró; "-" en pagos migrados
}
