package orders

import (
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/domain/entity"
)

// Descuento por pago contado: 10% del subtotal.
var cashDiscountRate = decimal.RequireFromString("0.10")

var oneHundred = decimal.NewFromInt(100)

// Totals agrupa los montos computados de una orden.
// Invariante: Total = Subtotal − DiscountTotal − CashDiscount + ShippingCost,
// con clamp defensivo a 0.
type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	CashDiscount  decimal.Decimal
	ShippingCost  decimal.Decimal
	Total         decimal.Decimal
}

// Aggregate combina líneas ya cotizadas y flags de la orden en los totales.
// Las líneas M2 contribuyen su precio solo: ese precio ya incluye la cantidad
// y volver a multiplicar la duplicaría (clase de bug conocida del sistema
// histórico, por eso lineAmount es el único punto que decide).
func Aggregate(items []entity.OrderItem, cashPayment bool, deliveryMethod string, shippingCost decimal.Decimal) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		CashDiscount:  decimal.Zero,
		ShippingCost:  decimal.Zero,
	}

	for i := range items {
		amount := lineAmount(&items[i])
		t.Subtotal = t.Subtotal.Add(amount)
		if items[i].DiscountPct.GreaterThan(decimal.Zero) {
			t.DiscountTotal = t.DiscountTotal.Add(amount.Mul(items[i].DiscountPct).Div(oneHundred))
		}
	}

	if cashPayment {
		t.CashDiscount = t.Subtotal.Mul(cashDiscountRate)
	}

	// Envío: solo a domicilio; un costo ausente o inválido cuenta como 0.
	if deliveryMethod == entity.DeliveryHome && shippingCost.GreaterThan(decimal.Zero) {
		t.ShippingCost = shippingCost
	}

	t.Total = t.Subtotal.Sub(t.DiscountTotal).Sub(t.CashDiscount).Add(t.ShippingCost)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
	return t
}

// lineAmount es el aporte de la línea al subtotal: precio × cantidad, salvo
// M2 donde el precio ya embebe la cantidad.
func lineAmount(it *entity.OrderItem) decimal.Decimal {
	if it.SaleUnit == entity.SaleUnitM2 {
		return it.UnitPrice
	}
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}
