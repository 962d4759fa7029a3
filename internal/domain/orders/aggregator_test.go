package orders_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/orders"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(saleUnit, price string, qty int, discountPct string) entity.OrderItem {
	return entity.OrderItem{
		Category:    entity.CategoryWood,
		SaleUnit:    saleUnit,
		UnitPrice:   d(price),
		Quantity:    qty,
		DiscountPct: d(discountPct),
	}
}

// Vector de la política comercial: subtotal 100000, sin descuentos por línea,
// contado ⇒ descuento 10000 y total 90000 (sin envío).
func TestAggregate_DescuentoContado(t *testing.T) {
	items := []entity.OrderItem{item(entity.SaleUnitPie, "50000", 2, "0")}

	got := orders.Aggregate(items, true, entity.DeliveryPickup, decimal.Zero)

	assert.True(t, d("100000").Equal(got.Subtotal), "subtotal %s", got.Subtotal)
	assert.True(t, d("10000").Equal(got.CashDiscount), "contado %s", got.CashDiscount)
	assert.True(t, got.ShippingCost.IsZero())
	assert.True(t, d("90000").Equal(got.Total), "total %s", got.Total)
}

// Una línea M2 ya tiene la cantidad embebida en el precio: contribuye el
// precio solo, sin volver a multiplicar por cantidad.
func TestAggregate_LineaM2NoDuplicaCantidad(t *testing.T) {
	items := []entity.OrderItem{item(entity.SaleUnitM2, "11300", 7, "0")}

	got := orders.Aggregate(items, false, entity.DeliveryPickup, decimal.Zero)

	assert.True(t, d("11300").Equal(got.Subtotal), "subtotal %s", got.Subtotal)
}

func TestAggregate_DescuentoPorLinea(t *testing.T) {
	items := []entity.OrderItem{
		item(entity.SaleUnitPie, "10000", 3, "10"), // aporta 30000, descuento 3000
		item(entity.SaleUnitM2, "20000", 5, "50"),  // aporta 20000, descuento 10000
	}

	got := orders.Aggregate(items, false, entity.DeliveryPickup, decimal.Zero)

	assert.True(t, d("50000").Equal(got.Subtotal))
	assert.True(t, d("13000").Equal(got.DiscountTotal))
	assert.True(t, d("37000").Equal(got.Total))
}

func TestAggregate_EnvioSoloADomicilio(t *testing.T) {
	items := []entity.OrderItem{item(entity.SaleUnitPie, "10000", 1, "0")}

	pickup := orders.Aggregate(items, false, entity.DeliveryPickup, d("3500"))
	assert.True(t, pickup.ShippingCost.IsZero(), "retiro en local no suma envío")

	home := orders.Aggregate(items, false, entity.DeliveryHome, d("3500"))
	assert.True(t, d("3500").Equal(home.ShippingCost))
	assert.True(t, d("13500").Equal(home.Total))

	// Costo inválido cuenta como 0.
	invalid := orders.Aggregate(items, false, entity.DeliveryHome, d("-10"))
	assert.True(t, invalid.ShippingCost.IsZero())
}

func TestAggregate_TotalNuncaNegativo(t *testing.T) {
	// 100% de descuento + contado dejaría el total bajo cero: clamp a 0.
	items := []entity.OrderItem{item(entity.SaleUnitPie, "10000", 1, "100")}

	got := orders.Aggregate(items, true, entity.DeliveryPickup, decimal.Zero)

	assert.True(t, got.Total.IsZero(), "total %s", got.Total)
}

func TestAggregate_Invariante(t *testing.T) {
	items := []entity.OrderItem{
		item(entity.SaleUnitPie, "10900", 3, "5"),
		item(entity.SaleUnitM2, "11300", 7, "0"),
		item(entity.SaleUnitUnidad, "4500", 2, "15"),
	}
	got := orders.Aggregate(items, true, entity.DeliveryHome, d("2500"))

	want := got.Subtotal.Sub(got.DiscountTotal).Sub(got.CashDiscount).Add(got.ShippingCost)
	assert.True(t, want.Equal(got.Total))
}
