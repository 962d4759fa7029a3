package entity

import "github.com/shopspring/decimal"

// OrderItem es una línea de la orden. Lleva un snapshot del producto al
// momento de la selección (nombre, categoría, dimensiones, precio base):
// cambios posteriores del catálogo no alteran ventas ya cargadas.
// UnitPrice es el precio resuelto por el calculador; ante cualquier cambio de
// dimensiones, precio base, cantidad (solo M2) o cepillado se recalcula de
// inmediato — no existe estado de precio viejo.
type OrderItem struct {
	ID        string
	ProductID string

	// Snapshot del producto.
	Name         string
	Category     string
	SaleUnit     string
	Height       decimal.Decimal
	Width        decimal.Decimal
	Length       decimal.Decimal
	PricePerUnit decimal.Decimal // base: por pie, por m2, por unidad o precio de venta resuelto

	Quantity    int
	DiscountPct decimal.Decimal // 0–100
	UnitPrice   decimal.Decimal // resuelto; en líneas M2 ya incluye la cantidad
	Cepillado   bool            // recargo aplicado
}
