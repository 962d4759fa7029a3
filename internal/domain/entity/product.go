package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto del corralón.
const (
	CategoryWood     = "wood"     // madera (dimensionada, machimbre, deck)
	CategoryHardware = "hardware" // ferretería
	CategoryGeneric  = "generic"  // resto (accesorios, varios)
)

// Unidades de venta. Determinan la fórmula de precio.
const (
	SaleUnitPie    = "pie"    // corte volumétrico a medida (pie tablar)
	SaleUnitM2     = "m2"     // paneles por área (machimbre, deck)
	SaleUnitUnidad = "unidad" // madera vendida por unidad entera
	SaleUnitPieza  = "pieza"  // ferretería / genéricos por pieza
)

// Product representa un producto del inventario del corralón.
// Height/Width/Length solo aplican a madera (en pulgadas y metros, como el
// sistema histórico). RetailPrice queda resuelto de la cadena legada de
// campos de precio al momento de cargar desde la persistencia.
// Stock es entero y puede quedar negativo tras una reconciliación (backorder).
type Product struct {
	ID           string
	Name         string
	Category     string
	SaleUnit     string
	Height       decimal.Decimal // alto / espesor
	Width        decimal.Decimal // ancho
	Length       decimal.Decimal // largo
	PricePerUnit decimal.Decimal // precio por pie tablar o por m2
	RetailPrice  decimal.Decimal // precio de venta directo (ferretería/genérico)
	Stock        int
	Cepillado    bool // elegible para recargo de cepillado
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ResolveRetailPrice resuelve el precio de venta desde la cadena legada de
// campos. El esquema histórico acumuló tres nombres para el mismo dato
// (precio_venta, precio, precio_publico); gana el primero no nulo, en ese
// orden. La cadena se resuelve una sola vez al cargar el producto.
func ResolveRetailPrice(precioVenta, precio, precioPublico *decimal.Decimal) decimal.Decimal {
	for _, p := range []*decimal.Decimal{precioVenta, precio, precioPublico} {
		if p != nil {
			return *p
		}
	}
	return decimal.Zero
}
