package entity

import "time"

// Direcciones de movimiento de stock.
const (
	MovementIn  = "in"  // entrada (mercadería devuelta / línea quitada)
	MovementOut = "out" // salida (mercadería consumida / línea agregada)
)

// Referencia que origina el movimiento. Hoy la única fuente es la edición
// de una venta; el tipo queda abierto a futuras fuentes (ajuste manual).
const ReferenceOrderEdit = "order_edit"

// StockMovement es el registro de auditoría de un ajuste de inventario.
// Write-once: se inserta y nunca se modifica.
type StockMovement struct {
	ID            string
	ProductID     string
	Direction     string // in | out
	Quantity      int    // siempre positivo (|delta|)
	ReferenceKind string
	OrderID       string
	Note          string // cantidad vieja → nueva y si la línea fue agregada/quitada/modificada
	CreatedAt     time.Time
}
