package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Category     string          `json:"category" validate:"required,oneof=wood hardware generic"`
	SaleUnit     string          `json:"sale_unit" validate:"required,oneof=pie m2 unidad pieza"`
	Height       decimal.Decimal `json:"height"`
	Width        decimal.Decimal `json:"width"`
	Length       decimal.Decimal `json:"length"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	Stock        int             `json:"stock" validate:"min=0"`
	Cepillado    bool            `json:"cepillado"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock no se
// toca por acá: solo lo mueve la reconciliación (con su movimiento de
// auditoría).
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Height       *decimal.Decimal `json:"height"`
	Width        *decimal.Decimal `json:"width"`
	Length       *decimal.Decimal `json:"length"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	RetailPrice  *decimal.Decimal `json:"retail_price"`
	Cepillado    *bool            `json:"cepillado"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SaleUnit     string          `json:"sale_unit"`
	Height       decimal.Decimal `json:"height"`
	Width        decimal.Decimal `json:"width"`
	Length       decimal.Decimal `json:"length"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	RetailPrice  decimal.Decimal `json:"retail_price"`
	Stock        int             `json:"stock"`
	Cepillado    bool            `json:"cepillado"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StockMovementResponse un movimiento de auditoría de inventario.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Direction     string    `json:"direction"`
	Quantity      int       `json:"quantity"`
	ReferenceKind string    `json:"reference_kind"`
	OrderID       string    `json:"order_id"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}
