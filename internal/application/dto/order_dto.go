package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaveOrderItemRequest una línea del payload de guardado. Las dimensiones son
// opcionales: si vienen, son un corte a medida que reemplaza a las del
// catálogo en el snapshot (y en la fórmula de precio).
type SaveOrderItemRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	DiscountPct decimal.Decimal  `json:"discount_pct"`
	Cepillado   bool             `json:"cepillado"`
	Height      *decimal.Decimal `json:"height"`
	Width       *decimal.Decimal `json:"width"`
	Length      *decimal.Decimal `json:"length"`
}

// SaveOrderPaymentRequest un pago inicial (seña) cargado junto con la venta.
type SaveOrderPaymentRequest struct {
	Date       *time.Time      `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"omitempty,oneof=cash transfer card check"`
	RecordedBy string          `json:"recorded_by"`
}

// SaveOrderRequest payload completo de creación/edición de una orden.
// BaseVersion es la versión que el cliente tenía cargada al editar; una
// versión vieja rechaza el guardado con conflicto en lugar de pisar.
type SaveOrderRequest struct {
	ID             string                    `json:"id"`
	Kind           string                    `json:"kind" validate:"required,oneof=sale quote"`
	ClientID       string                    `json:"client_id" validate:"required"`
	Items          []SaveOrderItemRequest    `json:"items" validate:"required,min=1,dive"`
	DeliveryMethod string                    `json:"delivery_method" validate:"omitempty,oneof=pickup home_delivery"`
	ShippingCost   decimal.Decimal           `json:"shipping_cost"`
	DeliveryAddr   string                    `json:"delivery_address"`
	Carrier        string                    `json:"carrier"`
	DeliveryDate   *time.Time                `json:"delivery_date"`
	TimeRange      string                    `json:"time_range"`
	Priority       string                    `json:"priority"`
	CashPayment    bool                      `json:"cash_payment"`
	PaymentMethod  string                    `json:"payment_method" validate:"omitempty,oneof=cash transfer card check"`
	Payments       []SaveOrderPaymentRequest `json:"payments" validate:"omitempty,dive"`
	Date           *time.Time                `json:"date"`
	BaseVersion    int64                     `json:"base_version"`
}

// AddPaymentRequest alta de un pago sobre una venta existente.
type AddPaymentRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method" validate:"required,oneof=cash transfer card check"`
	RecordedBy string          `json:"recorded_by" validate:"required"`
	Date       *time.Time      `json:"date"`
}

// OrderItemResponse una línea de la orden en respuestas.
type OrderItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	SaleUnit     string          `json:"sale_unit"`
	Height       decimal.Decimal `json:"height"`
	Width        decimal.Decimal `json:"width"`
	Length       decimal.Decimal `json:"length"`
	Quantity     int             `json:"quantity"`
	DiscountPct  decimal.Decimal `json:"discount_pct"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Cepillado    bool            `json:"cepillado"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// PaymentResponse un pago en respuestas.
type PaymentResponse struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	RecordedBy string          `json:"recorded_by"`
}

// OrderResponse salida completa de una orden.
type OrderResponse struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	ClientID       string              `json:"client_id"`
	ClientName     string              `json:"client_name"`
	Items          []OrderItemResponse `json:"items"`
	DeliveryMethod string              `json:"delivery_method"`
	ShippingCost   decimal.Decimal     `json:"shipping_cost"`
	CashPayment    bool                `json:"cash_payment"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountTotal  decimal.Decimal     `json:"discount_total"`
	CashDiscount   decimal.Decimal     `json:"cash_discount"`
	Total          decimal.Decimal     `json:"total"`
	PaymentStatus  string              `json:"payment_status,omitempty"`
	Payments       []PaymentResponse   `json:"payments,omitempty"`
	Date           time.Time           `json:"date"`
	Version        int64               `json:"version"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// AdjustmentResponse resultado por producto de la reconciliación de stock.
type AdjustmentResponse struct {
	ProductID string `json:"product_id"`
	OldQty    int    `json:"old_qty"`
	NewQty    int    `json:"new_qty"`
	Delta     int    `json:"delta"`
	Outcome   string `json:"outcome"`
	NewStock  int    `json:"new_stock,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SaveOrderResponse resultado del guardado: la orden persistida más los
// resultados de reconciliación y sincronización de envío para seguimiento.
type SaveOrderResponse struct {
	Order          OrderResponse        `json:"order"`
	PaymentStatus  string               `json:"payment_status,omitempty"`
	StockResult    []AdjustmentResponse `json:"stock_result,omitempty"`
	ShipmentAction string               `json:"shipment_action,omitempty"`
	ShipmentID     string               `json:"shipment_id,omitempty"`
}
