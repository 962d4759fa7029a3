package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipo de documento de venta.
const (
	OrderKindSale  = "sale"  // venta
	OrderKindQuote = "quote" // presupuesto (sin pagos ni stock)
)

// Métodos de entrega.
const (
	DeliveryPickup = "pickup"        // retiro en local
	DeliveryHome   = "home_delivery" // envío a domicilio
)

// Estados de pago derivados (solo ventas; un presupuesto no tiene estado).
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Order representa una venta o un presupuesto con sus líneas, pagos y totales.
// Los totales son computados por el agregador y se persisten junto a la orden;
// Version crece en cada guardado y respalda la escritura condicional
// (dos ediciones concurrentes: la segunda recibe ErrConflict).
type Order struct {
	ID   string
	Kind string

	// Cliente: referencia + snapshot denormalizado al momento de la venta.
	ClientID      string
	ClientName    string
	ClientPhone   string
	ClientAddress string

	Items []OrderItem

	DeliveryMethod  string
	ShippingCost    decimal.Decimal // solo home_delivery
	DeliveryAddress string          // override; vacío = dirección del cliente
	Carrier         string
	DeliveryDate    *time.Time
	TimeRange       string // rango horario de entrega
	Priority        string

	CashPayment   bool // descuento 10% por pago contado
	PaymentMethod string
	Payments      []Payment

	// Escalar legado "monto abonado": durante la migración se sintetiza como
	// un Payment y el campo se descarta. Nunca se escribe de vuelta.
	LegacyAmountPaid *decimal.Decimal

	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	CashDiscount  decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus string

	Date      time.Time
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsSale indica si la orden es una venta (tiene pagos y toca stock).
func (o *Order) IsSale() bool { return o.Kind == OrderKindSale }

// HomeDelivery indica si la orden se entrega a domicilio.
func (o *Order) HomeDelivery() bool { return o.DeliveryMethod == DeliveryHome }
