package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con
// pool o tx). Cabecera en orders, líneas en order_items, pagos en
// order_payments. La columna legada monto_abonado solo se lee: la migración
// a pagos corre en el dominio y a partir de ahí se persiste NULL.
type OrderRepo struct {
	q   Querier
	ctx context.Context
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// WithContext devuelve una copia del repo cuyas operaciones derivan su
// timeout del contexto dado (el del request dentro del TxRunner).
func (r *OrderRepo) WithContext(ctx context.Context) *OrderRepo {
	cp := *r
	cp.ctx = ctx
	return &cp
}

const orderColumns = `
	id, kind, client_id, client_name, client_phone, client_address,
	delivery_method, shipping_cost, delivery_address, carrier, delivery_date,
	time_range, priority, cash_payment, payment_method, monto_abonado,
	subtotal, discount_total, cash_discount, total, payment_status,
	date, version, created_at, updated_at`

// Create persiste la orden completa (cabecera, líneas y pagos).
func (r *OrderRepo) Create(o *entity.Order) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO orders (id, kind, client_id, client_name, client_phone, client_address,
		                    delivery_method, shipping_cost, delivery_address, carrier, delivery_date,
		                    time_range, priority, cash_payment, payment_method,
		                    subtotal, discount_total, cash_discount, total, payment_status,
		                    date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Kind, o.ClientID, o.ClientName, o.ClientPhone, o.ClientAddress,
		o.DeliveryMethod, o.ShippingCost, nullIfEmpty(o.DeliveryAddress), nullIfEmpty(o.Carrier), o.DeliveryDate,
		nullIfEmpty(o.TimeRange), nullIfEmpty(o.Priority), o.CashPayment, nullIfEmpty(o.PaymentMethod),
		o.Subtotal, o.DiscountTotal, o.CashDiscount, o.Total, nullIfEmpty(o.PaymentStatus),
		o.Date, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("insert order", "orders", err)
	}
	if err := r.insertItems(o); err != nil {
		return err
	}
	return r.insertPayments(o)
}

// GetByID devuelve la orden completa o nil si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	row := r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get order", "orders", err)
	}
	if o.Items, err = r.loadItems(o.ID); err != nil {
		return nil, err
	}
	if o.Payments, err = r.loadPayments(o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateVersioned aplica una escritura condicional: la cabecera solo se
// actualiza si la versión persistida coincide con baseVersion. Si no
// coincide (otra edición ganó), devuelve domain.ErrConflict sin tocar nada.
// Las líneas se reescriben completas; los pagos se reinsertan tal como
// vienen (el dominio garantiza que la lista solo crece).
func (r *OrderRepo) UpdateVersioned(o *entity.Order, baseVersion int64) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		UPDATE orders
		SET client_id = $2, client_name = $3, client_phone = $4, client_address = $5,
		    delivery_method = $6, shipping_cost = $7, delivery_address = $8, carrier = $9,
		    delivery_date = $10, time_range = $11, priority = $12, cash_payment = $13,
		    payment_method = $14, monto_abonado = NULL,
		    subtotal = $15, discount_total = $16, cash_discount = $17, total = $18,
		    payment_status = $19, version = version + 1, updated_at = $20
		WHERE id = $1 AND version = $21`
	tag, err := r.q.Exec(ctx, query,
		o.ID, o.ClientID, o.ClientName, o.ClientPhone, o.ClientAddress,
		o.DeliveryMethod, o.ShippingCost, nullIfEmpty(o.DeliveryAddress), nullIfEmpty(o.Carrier),
		o.DeliveryDate, nullIfEmpty(o.TimeRange), nullIfEmpty(o.Priority), o.CashPayment,
		nullIfEmpty(o.PaymentMethod),
		o.Subtotal, o.DiscountTotal, o.CashDiscount, o.Total,
		nullIfEmpty(o.PaymentStatus), o.UpdatedAt, baseVersion,
	)
	if err != nil {
		return persistErr("update order", "orders", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	o.Version = baseVersion + 1

	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return persistErr("delete order items", "order_items", err)
	}
	if err := r.insertItems(o); err != nil {
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM order_payments WHERE order_id = $1`, o.ID); err != nil {
		return persistErr("delete order payments", "order_payments", err)
	}
	return r.insertPayments(o)
}

// List devuelve una página de cabeceras (sin líneas ni pagos), más recientes
// primero. kind vacío lista ventas y presupuestos juntos.
func (r *OrderRepo) List(kind string, limit, offset int) ([]*entity.Order, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR kind = $1)
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, kind, limit, offset)
	if err != nil {
		return nil, persistErr("list orders", "orders", err)
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, persistErr("scan order", "orders", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OrderRepo) insertItems(o *entity.Order) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO order_items (id, order_id, position, product_id, name, category, sale_unit,
		                         height, width, length, price_per_unit, quantity, discount_pct,
		                         unit_price, cepillado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query,
			it.ID, o.ID, i, it.ProductID, it.Name, it.Category, it.SaleUnit,
			it.Height, it.Width, it.Length, it.PricePerUnit, it.Quantity, it.DiscountPct,
			it.UnitPrice, it.Cepillado,
		)
		if err != nil {
			return persistErr("insert order item", "order_items", err)
		}
	}
	return nil
}

func (r *OrderRepo) insertPayments(o *entity.Order) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO order_payments (id, order_id, date, amount, method, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range o.Payments {
		p := &o.Payments[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err := r.q.Exec(ctx, query, p.ID, o.ID, p.Date, p.Amount, nullIfEmpty(p.Method), p.RecordedBy)
		if err != nil {
			return persistErr("insert payment", "order_payments", err)
		}
	}
	return nil
}

func (r *OrderRepo) loadItems(orderID string) ([]entity.OrderItem, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, name, category, sale_unit, height, width, length,
		       price_per_unit, quantity, discount_pct, unit_price, cepillado
		FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, persistErr("list order items", "order_items", err)
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(
			&it.ID, &it.ProductID, &it.Name, &it.Category, &it.SaleUnit,
			&it.Height, &it.Width, &it.Length,
			&it.PricePerUnit, &it.Quantity, &it.DiscountPct, &it.UnitPrice, &it.Cepillado,
		); err != nil {
			return nil, persistErr("scan order item", "order_items", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) loadPayments(orderID string) ([]entity.Payment, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx, `
		SELECT id, date, amount, method, recorded_by
		FROM order_payments WHERE order_id = $1 ORDER BY date, id`, orderID)
	if err != nil {
		return nil, persistErr("list payments", "order_payments", err)
	}
	defer rows.Close()

	var payments []entity.Payment
	for rows.Next() {
		var p entity.Payment
		var method *string
		if err := rows.Scan(&p.ID, &p.Date, &p.Amount, &method, &p.RecordedBy); err != nil {
			return nil, persistErr("scan payment", "order_payments", err)
		}
		p.Method = derefStr(method)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var deliveryAddr, carrier, timeRange, priority, paymentMethod, paymentStatus *string
	err := row.Scan(
		&o.ID, &o.Kind, &o.ClientID, &o.ClientName, &o.ClientPhone, &o.ClientAddress,
		&o.DeliveryMethod, &o.ShippingCost, &deliveryAddr, &carrier, &o.DeliveryDate,
		&timeRange, &priority, &o.CashPayment, &paymentMethod, &o.LegacyAmountPaid,
		&o.Subtotal, &o.DiscountTotal, &o.CashDiscount, &o.Total, &paymentStatus,
		&o.Date, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.DeliveryAddress = derefStr(deliveryAddr)
	o.Carrier = derefStr(carrier)
	o.TimeRange = derefStr(timeRange)
	o.Priority = derefStr(priority)
	o.PaymentMethod = derefStr(paymentMethod)
	o.PaymentStatus = derefStr(paymentStatus)
	return &o, nil
}
