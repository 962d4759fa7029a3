package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository sobre
// PostgreSQL. Solo INSERT y SELECT: los movimientos son write-once.
type StockMovementRepo struct {
	q   Querier
	ctx context.Context
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// WithContext devuelve una copia del repo cuyas operaciones derivan su
// timeout del contexto dado.
func (r *StockMovementRepo) WithContext(ctx context.Context) *StockMovementRepo {
	cp := *r
	cp.ctx = ctx
	return &cp
}

const movementColumns = `id, product_id, direction, quantity, reference_kind, order_id, note, created_at`

// Create inserta el movimiento de auditoría.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO stock_movements (id, product_id, direction, quantity, reference_kind, order_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Direction, m.Quantity, m.ReferenceKind, m.OrderID, m.Note, m.CreatedAt,
	)
	if err != nil {
		return persistErr("insert stock movement", "stock_movements", err)
	}
	return nil
}

// ListByProduct devuelve los movimientos de un producto, más recientes primero.
func (r *StockMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM stock_movements
		WHERE product_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
	if err != nil {
		return nil, persistErr("list stock movements", "stock_movements", err)
	}
	return collectMovements(rows)
}

// ListByOrder devuelve los movimientos generados por la edición de una orden.
func (r *StockMovementRepo) ListByOrder(orderID string) ([]*entity.StockMovement, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM stock_movements
		WHERE order_id = $1 ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, persistErr("list stock movements", "stock_movements", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var movements []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.ProductID, &m.Direction, &m.Quantity, &m.ReferenceKind,
			&m.OrderID, &m.Note, &m.CreatedAt,
		); err != nil {
			return nil, persistErr("scan stock movement", "stock_movements", err)
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}
