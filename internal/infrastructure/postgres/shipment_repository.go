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

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

// ShipmentRepo implementación de ShipmentRepository sobre PostgreSQL.
// Cabecera en shipments, historial append-only en shipment_events.
type ShipmentRepo struct {
	q   Querier
	ctx context.Context
}

// NewShipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// WithContext devuelve una copia del repo cuyas operaciones derivan su
// timeout del contexto dado.
func (r *ShipmentRepo) WithContext(ctx context.Context) *ShipmentRepo {
	cp := *r
	cp.ctx = ctx
	return &cp
}

const shipmentColumns = `
	id, order_id, state, address, carrier, cost, delivery_date,
	time_range, priority, created_at, updated_at`

// Create persiste el envío. order_id tiene constraint único: un envío por
// orden.
func (r *ShipmentRepo) Create(s *entity.Shipment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO shipments (id, order_id, state, address, carrier, cost, delivery_date,
		                       time_range, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.OrderID, s.State, s.Address, nullIfEmpty(s.Carrier), s.Cost, s.DeliveryDate,
		nullIfEmpty(s.TimeRange), nullIfEmpty(s.Priority), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("insert shipment", "shipments", err)
	}
	return nil
}

// GetByOrderID devuelve el envío de la orden, o nil si nunca tuvo uno.
// El historial no se carga acá; pedirlo con ListEvents.
func (r *ShipmentRepo) GetByOrderID(orderID string) (*entity.Shipment, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	row := r.q.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1`, orderID)
	s, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get shipment", "shipments", err)
	}
	return s, nil
}

// Update reescribe la cabecera del envío (estado y datos logísticos).
func (r *ShipmentRepo) Update(s *entity.Shipment) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		UPDATE shipments
		SET state = $2, address = $3, carrier = $4, cost = $5, delivery_date = $6,
		    time_range = $7, priority = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.ID, s.State, s.Address, nullIfEmpty(s.Carrier), s.Cost, s.DeliveryDate,
		nullIfEmpty(s.TimeRange), nullIfEmpty(s.Priority), s.UpdatedAt,
	)
	if err != nil {
		return persistErr("update shipment", "shipments", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendEvent inserta una entrada de historial. Nunca hay UPDATE sobre
// shipment_events.
func (r *ShipmentRepo) AppendEvent(e *entity.ShipmentEvent) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO shipment_events (id, shipment_id, state, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, e.ID, e.ShipmentID, e.State, e.Comment, e.CreatedAt)
	if err != nil {
		return persistErr("insert shipment event", "shipment_events", err)
	}
	return nil
}

// ListEvents devuelve el historial completo en orden cronológico.
func (r *ShipmentRepo) ListEvents(shipmentID string) ([]entity.ShipmentEvent, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx, `
		SELECT id, shipment_id, state, comment, created_at
		FROM shipment_events WHERE shipment_id = $1 ORDER BY created_at, id`, shipmentID)
	if err != nil {
		return nil, persistErr("list shipment events", "shipment_events", err)
	}
	defer rows.Close()

	var events []entity.ShipmentEvent
	for rows.Next() {
		var e entity.ShipmentEvent
		if err := rows.Scan(&e.ID, &e.ShipmentID, &e.State, &e.Comment, &e.CreatedAt); err != nil {
			return nil, persistErr("scan shipment event", "shipment_events", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var s entity.Shipment
	var carrier, timeRange, priority *string
	err := row.Scan(
		&s.ID, &s.OrderID, &s.State, &s.Address, &carrier, &s.Cost, &s.DeliveryDate,
		&timeRange, &priority, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Carrier = derefStr(carrier)
	s.TimeRange = derefStr(timeRange)
	s.Priority = derefStr(priority)
	return &s, nil
}
