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

var _ repository.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implementación de ClientRepository sobre PostgreSQL.
type ClientRepo struct {
	q   Querier
	ctx context.Context
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

// WithContext devuelve una copia del repo cuyas operaciones derivan su
// timeout del contexto dado.
func (r *ClientRepo) WithContext(ctx context.Context) *ClientRepo {
	cp := *r
	cp.ctx = ctx
	return &cp
}

const clientColumns = `id, name, phone, email, address, created_at, updated_at`

// Create persiste un cliente nuevo.
func (r *ClientRepo) Create(c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO clients (id, name, phone, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return persistErr("insert client", "clients", err)
	}
	return nil
}

// GetByID devuelve el cliente o nil si no existe.
func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	row := r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get client", "clients", err)
	}
	return c, nil
}

// Update persiste los datos de contacto del cliente.
func (r *ClientRepo) Update(c *entity.Client) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		UPDATE clients
		SET name = $2, phone = $3, email = $4, address = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.Phone), nullIfEmpty(c.Email), nullIfEmpty(c.Address), c.UpdatedAt,
	)
	if err != nil {
		return persistErr("update client", "clients", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve una página de clientes ordenada por nombre.
func (r *ClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, persistErr("list clients", "clients", err)
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, persistErr("scan client", "clients", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanClient(row pgx.Row) (*entity.Client, error) {
	var c entity.Client
	var phone, email, address *string
	err := row.Scan(&c.ID, &c.Name, &phone, &email, &address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Phone = derefStr(phone)
	c.Email = derefStr(email)
	c.Address = derefStr(address)
	return &c, nil
}
