package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable
// con pool o tx). El esquema conserva la cadena legada de precios
// (precio_venta, precio, precio_publico); RetailPrice se resuelve una sola
// vez al escanear cada fila, nunca en los call sites de precio.
type ProductRepo struct {
	q   Querier
	ctx context.Context
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// WithContext devuelve una copia del repo cuyas operaciones derivan su
// timeout del contexto dado.
func (r *ProductRepo) WithContext(ctx context.Context) *ProductRepo {
	cp := *r
	cp.ctx = ctx
	return &cp
}

const productColumns = `
	id, name, category, sale_unit, height, width, length,
	price_per_unit, precio_venta, precio, precio_publico,
	stock, cepillado, created_at, updated_at`

// Create persiste un producto nuevo. El precio de venta resuelto se escribe
// en la columna moderna (precio_venta); las legadas quedan para filas
// históricas.
func (r *ProductRepo) Create(p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		INSERT INTO products (id, name, category, sale_unit, height, width, length,
		                      price_per_unit, precio_venta, stock, cepillado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.SaleUnit, p.Height, p.Width, p.Length,
		p.PricePerUnit, nullIfZeroDecimal(p.RetailPrice), p.Stock, p.Cepillado, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return persistErr("insert product", "products", err)
	}
	return nil
}

// GetByID devuelve el producto o nil si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, persistErr("get product", "products", err)
	}
	return p, nil
}

// Update persiste los campos editables del producto (el stock solo se mueve
// por AdjustStock).
func (r *ProductRepo) Update(p *entity.Product) error {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	query := `
		UPDATE products
		SET name = $2, height = $3, width = $4, length = $5,
		    price_per_unit = $6, precio_venta = $7, cepillado = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Height, p.Width, p.Length,
		p.PricePerUnit, nullIfZeroDecimal(p.RetailPrice), p.Cepillado, p.UpdatedAt,
	)
	if err != nil {
		return persistErr("update product", "products", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", p.ID, pgx.ErrNoRows)
	}
	return nil
}

// List devuelve una página del catálogo ordenada por nombre.
func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, persistErr("list products", "products", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, persistErr("scan product", "products", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AdjustStock aplica el delta de forma atómica en la base
// (stock = stock + delta) y devuelve el stock resultante. Sin chequeo de
// piso: el negativo es backorder tolerado y lo reporta el reconciliador.
func (r *ProductRepo) AdjustStock(productID string, delta int) (int, error) {
	ctx, cancel := opCtx(r.ctx)
	defer cancel()
	var newStock int
	err := r.q.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1 RETURNING stock`,
		productID, delta,
	).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, persistErr("adjust stock", "products", fmt.Errorf("producto %s inexistente", productID))
		}
		return 0, persistErr("adjust stock", "products", err)
	}
	return newStock, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var precioVenta, precio, precioPublico *decimal.Decimal
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.SaleUnit, &p.Height, &p.Width, &p.Length,
		&p.PricePerUnit, &precioVenta, &precio, &precioPublico,
		&p.Stock, &p.Cepillado, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.RetailPrice = entity.ResolveRetailPrice(precioVenta, precio, precioPublico)
	return &p, nil
}
