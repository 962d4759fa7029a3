package repository

import "github.com/maderasur/corralon-api/internal/domain/entity"

// StockMovementRepository define el puerto de persistencia para los
// movimientos de auditoría de inventario. Solo inserta y lista: un
// movimiento es write-once.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error)
	ListByOrder(orderID string) ([]*entity.StockMovement, error)
}
