package repository

import "github.com/maderasur/corralon-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para ventas y presupuestos.
// UpdateVersioned es una escritura condicional: solo aplica si la versión
// persistida coincide con baseVersion, incrementándola; si no coincide
// devuelve domain.ErrConflict (otra edición ganó).
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	UpdateVersioned(order *entity.Order, baseVersion int64) error
	List(kind string, limit, offset int) ([]*entity.Order, error)
}
