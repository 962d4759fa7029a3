package repository

import "github.com/maderasur/corralon-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// AdjustStock aplica el delta de forma atómica en el almacenamiento
// (stock = stock + delta) y devuelve el stock resultante; el stock puede
// quedar negativo (backorder tolerado).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	AdjustStock(productID string, delta int) (newStock int, err error)
}
