package orders

import (
	"context"

	"github.com/maderasur/corralon-api/internal/domain/repository"
)

// StepFunc ejecuta fn como un paso aislado dentro de la transacción en
// curso: si fn falla, se revierten solo las escrituras de ese paso y la
// transacción sigue utilizable para los pasos siguientes. Sobre PostgreSQL
// el paso es un SAVEPOINT; sin él, una sentencia fallida dejaría la
// transacción abortada y arrastraría al resto.
type StepFunc func(fn func() error) error

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx y el step para los pasos aislables. La
// secuencia reconciliar-y-persistir del guardado de orden corre entera
// adentro: o queda todo o no queda nada a nivel transacción (los fallos
// por producto se acumulan, cada uno revertido por su step, sin abortarla).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		productRepo repository.ProductRepository,
		movementRepo repository.StockMovementRepository,
		shipmentRepo repository.ShipmentRepository,
		step StepFunc,
	) error) error
}
