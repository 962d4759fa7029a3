package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/maderasur/corralon-api/internal/application/orders"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

var _ orders.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Si la
// transacción completa falla con un PersistenceError reintenable (timeout,
// corte de conexión, serialización), se reintenta entera con backoff
// exponencial y tope de intentos — nunca se reintenta un paso suelto a
// mitad de una tx abortada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

const maxTxRetries = 3

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback. Los errores de negocio (validación, conflicto de
// versión) se propagan sin reintento.
func (r *TxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	shipmentRepo repository.ShipmentRepository,
	step orders.StepFunc,
) error) error {
	backoff := retry.WithMaxRetries(maxTxRetries, retry.NewExponential(100*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.runOnce(ctx, fn)
		if domain.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	shipmentRepo repository.ShipmentRepository,
	step orders.StepFunc,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return persistErr("begin", "tx", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderRepo := NewOrderRepository(tx).WithContext(ctx)
	productRepo := NewProductRepository(tx).WithContext(ctx)
	movementRepo := NewStockMovementRepository(tx).WithContext(ctx)
	shipmentRepo := NewShipmentRepository(tx).WithContext(ctx)

	// step aísla un tramo del callback con un SAVEPOINT (Begin anidado de
	// pgx). Si el tramo falla, el ROLLBACK TO SAVEPOINT descarta solo sus
	// escrituras y saca la transacción del estado abortado, así los tramos
	// siguientes y el write final de la orden corren normalmente. Los
	// savepoints son posicionales en la sesión: cubren también las
	// sentencias emitidas por los repos atados a la tx exterior.
	step := func(stepFn func() error) error {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return persistErr("begin savepoint", "tx", fmt.Errorf("begin savepoint: %w", err))
		}
		if err := stepFn(); err != nil {
			_ = sp.Rollback(ctx)
			return err
		}
		if err := sp.Commit(ctx); err != nil {
			return persistErr("release savepoint", "tx", fmt.Errorf("release savepoint: %w", err))
		}
		return nil
	}

	if err := fn(orderRepo, productRepo, movementRepo, shipmentRepo, step); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return persistErr("commit", "tx", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
