package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/maderasur/corralon-api/internal/domain"
)

// Querier abstrae pool y transacción: los repositorios funcionan igual
// atados a uno u otra.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Cota de tiempo para cada llamada de almacenamiento. El sistema histórico
// no acotaba nada; acá un timeout se clasifica como PersistenceError
// reintenable y el TxRunner reintenta la transacción completa.
const opTimeout = 5 * time.Second

// opCtx devuelve el contexto acotado para una operación de repositorio,
// derivado del contexto al que está atado el repo: la cancelación del
// request llega hasta la sentencia en curso.
func opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, opTimeout)
}

// persistErr clasifica un error de almacenamiento, marcando como
// reintenables los timeouts y cortes de conexión transitorios.
func persistErr(op, collection string, err error) error {
	return &domain.PersistenceError{
		Op:         op,
		Collection: collection,
		Retryable:  isTransient(err),
		Err:        err,
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception; 40001/40P01: serialización/deadlock.
		return pgErr.Code[:2] == "08" || pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
