package orders

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
	"github.com/maderasur/corralon-api/pkg/logger"
)

// Resultado por producto de la reconciliación.
const (
	OutcomeApplied = "applied" // stock ajustado y movimiento registrado
	OutcomeSkipped = "skipped" // producto inexistente: sin mutación ni movimiento
	OutcomeFailed  = "failed"  // falla de persistencia en el ajuste o el movimiento
)

// ProductAdjustment es el resultado de reconciliar un producto.
// Delta > 0 significa más consumido (el stock baja); Delta < 0 mercadería
// devuelta (el stock sube). Err lleva el contexto completo para remediación
// manual: producto, orden y delta intentado.
type ProductAdjustment struct {
	ProductID string
	OldQty    int
	NewQty    int
	Delta     int
	Outcome   string
	NewStock  int // solo con Outcome == applied
	Err       error
}

// ReconcileResult agrega los resultados por producto de una edición.
type ReconcileResult struct {
	OrderID     string
	Adjustments []ProductAdjustment
}

// Applied devuelve cuántos productos se ajustaron efectivamente.
func (r *ReconcileResult) Applied() int { return r.count(OutcomeApplied) }

// HasFailures indica si quedó algún producto sin ajustar por error de
// persistencia (no bloquea el guardado; se devuelve para seguimiento).
func (r *ReconcileResult) HasFailures() bool { return r.count(OutcomeFailed) > 0 }

func (r *ReconcileResult) count(outcome string) int {
	n := 0
	for i := range r.Adjustments {
		if r.Adjustments[i].Outcome == outcome {
			n++
		}
	}
	return n
}

// StockReconciler calcula y aplica los deltas de inventario entre las líneas
// originales y las editadas de una venta, dejando un movimiento de auditoría
// por producto ajustado.
type StockReconciler struct {
	log *logger.Logger
}

// NewStockReconciler construye el reconciliador.
func NewStockReconciler(log *logger.Logger) *StockReconciler {
	return &StockReconciler{log: log}
}

// Reconcile diffea las líneas original/nueva por producto y aplica cada delta
// de forma independiente: un producto inexistente se salta, una falla de
// persistencia se registra y se sigue con el resto. Cada producto corre
// dentro de su propio step: si el ajuste o el movimiento fallan, las
// escrituras de ese producto se revierten juntas y los demás siguen.
// reconcile(X, X) no produce movimientos.
func (s *StockReconciler) Reconcile(
	original, updated []entity.OrderItem,
	orderID string,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	step StepFunc,
) *ReconcileResult {
	oldQty := quantitiesByProduct(original)
	newQty := quantitiesByProduct(updated)

	result := &ReconcileResult{OrderID: orderID}

	for _, productID := range unionKeys(oldQty, newQty) {
		adj := ProductAdjustment{
			ProductID: productID,
			OldQty:    oldQty[productID],
			NewQty:    newQty[productID],
		}
		adj.Delta = adj.NewQty - adj.OldQty
		if adj.Delta == 0 {
			continue
		}

		if err := step(func() error {
			return s.apply(&adj, orderID, productRepo, movementRepo)
		}); err != nil {
			adj.Outcome = OutcomeFailed
			adj.NewStock = 0 // el step revirtió el ajuste
			adj.Err = err
		}
		result.Adjustments = append(result.Adjustments, adj)
	}

	if result.HasFailures() {
		s.log.Error().
			Str("order_id", orderID).
			Int("failed", result.count(OutcomeFailed)).
			Msg("reconciliación de stock con fallas parciales; requiere seguimiento manual")
	}
	return result
}

// apply ajusta el stock del producto y registra el movimiento de auditoría.
// Devuelve error para que el step que lo envuelve revierta las escrituras
// del producto; el error lleva producto, orden y delta para seguimiento.
func (s *StockReconciler) apply(
	adj *ProductAdjustment,
	orderID string,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) error {
	product, err := productRepo.GetByID(adj.ProductID)
	if err != nil {
		return fmt.Errorf("reconciliar producto %s (orden %s, delta %+d): %w", adj.ProductID, orderID, adj.Delta, err)
	}
	if product == nil {
		// El producto ya no existe en el catálogo: sin mutación ni movimiento,
		// pero la reconciliación del resto continúa.
		adj.Outcome = OutcomeSkipped
		s.log.Warn().
			Str("order_id", orderID).
			Str("product_id", adj.ProductID).
			Int("delta", adj.Delta).
			Msg("producto inexistente durante reconciliación; se omite")
		return nil
	}

	// Más consumido baja el stock; mercadería devuelta lo sube.
	newStock, err := productRepo.AdjustStock(adj.ProductID, -adj.Delta)
	if err != nil {
		return fmt.Errorf("ajustar stock de %s (orden %s, delta %+d): %w", adj.ProductID, orderID, adj.Delta, err)
	}
	adj.NewStock = newStock

	if newStock < 0 {
		// Backorder: se tolera y se deja la venta seguir, pero queda un
		// warning distinto del ajuste normal.
		s.log.Warn().
			Str("order_id", orderID).
			Str("product_id", adj.ProductID).
			Int("stock", newStock).
			Msg("stock negativo tras reconciliación (backorder)")
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     adj.ProductID,
		Direction:     direction(adj.Delta),
		Quantity:      abs(adj.Delta),
		ReferenceKind: entity.ReferenceOrderEdit,
		OrderID:       orderID,
		Note:          movementNote(adj.OldQty, adj.NewQty, product.Name),
		CreatedAt:     time.Now(),
	}
	if err := movementRepo.Create(mov); err != nil {
		// El step revierte también el ajuste de stock: el producto queda
		// entero como estaba, nunca ajustado sin su movimiento de auditoría.
		return fmt.Errorf("registrar movimiento de %s (orden %s, delta %+d): %w", adj.ProductID, orderID, adj.Delta, err)
	}

	adj.Outcome = OutcomeApplied
	s.log.Debug().
		Str("order_id", orderID).
		Str("product_id", adj.ProductID).
		Int("delta", adj.Delta).
		Int("stock", newStock).
		Msg("stock reconciliado")
	return nil
}

// quantitiesByProduct suma cantidades por producto (una venta puede repetir
// el mismo producto en varias líneas, p. ej. cortes distintos).
func quantitiesByProduct(items []entity.OrderItem) map[string]int {
	m := make(map[string]int, len(items))
	for i := range items {
		m[items[i].ProductID] += items[i].Quantity
	}
	return m
}

// unionKeys devuelve las claves de ambos mapas, ordenadas para que la
// reconciliación sea determinística.
func unionKeys(a, b map[string]int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func direction(delta int) string {
	if delta > 0 {
		return entity.MovementOut
	}
	return entity.MovementIn
}

func movementNote(oldQty, newQty int, productName string) string {
	switch {
	case oldQty == 0:
		return fmt.Sprintf("edición de venta: %s agregado (0 → %d)", productName, newQty)
	case newQty == 0:
		return fmt.Sprintf("edición de venta: %s quitado (%d → 0)", productName, oldQty)
	default:
		return fmt.Sprintf("edición de venta: %s modificado (%d → %d)", productName, oldQty, newQty)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
