package orders_test

import (
	"context"

	"github.com/shopspring/decimal"

	apporders "github.com/maderasur/corralon-api/internal/application/orders"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products  map[string]*entity.Product
	getErr    map[string]error // fuerza error en GetByID por producto
	adjustErr map[string]error // fuerza error en AdjustStock por producto
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{
		products:  make(map[string]*entity.Product),
		getErr:    make(map[string]error),
		adjustErr: make(map[string]error),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	if err := r.getErr[id]; err != nil {
		return nil, err
	}
	return r.products[id], nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) AdjustStock(productID string, delta int) (int, error) {
	if err := r.adjustErr[productID]; err != nil {
		return 0, err
	}
	p, ok := r.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Stock += delta
	return p.Stock, nil
}

type fakeMovementRepo struct {
	movements []*entity.StockMovement
	createErr map[string]error // fuerza error en Create por producto
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{createErr: make(map[string]error)}
}

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	if err := r.createErr[m.ProductID]; err != nil {
		return err
	}
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByOrder(orderID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

// byProduct devuelve el movimiento de un producto, o nil.
func (r *fakeMovementRepo) byProduct(productID string) *entity.StockMovement {
	for _, m := range r.movements {
		if m.ProductID == productID {
			return m
		}
	}
	return nil
}

type fakeShipmentRepo struct {
	byOrder map[string]*entity.Shipment
	events  []entity.ShipmentEvent
}

func newFakeShipmentRepo() *fakeShipmentRepo {
	return &fakeShipmentRepo{byOrder: make(map[string]*entity.Shipment)}
}

func (r *fakeShipmentRepo) Create(s *entity.Shipment) error {
	if _, ok := r.byOrder[s.OrderID]; ok {
		return domain.ErrDuplicate
	}
	r.byOrder[s.OrderID] = s
	return nil
}

func (r *fakeShipmentRepo) GetByOrderID(orderID string) (*entity.Shipment, error) {
	return r.byOrder[orderID], nil
}

func (r *fakeShipmentRepo) Update(s *entity.Shipment) error {
	r.byOrder[s.OrderID] = s
	return nil
}

func (r *fakeShipmentRepo) AppendEvent(e *entity.ShipmentEvent) error {
	r.events = append(r.events, *e)
	return nil
}

func (r *fakeShipmentRepo) ListEvents(shipmentID string) ([]entity.ShipmentEvent, error) {
	var out []entity.ShipmentEvent
	for _, e := range r.events {
		if e.ShipmentID == shipmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	orders map[string]*entity.Order
}

func newFakeOrderRepo(orders ...*entity.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*entity.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(o *entity.Order) error {
	if _, ok := r.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.orders[id], nil
}

func (r *fakeOrderRepo) UpdateVersioned(o *entity.Order, baseVersion int64) error {
	stored, ok := r.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != baseVersion {
		return domain.ErrConflict
	}
	o.Version = baseVersion + 1
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) List(kind string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.orders {
		if kind == "" || o.Kind == kind {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeClientRepo struct {
	clients map[string]*entity.Client
}

func newFakeClientRepo(clients ...*entity.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[string]*entity.Client)}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) Create(c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.clients[id], nil
}

func (r *fakeClientRepo) Update(c *entity.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	out := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
}

// fakeTxRunner ejecuta el callback directo contra los fakes, sin transacción.
// El step que pasa imita el savepoint real: snapshot de stocks y movimientos,
// restore si el paso falla.
type fakeTxRunner struct {
	orderRepo    *fakeOrderRepo
	productRepo  *fakeProductRepo
	movementRepo *fakeMovementRepo
	shipmentRepo *fakeShipmentRepo
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	shipmentRepo repository.ShipmentRepository,
	step apporders.StepFunc,
) error) error {
	return fn(r.orderRepo, r.productRepo, r.movementRepo, r.shipmentRepo, snapshotStep(r.productRepo, r.movementRepo))
}

// snapshotStep arma un StepFunc sobre los fakes: si fn falla, los stocks y
// los movimientos vuelven al estado previo al paso.
func snapshotStep(products *fakeProductRepo, movements *fakeMovementRepo) apporders.StepFunc {
	return func(fn func() error) error {
		stocks := make(map[string]int, len(products.products))
		for id, p := range products.products {
			stocks[id] = p.Stock
		}
		count := len(movements.movements)

		if err := fn(); err != nil {
			for id, stock := range stocks {
				products.products[id].Stock = stock
			}
			movements.movements = movements.movements[:count]
			return err
		}
		return nil
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de entidades de test
// ──────────────────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// hardwareProduct producto de ferretería con precio de venta directo.
func hardwareProduct(id, name, retailPrice string, stock int) *entity.Product {
	return &entity.Product{
		ID:          id,
		Name:        name,
		Category:    entity.CategoryHardware,
		SaleUnit:    entity.SaleUnitUnidad,
		RetailPrice: d(retailPrice),
		Stock:       stock,
	}
}

// woodProduct madera vendida por pie con dimensiones de catálogo.
func woodProduct(id, name string, h, w, l, pricePerUnit string, stock int) *entity.Product {
	return &entity.Product{
		ID:           id,
		Name:         name,
		Category:     entity.CategoryWood,
		SaleUnit:     entity.SaleUnitPie,
		Height:       d(h),
		Width:        d(w),
		Length:       d(l),
		PricePerUnit: d(pricePerUnit),
		Stock:        stock,
	}
}

func saleItem(productID string, qty int) entity.OrderItem {
	return entity.OrderItem{
		ProductID: productID,
		Quantity:  qty,
		SaleUnit:  entity.SaleUnitUnidad,
		UnitPrice: d("1000"),
	}
}
