package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maderasur/corralon-api/internal/application/dto"
	apporders "github.com/maderasur/corralon-api/internal/application/orders"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso con fakes
// ──────────────────────────────────────────────────────────────────────────────

type saveOrderFixture struct {
	uc        *apporders.SaveOrderUseCase
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	clients   *fakeClientRepo
	movements *fakeMovementRepo
	shipments *fakeShipmentRepo
}

func newSaveOrderFixture(products ...*entity.Product) *saveOrderFixture {
	f := &saveOrderFixture{
		orders:    newFakeOrderRepo(),
		products:  newFakeProductRepo(products...),
		clients:   newFakeClientRepo(&entity.Client{ID: "c1", Name: "Juan Pérez", Address: "Av. Siempreviva 742"}),
		movements: newFakeMovementRepo(),
		shipments: newFakeShipmentRepo(),
	}
	tx := &fakeTxRunner{
		orderRepo:    f.orders,
		productRepo:  f.products,
		movementRepo: f.movements,
		shipmentRepo: f.shipments,
	}
	log := logger.Nop()
	f.uc = apporders.NewSaveOrderUseCase(
		tx, f.orders, f.products, f.clients,
		apporders.NewStockReconciler(log),
		apporders.NewShipmentSynchronizer(log),
		log,
	)
	return f
}

func saveRequest(kind string, items ...dto.SaveOrderItemRequest) dto.SaveOrderRequest {
	return dto.SaveOrderRequest{
		Kind:     kind,
		ClientID: "c1",
		Items:    items,
	}
}

func reqItem(productID string, qty int) dto.SaveOrderItemRequest {
	return dto.SaveOrderItemRequest{ProductID: productID, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

// Alta de una venta contado: totales agregados con el 10% de descuento,
// versión 1, estado pending. El alta no descuenta stock.
func TestSave_AltaVentaContado(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 2))
	in.CashPayment = true

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	order := result.Order
	assert.True(t, d("2000").Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, d("200").Equal(order.CashDiscount), "descuento contado %s", order.CashDiscount)
	assert.True(t, d("1800").Equal(order.Total), "total %s", order.Total)
	assert.Equal(t, int64(1), order.Version)
	assert.Equal(t, entity.PaymentStatusPending, result.PaymentStatus)
	assert.Equal(t, "Juan Pérez", order.ClientName)

	stored, _ := f.orders.GetByID(order.ID)
	require.NotNil(t, stored)

	// Sin reconciliación en el alta: ni stock ni movimientos.
	assert.Nil(t, result.StockResult)
	assert.Equal(t, 10, f.products.products["p1"].Stock)
	assert.Empty(t, f.movements.movements)
}

// La seña inicial deriva el estado partial; cubrir el total lo deja paid.
func TestSave_AltaConSena(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 2))
	in.Payments = []dto.SaveOrderPaymentRequest{{Amount: d("500"), Method: entity.PaymentMethodCash, RecordedBy: "mostrador"}}

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, result.PaymentStatus)

	in.Payments[0].Amount = d("2000")
	result, err = f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, result.PaymentStatus)
}

// Un presupuesto no tiene estado de pago ni genera envío, aunque declare
// entrega a domicilio.
func TestSave_AltaPresupuesto_SinPagosNiEnvio(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindQuote, reqItem("p1", 2))
	in.DeliveryMethod = entity.DeliveryHome
	in.ShippingCost = d("5000")

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	assert.Empty(t, result.PaymentStatus)
	assert.Nil(t, result.ShipmentResult)
	assert.Empty(t, f.shipments.byOrder)
	// El costo de envío sí entra al total: el presupuesto cotiza completo.
	assert.True(t, d("7000").Equal(result.Order.Total), "total %s", result.Order.Total)
}

// Venta a domicilio: el guardado crea el envío en pending.
func TestSave_AltaDomicilio_CreaEnvio(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 1))
	in.DeliveryMethod = entity.DeliveryHome
	in.ShippingCost = d("3000")

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	require.NotNil(t, result.ShipmentResult)
	assert.Equal(t, apporders.ShipmentActionCreated, result.ShipmentResult.Action)
	assert.Equal(t, entity.ShipmentPending, result.ShipmentResult.Shipment.State)
	assert.Equal(t, "Av. Siempreviva 742", result.ShipmentResult.Shipment.Address)
}

// Un producto inexistente bloquea el guardado completo antes de persistir.
func TestSave_ProductoInexistente_BloqueaTodo(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 1), reqItem("fantasma", 1))

	_, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.movements.movements)
}

// Cliente desconocido: validación, sin mutación.
func TestSave_ClienteInexistente(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 1))
	in.ClientID = "nadie"

	_, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.orders.orders)
}

// Un pago inicial con monto no positivo bloquea el guardado.
func TestSave_PagoNoPositivo_Bloquea(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 1))
	in.Payments = []dto.SaveOrderPaymentRequest{{Amount: d("0"), Method: entity.PaymentMethodCash}}

	_, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.orders.orders)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

// seedSale persiste una venta para los tests de edición y devuelve su ID.
func seedSale(t *testing.T, f *saveOrderFixture, items ...dto.SaveOrderItemRequest) *entity.Order {
	t.Helper()
	result, err := f.uc.Save(context.Background(), saveRequest(entity.OrderKindSale, items...), apporders.SaveModeCreate)
	require.NoError(t, err)
	return result.Order
}

// Editar con una versión base vieja rechaza con conflicto antes de cotizar.
func TestSave_EdicionConVersionVieja_Conflicto(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	order := seedSale(t, f, reqItem("p1", 2))

	in := saveRequest(entity.OrderKindSale, reqItem("p1", 5))
	in.ID = order.ID
	in.BaseVersion = order.Version + 1 // el cliente editó sobre otra cosa

	_, err := f.uc.Save(context.Background(), in, apporders.SaveModeEdit)
	require.ErrorIs(t, err, domain.ErrConflict)

	stored, _ := f.orders.GetByID(order.ID)
	assert.Equal(t, order.Version, stored.Version)
	assert.Equal(t, 10, f.products.products["p1"].Stock)
}

// Edición feliz: recotiza, reconcilia stock con movimiento de auditoría e
// incrementa la versión.
func TestSave_EdicionReconciliaStock(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	order := seedSale(t, f, reqItem("p1", 2))

	in := saveRequest(entity.OrderKindSale, reqItem("p1", 5))
	in.ID = order.ID
	in.BaseVersion = order.Version

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeEdit)
	require.NoError(t, err)

	assert.Equal(t, order.Version+1, result.Order.Version)
	assert.True(t, d("5000").Equal(result.Order.Total), "total %s", result.Order.Total)

	// 2 → 5 consume 3 más.
	require.NotNil(t, result.StockResult)
	require.Len(t, result.StockResult.Adjustments, 1)
	assert.Equal(t, 3, result.StockResult.Adjustments[0].Delta)
	assert.Equal(t, 7, f.products.products["p1"].Stock)

	mov := f.movements.byProduct("p1")
	require.NotNil(t, mov)
	assert.Equal(t, entity.MovementOut, mov.Direction)
	assert.Equal(t, 3, mov.Quantity)
	assert.Equal(t, order.ID, mov.OrderID)
}

// Una falla de persistencia en un producto durante la reconciliación no
// bloquea el guardado: el paso de ese producto se revierte entero, los demás
// se aplican y la orden se persiste igual con la versión incrementada.
func TestSave_EdicionConFallaParcial_NoBloquea(t *testing.T) {
	f := newSaveOrderFixture(
		hardwareProduct("p1", "Clavos", "1000", 10),
		hardwareProduct("p2", "Tornillos", "1000", 10),
	)
	order := seedSale(t, f, reqItem("p1", 2), reqItem("p2", 2))
	f.movements.createErr["p1"] = errors.New("disco lleno")

	in := saveRequest(entity.OrderKindSale, reqItem("p1", 5), reqItem("p2", 5))
	in.ID = order.ID
	in.BaseVersion = order.Version

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeEdit)
	require.NoError(t, err)
	assert.Equal(t, order.Version+1, result.Order.Version)

	require.NotNil(t, result.StockResult)
	require.Len(t, result.StockResult.Adjustments, 2)
	byID := make(map[string]apporders.ProductAdjustment)
	for _, adj := range result.StockResult.Adjustments {
		byID[adj.ProductID] = adj
	}

	// p1 falló y quedó entero: stock intacto, sin movimiento huérfano.
	assert.Equal(t, apporders.OutcomeFailed, byID["p1"].Outcome)
	require.Error(t, byID["p1"].Err)
	assert.Equal(t, 10, f.products.products["p1"].Stock)
	assert.Nil(t, f.movements.byProduct("p1"))

	// p2 se aplicó normalmente: 2 → 5 consume 3.
	assert.Equal(t, apporders.OutcomeApplied, byID["p2"].Outcome)
	assert.Equal(t, 7, f.products.products["p2"].Stock)
	require.NotNil(t, f.movements.byProduct("p2"))

	stored, _ := f.orders.GetByID(order.ID)
	require.NotNil(t, stored)
	assert.Equal(t, order.Version+1, stored.Version)
}

// La edición conserva los pagos existentes: la lista solo crece por la
// operación de registrar pago, nunca por el guardado.
func TestSave_EdicionConservaPagos(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 2))
	in.Payments = []dto.SaveOrderPaymentRequest{{Amount: d("500"), Method: entity.PaymentMethodCash, RecordedBy: "mostrador"}}
	created, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	edit := saveRequest(entity.OrderKindSale, reqItem("p1", 3))
	edit.ID = created.Order.ID
	edit.BaseVersion = created.Order.Version
	// Pagos en el payload de edición se ignoran.
	edit.Payments = []dto.SaveOrderPaymentRequest{{Amount: d("999"), Method: entity.PaymentMethodCash}}

	result, err := f.uc.Save(context.Background(), edit, apporders.SaveModeEdit)
	require.NoError(t, err)

	require.Len(t, result.Order.Payments, 1)
	assert.True(t, d("500").Equal(result.Order.Payments[0].Amount))
	assert.Equal(t, entity.PaymentStatusPartial, result.PaymentStatus)
}

// Editar un presupuesto no toca stock ni envíos.
func TestSave_EdicionPresupuesto_NoTocaStock(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	created, err := f.uc.Save(context.Background(), saveRequest(entity.OrderKindQuote, reqItem("p1", 2)), apporders.SaveModeCreate)
	require.NoError(t, err)

	in := saveRequest(entity.OrderKindQuote, reqItem("p1", 6))
	in.ID = created.Order.ID
	in.BaseVersion = created.Order.Version

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeEdit)
	require.NoError(t, err)

	assert.Nil(t, result.StockResult)
	assert.Nil(t, result.ShipmentResult)
	assert.Equal(t, 10, f.products.products["p1"].Stock)
	assert.Empty(t, f.movements.movements)
}

// Editar una venta de domicilio a retiro cancela el envío y limpia los
// campos de envío persistidos.
func TestSave_EdicionCancelaEnvio(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 1))
	in.DeliveryMethod = entity.DeliveryHome
	in.ShippingCost = d("3000")
	in.Carrier = "Flete Sur"
	created, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	edit := saveRequest(entity.OrderKindSale, reqItem("p1", 1))
	edit.ID = created.Order.ID
	edit.BaseVersion = created.Order.Version
	edit.DeliveryMethod = entity.DeliveryPickup

	result, err := f.uc.Save(context.Background(), edit, apporders.SaveModeEdit)
	require.NoError(t, err)

	require.NotNil(t, result.ShipmentResult)
	assert.Equal(t, apporders.ShipmentActionCancelled, result.ShipmentResult.Action)
	assert.Empty(t, result.Order.Carrier)
	assert.True(t, result.Order.ShippingCost.IsZero())

	stored := f.shipments.byOrder[created.Order.ID]
	require.NotNil(t, stored)
	assert.Equal(t, entity.ShipmentCancelled, stored.State)
}

// La línea de madera cotiza con la fórmula volumétrica y la edición con un
// corte a medida recotiza desde las dimensiones nuevas.
func TestSave_MaderaCortadaAMedida(t *testing.T) {
	f := newSaveOrderFixture(woodProduct("w1", `Tirante 2x4`, "2", "4", "10", "500", 50))
	in := saveRequest(entity.OrderKindSale, reqItem("w1", 1))

	result, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)
	// 0.2734·2·4·10·500 = 10936 → 10900
	assert.True(t, d("10900").Equal(result.Order.Items[0].UnitPrice), "precio %s", result.Order.Items[0].UnitPrice)

	length := d("6")
	edit := saveRequest(entity.OrderKindSale, dto.SaveOrderItemRequest{ProductID: "w1", Quantity: 1, Length: &length})
	edit.ID = result.Order.ID
	edit.BaseVersion = result.Order.Version

	edited, err := f.uc.Save(context.Background(), edit, apporders.SaveModeEdit)
	require.NoError(t, err)
	// 0.2734·2·4·6·500 = 6561.6 → 6600
	assert.True(t, d("6600").Equal(edited.Order.Items[0].UnitPrice), "precio %s", edited.Order.Items[0].UnitPrice)
	assert.True(t, d("6").Equal(edited.Order.Items[0].Length))
}

// El tiempo de AddPayment completa el ciclo: venta creada con seña, pago
// final por el saldo exacto, estado paid.
func TestAddPayment_CicloCompleto(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	in := saveRequest(entity.OrderKindSale, reqItem("p1", 2))
	in.Payments = []dto.SaveOrderPaymentRequest{{Amount: d("500"), Method: entity.PaymentMethodCash, RecordedBy: "mostrador"}}
	created, err := f.uc.Save(context.Background(), in, apporders.SaveModeCreate)
	require.NoError(t, err)

	addUC := apporders.NewAddPaymentUseCase(f.orders, logger.Nop())

	// Un monto que supera el saldo se rechaza.
	_, err = addUC.Add(context.Background(), created.Order.ID, dto.AddPaymentRequest{
		Amount: d("2000"), Method: entity.PaymentMethodTransfer, RecordedBy: "caja",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	// El saldo exacto deja la venta paga.
	order, err := addUC.Add(context.Background(), created.Order.ID, dto.AddPaymentRequest{
		Amount: d("1500"), Method: entity.PaymentMethodTransfer, RecordedBy: "caja",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, order.PaymentStatus)
	require.Len(t, order.Payments, 2)

	// Sin saldo, no se admiten más pagos.
	_, err = addUC.Add(context.Background(), created.Order.ID, dto.AddPaymentRequest{
		Amount: d("1"), Method: entity.PaymentMethodCash, RecordedBy: "caja",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un presupuesto rechaza pagos.
func TestAddPayment_PresupuestoRechaza(t *testing.T) {
	f := newSaveOrderFixture(hardwareProduct("p1", "Clavos", "1000", 10))
	created, err := f.uc.Save(context.Background(), saveRequest(entity.OrderKindQuote, reqItem("p1", 1)), apporders.SaveModeCreate)
	require.NoError(t, err)

	addUC := apporders.NewAddPaymentUseCase(f.orders, logger.Nop())
	_, err = addUC.Add(context.Background(), created.Order.ID, dto.AddPaymentRequest{
		Amount: d("100"), Method: entity.PaymentMethodCash, RecordedBy: "caja",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// El escalar legado se migra a un pago sintetizado la primera vez que la
// orden pasa por una lectura o edición.
func TestAddPayment_MigraEscalarLegado(t *testing.T) {
	f := newSaveOrderFixture()
	legacy := d("3000")
	when := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	f.orders.orders["old-1"] = &entity.Order{
		ID:               "old-1",
		Kind:             entity.OrderKindSale,
		Total:            d("10000"),
		LegacyAmountPaid: &legacy,
		PaymentMethod:    entity.PaymentMethodCash,
		Date:             when,
		Version:          1,
	}

	addUC := apporders.NewAddPaymentUseCase(f.orders, logger.Nop())
	order, err := addUC.Add(context.Background(), "old-1", dto.AddPaymentRequest{
		Amount: d("7000"), Method: entity.PaymentMethodTransfer, RecordedBy: "caja",
	})
	require.NoError(t, err)

	require.Len(t, order.Payments, 2)
	assert.True(t, d("3000").Equal(order.Payments[0].Amount))
	assert.Equal(t, "-", order.Payments[0].RecordedBy)
	assert.Equal(t, when, order.Payments[0].Date)
	assert.Nil(t, order.LegacyAmountPaid)
	assert.Equal(t, entity.PaymentStatusPaid, order.PaymentStatus)
}
