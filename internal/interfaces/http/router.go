package http

import (
	"github.com/gofiber/fiber/v2"

	apporders "github.com/maderasur/corralon-api/internal/application/orders"
	"github.com/maderasur/corralon-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	ClientUC   *usecase.ClientUseCase
	OrderQuery *usecase.OrderQueryUseCase
	SaveOrder  *apporders.SaveOrderUseCase
	AddPayment *apporders.AddPaymentUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Products (catálogo)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.OrderQuery)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/movements", productHandler.Movements)

	// Clients
	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)

	// Orders (ventas y presupuestos)
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.SaveOrder, deps.AddPayment, deps.OrderQuery)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Post("/:id/payments", orderHandler.AddPayment)
	ordersGroup.Get("/:id/shipment", orderHandler.ShipmentByOrder)
}
