package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maderasur/corralon-api/internal/application/dto"
	apporders "github.com/maderasur/corralon-api/internal/application/orders"
	"github.com/maderasur/corralon-api/internal/application/usecase"
)

// OrderHandler maneja las peticiones HTTP de ventas y presupuestos.
type OrderHandler struct {
	save    *apporders.SaveOrderUseCase
	payment *apporders.AddPaymentUseCase
	query   *usecase.OrderQueryUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(
	save *apporders.SaveOrderUseCase,
	payment *apporders.AddPaymentUseCase,
	query *usecase.OrderQueryUseCase,
) *OrderHandler {
	return &OrderHandler{save: save, payment: payment, query: query}
}

// Create godoc
// @Summary      Crear venta o presupuesto
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveOrderRequest  true  "Orden a crear"
// @Success      201   {object}  dto.SaveOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.SaveOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg := validateStruct(in); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	out, err := h.save.Save(c.UserContext(), in, apporders.SaveModeCreate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSaveOrderResponse(out))
}

// Update godoc
// @Summary      Editar una orden existente (recotiza, reconcilia stock y sincroniza envío)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.SaveOrderRequest  true  "Orden editada con base_version"
// @Success      200   {object}  dto.SaveOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.SaveOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.ID = id
	if msg := validateStruct(in); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	out, err := h.save.Save(c.UserContext(), in, apporders.SaveModeEdit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSaveOrderResponse(out))
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Tags         orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.query.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Produce      json
// @Param        kind    query  string  false  "sale | quote (vacío = todas)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if kind != "" && kind != "sale" && kind != "quote" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "kind debe ser sale o quote"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.query.List(kind, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddPayment godoc
// @Summary      Registrar un pago sobre una venta
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AddPaymentRequest  true  "Pago"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) AddPayment(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AddPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if msg := validateStruct(in); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
	}
	order, err := h.payment.Add(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToOrderResponse(order))
}

// ShipmentByOrder godoc
// @Summary      Obtener el envío de una orden con su historial
// @Tags         orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/shipment [get]
func (h *OrderHandler) ShipmentByOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.query.ShipmentByOrder(id)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la orden no tiene envío"})
	}
	return c.JSON(out)
}

// toSaveOrderResponse arma la salida del guardado con los resultados de
// reconciliación y envío para que el cliente muestre advertencias.
func toSaveOrderResponse(res *apporders.OrderSaveResult) dto.SaveOrderResponse {
	out := dto.SaveOrderResponse{
		Order:         usecase.ToOrderResponse(res.Order),
		PaymentStatus: res.PaymentStatus,
	}
	if res.StockResult != nil {
		for _, adj := range res.StockResult.Adjustments {
			item := dto.AdjustmentResponse{
				ProductID: adj.ProductID,
				OldQty:    adj.OldQty,
				NewQty:    adj.NewQty,
				Delta:     adj.Delta,
				Outcome:   adj.Outcome,
				NewStock:  adj.NewStock,
			}
			if adj.Err != nil {
				item.Error = adj.Err.Error()
			}
			out.StockResult = append(out.StockResult, item)
		}
	}
	if res.ShipmentResult != nil {
		out.ShipmentAction = res.ShipmentResult.Action
		if res.ShipmentResult.Shipment != nil {
			out.ShipmentID = res.ShipmentResult.Shipment.ID
		}
	}
	return out
}
