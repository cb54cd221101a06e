package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/dto"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/events"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/sales"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/tiendanube"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// OrderFetcher trae el detalle de una orden de la tienda.
type OrderFetcher interface {
	FetchOrder(orderID int64) (*tiendanube.Order, error)
}

// WebhookHandler procesa los webhooks entrantes de TiendaNube.
type WebhookHandler struct {
	gate   *events.Gate
	orders OrderFetcher
	sales  *sales.Service
	log    *logger.Logger
}

// NewWebhookHandler construye el handler.
func NewWebhookHandler(gate *events.Gate, orders OrderFetcher, salesSvc *sales.Service, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{gate: gate, orders: orders, sales: salesSvc, log: log}
}

// Handle recibe el evento, lo pasa por el gate de idempotencia (fail-closed:
// sin registro no hay asiento) y procesa las órdenes pagas.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	var event dto.WebhookEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if event.StoreID == 0 || event.EventType == "" || event.EntityID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "store_id, event e id son requeridos"})
	}

	eventID := events.WebhookEventID(event.StoreID, event.EventType, event.EntityID)
	isNew, err := h.gate.AllowWebhook(eventID)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", eventID).Msg("registro de idempotencia inaccesible; webhook abortado")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: "registro de eventos inaccesible"})
	}
	if !isNew {
		return c.JSON(dto.WebhookResponse{Status: "duplicado", EventID: eventID})
	}
	if err := h.gate.LogWebhook(eventID, event.EventType, event.EntityID); err != nil {
		h.log.Error().Err(err).Str("event_id", eventID).Msg("no se pudo auditar el webhook")
	}

	if event.EventType != "order/paid" {
		return c.JSON(dto.WebhookResponse{Status: "ignorado", EventID: eventID})
	}
	if err := h.processOrderPaid(event.EntityID); err != nil {
		h.log.Error().Err(err).Int64("orden", event.EntityID).Msg("error procesando orden paga")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.WebhookResponse{Status: "procesado", EventID: eventID})
}

// processOrderPaid asienta una orden paga como venta online: una fila por
// orden con los nombres de producto concatenados y el monto capturado.
func (h *WebhookHandler) processOrderPaid(orderID int64) error {
	order, err := h.orders.FetchOrder(orderID)
	if err != nil {
		return err
	}
	total := order.CapturedTotal()
	if !total.IsPositive() {
		h.log.Warn().Int64("orden", orderID).Msg("orden paga sin transacciones; se omite")
		return nil
	}

	names := make([]string, 0, len(order.Products))
	var quantity int64
	for _, product := range order.Products {
		names = append(names, product.Name)
		quantity += product.Quantity
	}
	client := order.Customer.Name
	if client == "" {
		client = "Cliente TiendaNube"
	}

	_, err = h.sales.AddOnline(sales.OnlineSaleInput{
		Description: truncate(strings.Join(names, ", "), 255),
		Client:      client,
		Quantity:    quantity,
		Total:       total,
	})
	if errors.Is(err, domain.ErrValidation) {
		h.log.Warn().Err(err).Int64("orden", orderID).Msg("orden paga descartada por validación")
		return nil
	}
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
