package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/dto"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// StockChecker consulta el stock de una variante en la tienda, sin caché.
type StockChecker interface {
	Stock(productID, variantID int64) (int64, bool)
}

// ProductsHandler expone la sincronización de catálogo y la consulta de stock
// en tiempo real por HTTP.
type ProductsHandler struct {
	products *products.Service
	stock    StockChecker
	log      *logger.Logger
}

// NewProductsHandler construye el handler.
func NewProductsHandler(productsSvc *products.Service, stock StockChecker, log *logger.Logger) *ProductsHandler {
	return &ProductsHandler{products: productsSvc, stock: stock, log: log}
}

// Sync reescribe la tabla Productos con el catálogo completo de la tienda.
func (h *ProductsHandler) Sync(c *fiber.Ctx) error {
	count, err := h.products.SyncFromCatalog()
	if errors.Is(err, domain.ErrValidation) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	if err != nil {
		h.log.Error().Err(err).Msg("sincronización de catálogo fallida")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: err.Error()})
	}
	return c.JSON(dto.SyncResponse{Synced: count})
}

// Stock devuelve el stock actual de una variante según la tienda, salteando
// el caché de la planilla.
func (h *ProductsHandler) Stock(c *fiber.Ctx) error {
	productID := int64(c.QueryInt("product_id"))
	variantID := int64(c.QueryInt("variant_id"))
	if productID <= 0 || variantID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y variant_id son requeridos"})
	}
	if h.stock == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "tienda no configurada"})
	}
	stock, ok := h.stock.Stock(productID, variantID)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: "la tienda no respondió"})
	}
	return c.JSON(fiber.Map{"product_id": productID, "variant_id": variantID, "stock": stock})
}
