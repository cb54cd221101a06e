package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/dto"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// SweepRunner dispara el barrido de conciliación fuera del horario programado.
type SweepRunner interface {
	RunSweepNow() error
}

// ReconcilerHandler expone el barrido manual por HTTP.
type ReconcilerHandler struct {
	sweeper SweepRunner
	log     *logger.Logger
}

// NewReconcilerHandler construye el handler.
func NewReconcilerHandler(sweeper SweepRunner, log *logger.Logger) *ReconcilerHandler {
	return &ReconcilerHandler{sweeper: sweeper, log: log}
}

// Sweep corre el barrido completo ahora mismo y responde cuando terminó.
func (h *ReconcilerHandler) Sweep(c *fiber.Ctx) error {
	if h.sweeper == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_AVAILABLE", Message: "barrido no configurado"})
	}
	if err := h.sweeper.RunSweepNow(); err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: err.Error()})
		}
		h.log.Error().Err(err).Msg("barrido manual fallido")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
