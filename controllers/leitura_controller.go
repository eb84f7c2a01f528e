package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pedidos-app/models"
	"pedidos-app/repositories"
	"pedidos-app/services"
)

type LeituraController struct {
	Leituras *repositories.LeituraRepository
	Syncer   *services.SyncService
}

func NewLeituraController(leituras *repositories.LeituraRepository, syncer *services.SyncService) *LeituraController {
	return &LeituraController{Leituras: leituras, Syncer: syncer}
}

// CreateLeitura enfileira uma leitura de código de barras feita sem conexão.
func (c *LeituraController) CreateLeitura(ctx *fiber.Ctx) error {
	var leituraInput struct {
		Codigo string `json:"codigo" validate:"required"`
	}
	if err := ctx.BodyParser(&leituraInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(leituraInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	leitura, err := c.Leituras.Enfileirar(leituraInput.Codigo)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Leitura enfileirada", "data": leitura})
}

func (c *LeituraController) GetPendentes(ctx *fiber.Ctx) error {
	pendentes, err := c.Leituras.Pendentes()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Leituras pendentes", "data": pendentes})
}

// SyncLeituras dispara uma passada de sincronização imediata.
func (c *LeituraController) SyncLeituras(ctx *fiber.Ctx) error {
	enviadas, err := c.Syncer.Sincronizar()
	if err != nil {
		if errors.Is(err, models.ErrSheetsNaoConfigurado) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Google Sheets não configurado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Sincronização concluída",
		"data":    fiber.Map{"enviadas": enviadas},
	})
}
