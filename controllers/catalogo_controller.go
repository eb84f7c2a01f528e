package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pedidos-app/models"
	"pedidos-app/repositories"
)

type CatalogoController struct {
	Catalogo *repositories.CatalogoRepository
}

func NewCatalogoController(catalogo *repositories.CatalogoRepository) *CatalogoController {
	return &CatalogoController{Catalogo: catalogo}
}

func (c *CatalogoController) GetSerial(ctx *fiber.Ctx) error {
	serial := ctx.Params("serial")

	reg, err := c.Catalogo.BuscarPorSerial(serial)
	if err != nil {
		if errors.Is(err, models.ErrSerialNaoEncontrado) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Serial não encontrado no catálogo"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Serial encontrado", "data": reg})
}

func (c *CatalogoController) GetMaquinas(ctx *fiber.Ctx) error {
	maquinas, err := c.Catalogo.ListarMaquinas()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Máquinas encontradas", "data": maquinas})
}

func (c *CatalogoController) GetPostos(ctx *fiber.Ctx) error {
	postos, err := c.Catalogo.ListarPostos(ctx.Query("maquina"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Postos encontrados", "data": postos})
}

func (c *CatalogoController) GetCoordenadas(ctx *fiber.Ctx) error {
	coordenadas, err := c.Catalogo.ListarCoordenadas(ctx.Query("maquina"), ctx.Query("posto"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Coordenadas encontradas", "data": coordenadas})
}

func (c *CatalogoController) Recarregar(ctx *fiber.Ctx) error {
	c.Catalogo.Recarregar()
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Catálogo recarregado com sucesso"})
}
