package controllers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"

	"pedidos-app/models"
	"pedidos-app/repositories"
	"pedidos-app/services"
)

type PedidoController struct {
	Service *services.PedidoService
	Backup  *repositories.BackupRepository
}

func NewPedidoController(service *services.PedidoService, backup *repositories.BackupRepository) *PedidoController {
	return &PedidoController{Service: service, Backup: backup}
}

var validate = validator.New()

func (c *PedidoController) CreatePedido(ctx *fiber.Ctx) error {
	var input services.NovoPedidoInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	numero, err := c.Service.CriarPedido(input)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSerialNaoEncontrado):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Serial não encontrado no catálogo"})
		case errors.Is(err, models.ErrPedidoDuplicado):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Já existe um pedido pendente para esta localização"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Pedido %s criado com sucesso", numero),
		"data":    fiber.Map{"numero_pedido": numero},
	})
}

func (c *PedidoController) GetPedidos(ctx *fiber.Ctx) error {
	numero := ctx.Query("numero_pedido")
	status := ctx.Query("status")

	if status != "" {
		normalizado, err := models.NormalizarStatus(status)
		if err != nil {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Status inválido"})
		}
		status = normalizado
	}

	pedidos, err := c.Service.BuscarPedidos(numero, status)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Pedidos encontrados", "data": pedidos})
}

func (c *PedidoController) GetPedido(ctx *fiber.Ctx) error {
	numero := ctx.Params("numero")

	pedido, err := c.Service.Pedidos.Find(numero)
	if err != nil {
		if errors.Is(err, models.ErrPedidoNaoEncontrado) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pedido não encontrado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Pedido encontrado", "data": pedido})
}

func (c *PedidoController) GetPedidoDetalhes(ctx *fiber.Ctx) error {
	numero := ctx.Params("numero")

	detalhes, err := c.Service.GetDetalhes(numero)
	if err != nil {
		if errors.Is(err, models.ErrPedidoNaoEncontrado) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pedido não encontrado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Pedido encontrado", "data": detalhes})
}

func (c *PedidoController) UpdateStatus(ctx *fiber.Ctx) error {
	numero := ctx.Params("numero")

	var statusInput struct {
		Status      string `json:"status" validate:"required"`
		Responsavel string `json:"responsavel" validate:"required"`
	}
	if err := ctx.BodyParser(&statusInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(statusInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Service.AtualizarStatus(numero, statusInput.Status, statusInput.Responsavel); err != nil {
		switch {
		case errors.Is(err, models.ErrStatusInvalido):
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Status inválido"})
		case errors.Is(err, models.ErrPedidoNaoEncontrado):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pedido não encontrado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Status atualizado com sucesso"})
}

func (c *PedidoController) GetComprovante(ctx *fiber.Ctx) error {
	numero := ctx.Params("numero")

	pdf, err := c.Service.Comprovante(numero)
	if err != nil {
		if errors.Is(err, models.ErrPedidoNaoEncontrado) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Pedido não encontrado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="comprovante_%s.pdf"`, numero))
	return ctx.Send(pdf)
}

func (c *PedidoController) GetBackups(ctx *fiber.Ctx) error {
	backups, err := c.Backup.Listar()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Backups encontrados", "data": backups})
}

func (c *PedidoController) RestoreBackup(ctx *fiber.Ctx) error {
	var restoreInput struct {
		Arquivo string `json:"arquivo" validate:"required"`
	}
	if err := ctx.BodyParser(&restoreInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(restoreInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.Backup.Restaurar(restoreInput.Arquivo, c.Service.Pedidos.Arquivo); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Backup restaurado com sucesso"})
}
