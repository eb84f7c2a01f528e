package controllers

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"pedidos-app/config"
	"pedidos-app/models"
	"pedidos-app/services"
	"pedidos-app/utils"
)

// ConfiguracoesController cuida da integração com o Google Sheets: URL da
// planilha, credenciais de serviço e carga do catálogo Paco.
type ConfiguracoesController struct {
	Sheets *services.SheetsService
}

func NewConfiguracoesController(sheets *services.SheetsService) *ConfiguracoesController {
	return &ConfiguracoesController{Sheets: sheets}
}

func (c *ConfiguracoesController) GetStatus(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"conectado":  c.Sheets.Conectado(),
			"sheets_url": c.Sheets.Config.SheetsURL,
		},
	})
}

func (c *ConfiguracoesController) SalvarURL(ctx *fiber.Ctx) error {
	var urlInput struct {
		SheetsURL string `json:"sheets_url" validate:"required"`
		Senha     string `json:"senha" validate:"required"`
	}
	if err := ctx.BodyParser(&urlInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(urlInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if !VerificarSenha(urlInput.Senha) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Senha incorreta"})
	}

	if err := c.Sheets.SalvarURL(urlInput.SheetsURL); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "URL da planilha salva com sucesso"})
}

// ImportarConfig recebe um config.json exportado de outra bancada e ativa a
// integração na hora.
func (c *ConfiguracoesController) ImportarConfig(ctx *fiber.Ctx) error {
	senha := ctx.FormValue("senha")
	if !VerificarSenha(senha) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Senha incorreta"})
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}

	fileContent, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer fileContent.Close()

	data, err := io.ReadAll(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read file"})
	}

	if err := c.Sheets.ImportarConfig(data); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	utils.Log.Info("✅ Configuração do Google Sheets importada")
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Configuração importada com sucesso",
		"data":    fiber.Map{"conectado": c.Sheets.Conectado()},
	})
}

func (c *ConfiguracoesController) TestarConexao(ctx *fiber.Ctx) error {
	if err := c.Sheets.TestarConexao(); err != nil {
		if errors.Is(err, models.ErrSheetsNaoConfigurado) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Google Sheets não configurado"})
		}
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Conexão com o Google Sheets OK"})
}

// ImportarPaco sobe o catálogo de localizações de um arquivo Excel para a
// aba paco da planilha remota.
func (c *ConfiguracoesController) ImportarPaco(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}

	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".xls") {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only Excel files (.xlsx, .xls) are allowed"})
	}

	fileContent, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open file"})
	}
	defer fileContent.Close()

	f, err := excelize.OpenReader(fileContent)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to read Excel file"})
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No sheets found in Excel file"})
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read rows"})
	}

	if len(rows) < 2 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Excel file must contain header and at least one data row"})
	}

	valores := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		linha := make([]interface{}, len(row))
		for i, cell := range row {
			linha[i] = strings.TrimSpace(cell)
		}
		valores = append(valores, linha)
	}

	if err := c.Sheets.ImportarPaco(valores); err != nil {
		if errors.Is(err, models.ErrSheetsNaoConfigurado) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Google Sheets não configurado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	utils.Log.Infow("✅ Catálogo paco importado", "linhas", len(valores)-1)
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Catálogo importado com sucesso",
		"data":    fiber.Map{"linhas": len(valores) - 1},
	})
}

// SincronizarPaco empurra a planilha local de localizações para a aba paco
// da planilha remota, sem upload.
func (c *ConfiguracoesController) SincronizarPaco(ctx *fiber.Ctx) error {
	if err := c.Sheets.SincronizarPaco(config.CaminhoPlanilha); err != nil {
		if errors.Is(err, models.ErrSheetsNaoConfigurado) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Google Sheets não configurado"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	utils.Log.Info("✅ Catálogo paco sincronizado com a planilha remota")
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Catálogo sincronizado com sucesso"})
}
