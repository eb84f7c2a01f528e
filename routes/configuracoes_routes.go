package routes

import (
	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupConfiguracoesRoutes(app *fiber.App, configController *controllers.ConfiguracoesController) {

	api := app.Group(config.MAIN_ROUTES+"/configuracoes", middleware.AuthMiddleware)

	api.Get("/sheets", configController.GetStatus)
	api.Post("/sheets-url", configController.SalvarURL)
	api.Post("/importar-config", configController.ImportarConfig)
	api.Post("/testar-conexao", configController.TestarConexao)
	api.Post("/importar-paco", configController.ImportarPaco)
	api.Post("/sincronizar-paco", configController.SincronizarPaco)
}
