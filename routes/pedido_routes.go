package routes

import (
	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupPedidoRoutes(app *fiber.App, pedidoController *controllers.PedidoController) {

	api := app.Group(config.MAIN_ROUTES+"/pedidos", middleware.AuthMiddleware)

	api.Post("/", pedidoController.CreatePedido)
	api.Get("/", pedidoController.GetPedidos)
	api.Get("/:numero", pedidoController.GetPedido)
	api.Get("/:numero/detalhes", pedidoController.GetPedidoDetalhes)
	api.Put("/:numero/status", pedidoController.UpdateStatus)
	api.Get("/:numero/comprovante", pedidoController.GetComprovante)

	apiBackup := app.Group(config.MAIN_ROUTES+"/backups", middleware.AuthMiddleware)
	apiBackup.Get("/", pedidoController.GetBackups)
	apiBackup.Post("/restore", pedidoController.RestoreBackup)
}
