package routes

import (
	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupLeituraRoutes(app *fiber.App, leituraController *controllers.LeituraController) {

	api := app.Group(config.MAIN_ROUTES+"/leituras", middleware.AuthMiddleware)

	api.Post("/", leituraController.CreateLeitura)
	api.Get("/", leituraController.GetPendentes)
	api.Post("/sync", leituraController.SyncLeituras)
}
