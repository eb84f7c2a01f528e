package routes

import (
	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogoRoutes(app *fiber.App, catalogoController *controllers.CatalogoController) {

	api := app.Group(config.MAIN_ROUTES+"/paco", middleware.AuthMiddleware)

	api.Get("/serial/:serial", catalogoController.GetSerial)
	api.Get("/maquinas", catalogoController.GetMaquinas)
	api.Get("/postos", catalogoController.GetPostos)
	api.Get("/coordenadas", catalogoController.GetCoordenadas)
	api.Post("/recarregar", catalogoController.Recarregar)
}
