package routes

import (
	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authController *controllers.AuthController) {

	api := app.Group(config.MAIN_ROUTES)
	api.Post("/login", authController.Login)
	api.Get("/is-logged-in", middleware.AuthMiddleware, authController.IsLoggedIn)
}
