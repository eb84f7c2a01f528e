package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"pedidos-app/config"
	"pedidos-app/controllers"
	"pedidos-app/controllers/idgen"
	"pedidos-app/repositories"
	"pedidos-app/routes"
	"pedidos-app/services"
	"pedidos-app/utils"
)

func main() {

	config.LoadConfig()
	utils.InitLogger(config.LogLevel, config.LogEncoding)

	app := fiber.New()

	idgen.Init()

	// Fila de leituras offline (SQLite local)
	leiturasDB, err := repositories.OpenLeiturasDB(config.ArquivoLeituras)
	if err != nil {
		log.Fatalf("❌ Falha ao abrir o banco de leituras: %v", err)
	}

	backupRepo := repositories.NewBackupRepository(config.DiretorioBackup)
	pedidoRepo := repositories.NewPedidoRepository(config.ArquivoPedidos, backupRepo)
	catalogoRepo := repositories.NewCatalogoRepository(config.CaminhoPlanilha)
	leituraRepo := repositories.NewLeituraRepository(leiturasDB)

	sheetsService := services.NewSheetsService(config.SheetsConfigFile)

	notifyService := services.NewNotifyService()
	pedidoService := services.NewPedidoService(pedidoRepo, catalogoRepo, sheetsService, notifyService)
	syncService := services.NewSyncService(leituraRepo, sheetsService)

	// Sincronizador de leituras em segundo plano
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncService.Start(ctx)

	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, controllers.NewAuthController())
	routes.SetupPedidoRoutes(app, controllers.NewPedidoController(pedidoService, backupRepo))
	routes.SetupCatalogoRoutes(app, controllers.NewCatalogoController(catalogoRepo))
	routes.SetupLeituraRoutes(app, controllers.NewLeituraController(leituraRepo, syncService))
	routes.SetupConfiguracoesRoutes(app, controllers.NewConfiguracoesController(sheetsService))

	port := config.APP_PORT
	fmt.Println("🚀 Servidor de pedidos rodando na porta " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}

}
