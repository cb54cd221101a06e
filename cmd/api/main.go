package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/balance"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/events"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/expenses"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/reconciler"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/sales"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/wholesale"
	infrapdf "github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/pdf"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/sheets"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/telegram"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/tiendanube"
	httpRouter "github.com/MiltonKlun/Pombot-PG-Original/internal/interfaces/http"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/scheduler"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/config"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := sheets.NewStore(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Google Sheets")
	}

	storeID, err := tiendanube.StoreIDFromConfig(cfg.TiendaNube.StoreID)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de TiendaNube")
	}
	shop := tiendanube.NewClient(cfg.TiendaNube.BaseURL, storeID, cfg.TiendaNube.AccessToken, cfg.TiendaNube.UserAgent, log)
	notifier := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)

	gate := events.NewGate(store, log)
	expensesSvc := expenses.NewService(store, log)
	wholesaleSvc := wholesale.NewService(store, log)
	balanceSvc := balance.NewService(store, wholesaleSvc, log)
	productsSvc := products.NewService(store, shop, log)
	salesSvc := sales.NewService(store, productsSvc, shop, log)
	reconcilerSvc := reconciler.NewService(store, expensesSvc, wholesaleSvc, log)

	pdfGenerator := infrapdf.NewBalanceReportGenerator()

	// El scheduler se construye siempre: la ruta de barrido manual lo usa
	// aunque el job diario esté deshabilitado.
	sched, err := scheduler.New(reconcilerSvc, notifier, cfg.Scheduler, log)
	if err != nil {
		log.Fatal().Err(err).Msg("crear scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Webhook:    httpRouter.NewWebhookHandler(gate, shop, salesSvc, log),
		Balance:    httpRouter.NewBalanceHandler(balanceSvc, pdfGenerator),
		Products:   httpRouter.NewProductsHandler(productsSvc, shop, log),
		Reconciler: httpRouter.NewReconcilerHandler(sched, log),
	})

	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Msg("iniciar scheduler")
		}
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("apagado del scheduler")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
