package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"DataPos/app/client"
	"DataPos/app/config"
	"DataPos/app/database"
	"DataPos/app/models"
	"DataPos/app/services"
	"DataPos/app/websocket"

	"github.com/joho/godotenv"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

// App struct
type App struct {
	ctx context.Context

	LoggerService     *services.LoggerService
	ConfigService     *services.ConfigService
	SessionService    *services.SessionService
	CatalogService    *services.CatalogService
	CartService       *services.CartService
	DrawerService     *services.DrawerService
	SettlementService *services.SettlementService
	ReceiptService    *services.ReceiptService
	PrinterService    *services.PrinterService
	PrintDispatcher   *services.PrintDispatcher
	JournalService    *services.JournalService
	SettingsService   *services.SettingsService
	DisplayService    *services.DisplayService

	api    *client.Client
	router *services.CommandRouter
	cfg    *config.AppConfig
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	runtime.WindowMaximise(a.ctx)

	// Surfaces render inside the webview, so the factory needs the
	// window context
	a.PrintDispatcher.SetSurfaceFactory(services.NewRuntimeSurfaceFactory(ctx))

	if a.cfg.FirstRun {
		a.LoggerService.LogInfo("First run detected - setup wizard will be shown")
		return
	}

	// Warm the settings cache and pick up a drawer left open by a crash
	go func() {
		defer a.LoggerService.RecoverPanic()
		if err := a.SettingsService.Refresh(); err != nil {
			a.LoggerService.LogWarning("Could not load company settings", err.Error())
		}
		if session, err := a.DrawerService.Resume(); err != nil {
			a.LoggerService.LogWarning("Could not check for an open drawer", err.Error())
		} else if session != nil {
			a.LoggerService.LogInfo("Resumed open drawer session", fmt.Sprintf("opened by %s", session.OpenedBy))
		}
	}()

	if a.cfg.Display.Enabled {
		a.LoggerService.LogInfo("Starting customer display server", "Port: "+a.cfg.Display.Port)
		a.DisplayService.Start()
	}
}

// beforeClose is called when the application is about to quit
func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	a.LoggerService.LogInfo("Application closing")

	if a.DisplayService != nil {
		a.DisplayService.Stop()
	}

	if err := database.Close(); err != nil {
		a.LoggerService.LogError("Error closing journal database", err)
	}

	a.LoggerService.LogInfo("Application shutdown complete")
	return false
}

// DispatchCommand routes a key chord from the frontend through the
// command table.
func (a *App) DispatchCommand(key, payload string) (interface{}, error) {
	return a.router.Dispatch(key, payload)
}

// CommandBindings lists the active key bindings for the help overlay.
func (a *App) CommandBindings() map[string]string {
	return a.router.Bindings()
}

// InitializeAfterSetup reconnects everything once the setup wizard has
// written the configuration.
func (a *App) InitializeAfterSetup() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	a.api.SetBaseURL(cfg.Server.BaseURL)
	a.api.SetToken(cfg.Server.APIToken)

	if err := database.Initialize(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize journal database: %w", err)
	}
	a.JournalService.SetDB(database.GetDB())

	if err := config.MarkSetupComplete(); err != nil {
		return fmt.Errorf("failed to mark setup complete: %w", err)
	}

	if err := a.SettingsService.Refresh(); err != nil {
		a.LoggerService.LogWarning("Could not load company settings", err.Error())
	}

	if cfg.Display.Enabled {
		a.DisplayService.Start()
	}

	a.LoggerService.LogInfo("Setup complete, terminal connected", cfg.Server.BaseURL)
	return nil
}

// initServices builds the service graph from the loaded configuration.
func (a *App) initServices(cfg *config.AppConfig) {
	a.cfg = cfg

	a.api = client.New(cfg.Server.BaseURL, cfg.Server.APIToken, time.Duration(cfg.Server.TimeoutS)*time.Second)

	a.JournalService = services.NewJournalService(database.GetDB())
	a.SessionService = services.NewSessionService(a.api)
	a.CatalogService = services.NewCatalogService(a.api, cfg.Pos.ShowNegativeStock)
	a.SettingsService = services.NewSettingsService(a.api)
	a.CartService = services.NewCartService(a.SessionService, cfg.Pos.AllowNegativeStock)
	a.DrawerService = services.NewDrawerService(a.api, a.JournalService)
	a.SettlementService = services.NewSettlementService(
		a.CartService, a.DrawerService, a.SessionService, a.api, a.JournalService, a.LoggerService)

	a.PrinterService = services.NewPrinterService(models.PrinterConfig{
		Name:       cfg.Pos.PrinterName,
		Type:       cfg.Pos.PrinterType,
		Address:    cfg.Pos.PrinterAddress,
		Port:       cfg.Pos.PrinterPort,
		PaperWidth: cfg.Pos.PaperWidth,
	}, a.LoggerService)
	a.ReceiptService = services.NewReceiptService(cfg.Pos.CurrencySymbol, cfg.Pos.PaperWidth)
	a.PrintDispatcher = services.NewPrintDispatcher(a.PrinterService, nil, a.JournalService, a.LoggerService)
	a.ConfigService = services.NewConfigService(a.LoggerService, a.PrinterService)

	var wsServer *websocket.Server
	if cfg.Display.Enabled {
		wsServer = websocket.NewServer(":" + cfg.Display.Port)
	}
	a.DisplayService = services.NewDisplayService(wsServer, a.LoggerService)
	a.CartService.SetOnChange(a.DisplayService.PublishCart)
	a.SettlementService.SetOnSettled(a.onSaleSettled)

	a.router = services.NewCommandRouter(a.LoggerService)
	a.router.RegisterDefaultBindings(services.RouterDeps{
		Cart:       a.CartService,
		Drawer:     a.DrawerService,
		Settlement: a.SettlementService,
		Dispatcher: a.PrintDispatcher,
		Catalog:    a.CatalogService,
		Receipts:   a.ReceiptService,
		Settings:   a.SettingsService,
		Journal:    a.JournalService,
	})
}

// onSaleSettled runs after every committed sale: the customer display
// flips to the change screen and the receipt prints if configured.
func (a *App) onSaleSettled(sale *models.Sale) {
	a.DisplayService.PublishSaleComplete(sale)

	if a.cfg.Pos.AutoPrintReceipt {
		doc := a.ReceiptService.ComposeThermal(sale, a.SettingsService.Company(), a.SettingsService.DefaultComment())
		doc.OpenDrawer = doc.OpenDrawer && a.cfg.Pos.AutoOpenDrawer
		a.PrintDispatcher.Print(doc, services.PrintOptions{Silent: true})
	}
}

func main() {
	// Initialize logger FIRST to catch all errors
	loggerService := services.NewLoggerService()
	if loggerService == nil {
		fmt.Println("CRITICAL: Logger service failed to initialize")
		os.Exit(1)
	}
	defer loggerService.Close()

	defer func() {
		if r := recover(); r != nil {
			loggerService.LogPanic(r)
			os.Exit(1)
		}
	}()

	loggerService.LogInfo("Application starting", "DataPos Terminal")

	// Load environment variables from .env file (for development)
	if err := godotenv.Load(".env"); err != nil {
		loggerService.LogWarning(".env file not found, will use config.json if available")
	}

	app := NewApp()
	app.LoggerService = loggerService

	exists, err := config.ConfigExists()
	if err != nil {
		loggerService.LogWarning("Could not check configuration", err.Error())
	}

	var cfg *config.AppConfig
	if !exists {
		loggerService.LogInfo("No configuration found, creating defaults")
		cfg, err = config.CreateDefaultConfig()
		if err != nil {
			loggerService.LogFatal("Could not create default configuration", err)
		}
	} else {
		cfg, err = config.LoadConfig()
		if err != nil {
			loggerService.LogError("Error loading config, will show setup wizard", err)
			cfg, _ = config.CreateDefaultConfig()
		}
	}

	if !cfg.FirstRun {
		loggerService.LogInfo("Initializing journal database")
		if err := database.Initialize(&cfg.Database); err != nil {
			// The journal is local convenience storage; checkout still
			// works against the back office without it
			loggerService.LogWarning("Journal database unavailable", err.Error())
		}
	}

	app.initServices(cfg)

	err = wails.Run(&options.App{
		Title:  "DataPos Terminal",
		Width:  1400,
		Height: 900,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnBeforeClose:    app.beforeClose,
		Bind: []interface{}{
			app,
			app.LoggerService,
			app.ConfigService,
			app.SessionService,
			app.CatalogService,
			app.CartService,
			app.DrawerService,
			app.SettlementService,
			app.ReceiptService,
			app.PrinterService,
			app.PrintDispatcher,
			app.JournalService,
			app.SettingsService,
			app.DisplayService,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
		Menu: nil,
	})

	if err != nil {
		loggerService.LogError("Wails application error", err)
		println("Error:", err.Error())
	}
}
